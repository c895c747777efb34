package migration

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"
)

type migrationStep struct {
	Name string
	SQL  string
}

// sentinelTable is created by the last step; its presence means the schema is complete.
const sentinelTable = "public.processed_events"

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_merchant_accounts",
		SQL: `CREATE TABLE IF NOT EXISTS merchant_accounts (
  id                    TEXT        PRIMARY KEY DEFAULT uuid_generate_v4()::text,
  user_id               TEXT        NOT NULL,
  processor             TEXT        NOT NULL CHECK (processor IN ('stripe', 'paypal')),
  processor_merchant_id TEXT        NOT NULL,
  currency              TEXT        NOT NULL DEFAULT 'usd',
  created_at            TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (processor, processor_merchant_id)
);`,
	},
	{
		Name: "create_table_charges",
		SQL: `CREATE TABLE IF NOT EXISTS charges (
  id                       TEXT        PRIMARY KEY DEFAULT uuid_generate_v4()::text,
  seller_id                TEXT        NOT NULL,
  merchant_account_id      TEXT        REFERENCES merchant_accounts (id),
  processor                TEXT        NOT NULL,
  processor_transaction_id TEXT        NOT NULL,
  amount_cents             BIGINT      NOT NULL CHECK (amount_cents >= 0),
  gumroad_amount_cents     BIGINT      NOT NULL DEFAULT 0,
  processor_fee_cents      BIGINT      NOT NULL DEFAULT 0,
  currency                 TEXT        NOT NULL,
  created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (processor, processor_transaction_id)
);`,
	},
	{
		Name: "create_table_subscriptions",
		SQL: `CREATE TABLE IF NOT EXISTS subscriptions (
  id               TEXT        PRIMARY KEY DEFAULT uuid_generate_v4()::text,
  seller_id        TEXT        NOT NULL,
  product_id       TEXT        NOT NULL,
  state            TEXT        NOT NULL DEFAULT 'active',
  cancelled_at     TIMESTAMPTZ,
  cancelled_reason TEXT,
  created_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_purchases",
		SQL: `CREATE TABLE IF NOT EXISTS purchases (
  id                       TEXT        PRIMARY KEY DEFAULT uuid_generate_v4()::text,
  charge_id                TEXT        REFERENCES charges (id),
  seller_id                TEXT        NOT NULL,
  product_id               TEXT        NOT NULL,
  product_name             TEXT        NOT NULL,
  email                    TEXT        NOT NULL,
  subscription_id          TEXT        REFERENCES subscriptions (id),
  merchant_account_id      TEXT        REFERENCES merchant_accounts (id),
  processor                TEXT        NOT NULL,
  processor_transaction_id TEXT        NOT NULL,
  currency                 TEXT        NOT NULL,
  price_cents              BIGINT      NOT NULL CHECK (price_cents >= 0),
  fee_cents                BIGINT      NOT NULL DEFAULT 0,
  tax_cents                BIGINT      NOT NULL DEFAULT 0,
  gumroad_tax_cents        BIGINT      NOT NULL DEFAULT 0,
  total_transaction_cents  BIGINT      NOT NULL CHECK (total_transaction_cents >= 0),
  amount_refunded_cents    BIGINT      NOT NULL DEFAULT 0 CHECK (amount_refunded_cents >= 0),
  state                    TEXT        NOT NULL,
  has_refund_policy        BOOLEAN     NOT NULL DEFAULT false,
  chargeback_date          TIMESTAMPTZ,
  chargeback_reversed      BOOLEAN     NOT NULL DEFAULT false,
  created_at               TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_purchases_processor_transaction",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_purchases_processor_transaction ON purchases (processor, processor_transaction_id);`,
	},
	{
		Name: "create_index_purchases_charge_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_purchases_charge_id ON purchases (charge_id);`,
	},
	{
		Name: "create_table_disputes",
		SQL: `CREATE TABLE IF NOT EXISTS disputes (
  id                   TEXT        PRIMARY KEY DEFAULT uuid_generate_v4()::text,
  purchase_id          TEXT        REFERENCES purchases (id),
  charge_id            TEXT        REFERENCES charges (id),
  processor            TEXT        NOT NULL,
  processor_dispute_id TEXT        NOT NULL,
  state                TEXT        NOT NULL CHECK (state IN ('initiated', 'formalized', 'won', 'lost')),
  reason               TEXT,
  amount_cents         BIGINT      NOT NULL DEFAULT 0,
  currency             TEXT        NOT NULL,
  initiated_at         TIMESTAMPTZ,
  formalized_at        TIMESTAMPTZ,
  won_at               TIMESTAMPTZ,
  lost_at              TIMESTAMPTZ,
  event_created_at     TIMESTAMPTZ NOT NULL,
  created_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at           TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (processor, processor_dispute_id),
  CHECK ((purchase_id IS NULL) <> (charge_id IS NULL))
);`,
	},
	{
		Name: "create_index_disputes_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_disputes_created_at ON disputes (created_at);`,
	},
	{
		Name: "create_table_refunds",
		SQL: `CREATE TABLE IF NOT EXISTS refunds (
  id                  TEXT        PRIMARY KEY DEFAULT uuid_generate_v4()::text,
  purchase_id         TEXT        NOT NULL REFERENCES purchases (id),
  processor           TEXT        NOT NULL,
  processor_refund_id TEXT        NOT NULL,
  amount_cents        BIGINT      NOT NULL CHECK (amount_cents >= 0),
  currency            TEXT        NOT NULL,
  status              TEXT        NOT NULL CHECK (status IN ('pending', 'succeeded', 'failed', 'canceled')),
  failure_reason      TEXT,
  created_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at          TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (processor, processor_refund_id)
);`,
	},
	{
		Name: "create_table_balance_transactions",
		SQL: `CREATE TABLE IF NOT EXISTS balance_transactions (
  id            TEXT        PRIMARY KEY,
  seller_id     TEXT        NOT NULL,
  purchase_id   TEXT        NOT NULL REFERENCES purchases (id),
  dispute_id    TEXT        REFERENCES disputes (id),
  refund_id     TEXT        REFERENCES refunds (id),
  kind          TEXT        NOT NULL,
  amount_cents  BIGINT      NOT NULL,
  currency      TEXT        NOT NULL,
  flow_of_funds JSONB       NOT NULL,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_balance_transactions_purchase_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_balance_transactions_purchase_id ON balance_transactions (purchase_id);`,
	},
	{
		Name: "create_table_dispute_evidence",
		SQL: `CREATE TABLE IF NOT EXISTS dispute_evidence (
  id           TEXT        PRIMARY KEY,
  dispute_id   TEXT        NOT NULL REFERENCES disputes (id),
  filename     TEXT        NOT NULL,
  storage_path TEXT        NOT NULL UNIQUE,
  size         BIGINT      NOT NULL CHECK (size >= 0),
  content_type TEXT        NOT NULL,
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_dispute_evidence_dispute_id",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_dispute_evidence_dispute_id ON dispute_evidence (dispute_id);`,
	},
	{
		Name: "create_table_processed_events",
		SQL: `CREATE TABLE IF NOT EXISTS processed_events (
  processor    TEXT        NOT NULL,
  event_id     TEXT        NOT NULL,
  type         TEXT        NOT NULL,
  outcome      TEXT        NOT NULL,
  processed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  PRIMARY KEY (processor, event_id)
);`,
	},
}

// EnsureMigrated applies the schema unless the sentinel table already exists.
// Every step is idempotent, so an interrupted run is completed on the next start.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *slog.Logger, dbHost string) error {
	start := time.Now()
	log = log.With("component", "database", "db_host", dbHost)
	log.Info("db_migration_check", "status", "starting")

	var exists bool
	if err := db.QueryRowContext(ctx, "SELECT to_regclass($1) IS NOT NULL", sentinelTable).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			"status", "error",
			"error_message", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			"status", "success",
			"reason", "schema already exists",
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil
	}

	log.Info("db_migration_start", "status", "in_progress", "steps", len(steps))
	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				"status", "error",
				"migration_step", step.Name,
				"error_message", err.Error(),
				"duration_ms", time.Since(start).Milliseconds(),
				"step_duration_ms", time.Since(stepStart).Milliseconds(),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}
		log.Debug("db_migration_step",
			"status", "success",
			"migration_step", step.Name,
			"step_duration_ms", time.Since(stepStart).Milliseconds(),
		)
	}

	log.Info("db_migration_success",
		"status", "success",
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}
