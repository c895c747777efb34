package postgres

import (
	"context"
	"database/sql"
	"time"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// DisputePostgres is a PostgreSQL implementation of repository.DisputeRepository.
type DisputePostgres struct {
	db *sql.DB
}

// NewDisputePostgres creates a new DisputePostgres repository.
func NewDisputePostgres(db *sql.DB) *DisputePostgres {
	return &DisputePostgres{db: db}
}

var _ repository.DisputeRepository = (*DisputePostgres)(nil)

const disputeColumns = `id, purchase_id, charge_id, processor, processor_dispute_id, state, reason,
	amount_cents, currency, initiated_at, formalized_at, won_at, lost_at, event_created_at,
	created_at, updated_at`

func scanDispute(s scanner) (*model.Dispute, error) {
	var d model.Dispute
	var purchaseID, chargeID, reason sql.NullString
	var initiatedAt, formalizedAt, wonAt, lostAt sql.NullTime
	if err := s.Scan(
		&d.ID,
		&purchaseID,
		&chargeID,
		&d.Processor,
		&d.ProcessorDisputeID,
		&d.State,
		&reason,
		&d.AmountCents,
		&d.Currency,
		&initiatedAt,
		&formalizedAt,
		&wonAt,
		&lostAt,
		&d.EventCreatedAt,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.PurchaseID = purchaseID.String
	d.ChargeID = chargeID.String
	d.Reason = reason.String
	d.InitiatedAt = timePtr(initiatedAt)
	d.FormalizedAt = timePtr(formalizedAt)
	d.WonAt = timePtr(wonAt)
	d.LostAt = timePtr(lostAt)
	return &d, nil
}

// FindByProcessorDisputeID locks the row for the rest of the surrounding
// transaction so concurrent webhooks for one dispute apply in order.
func (r *DisputePostgres) FindByProcessorDisputeID(ctx context.Context, processor model.Processor, disputeID string) (*model.Dispute, error) {
	q := `SELECT ` + disputeColumns + `
		FROM disputes
		WHERE processor = $1 AND processor_dispute_id = $2`
	q = forUpdate(ctx, q)
	d, err := scanDispute(conn(ctx, r.db).QueryRowContext(ctx, q, processor, disputeID))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// FindByID fetches a single dispute by its ID.
func (r *DisputePostgres) FindByID(ctx context.Context, id string) (*model.Dispute, error) {
	q := `SELECT ` + disputeColumns + `
		FROM disputes
		WHERE id = $1`
	d, err := scanDispute(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return d, nil
}

// Create inserts a new dispute row and returns the stored record.
func (r *DisputePostgres) Create(ctx context.Context, d *model.Dispute) (*model.Dispute, error) {
	q := `
		INSERT INTO disputes (id, purchase_id, charge_id, processor, processor_dispute_id, state, reason,
			amount_cents, currency, initiated_at, formalized_at, won_at, lost_at, event_created_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING ` + disputeColumns
	row := conn(ctx, r.db).QueryRowContext(ctx, q,
		d.ID,
		nullString(d.PurchaseID),
		nullString(d.ChargeID),
		d.Processor,
		d.ProcessorDisputeID,
		d.State,
		nullString(d.Reason),
		d.AmountCents,
		d.Currency,
		nullTime(d.InitiatedAt),
		nullTime(d.FormalizedAt),
		nullTime(d.WonAt),
		nullTime(d.LostAt),
		d.EventCreatedAt,
		d.CreatedAt,
		d.UpdatedAt,
	)
	out, err := scanDispute(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, repository.ErrDuplicate
		}
		return nil, err
	}
	return out, nil
}

// UpdateState persists the state and transition timestamps of d.
func (r *DisputePostgres) UpdateState(ctx context.Context, d *model.Dispute) error {
	const q = `
		UPDATE disputes
		SET state = $2, formalized_at = $3, won_at = $4, lost_at = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := conn(ctx, r.db).ExecContext(ctx, q,
		d.ID,
		d.State,
		nullTime(d.FormalizedAt),
		nullTime(d.WonAt),
		nullTime(d.LostAt),
		d.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns disputes using LIMIT/OFFSET pagination and a total count.
func (r *DisputePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Dispute], error) {
	const qCount = `SELECT COUNT(*) FROM disputes`
	var total int
	if err := conn(ctx, r.db).QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + disputeColumns + `
		FROM disputes
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Dispute, 0)
	for rows.Next() {
		d, err := scanDispute(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Dispute]{
		Items: items,
		Total: total,
	}, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}
