package postgres

import (
	"context"
	"database/sql"
	"time"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// OrderPostgres is a PostgreSQL implementation of repository.OrderRepository.
type OrderPostgres struct {
	db *sql.DB
}

// NewOrderPostgres creates a new OrderPostgres repository.
func NewOrderPostgres(db *sql.DB) *OrderPostgres {
	return &OrderPostgres{db: db}
}

var _ repository.OrderRepository = (*OrderPostgres)(nil)

const chargeColumns = `id, seller_id, merchant_account_id, processor, processor_transaction_id,
	amount_cents, gumroad_amount_cents, processor_fee_cents, currency, created_at`

const purchaseColumns = `id, charge_id, seller_id, product_id, product_name, email, subscription_id,
	merchant_account_id, processor, processor_transaction_id, currency, price_cents, fee_cents,
	tax_cents, gumroad_tax_cents, total_transaction_cents, amount_refunded_cents, state,
	has_refund_policy, chargeback_date, chargeback_reversed, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanCharge(s scanner) (*model.Charge, error) {
	var c model.Charge
	var merchantAccountID sql.NullString
	if err := s.Scan(
		&c.ID,
		&c.SellerID,
		&merchantAccountID,
		&c.Processor,
		&c.ProcessorTransactionID,
		&c.AmountCents,
		&c.GumroadAmountCents,
		&c.ProcessorFeeCents,
		&c.Currency,
		&c.CreatedAt,
	); err != nil {
		return nil, err
	}
	c.MerchantAccountID = merchantAccountID.String
	return &c, nil
}

func scanPurchase(s scanner) (*model.Purchase, error) {
	var p model.Purchase
	var chargeID, subscriptionID, merchantAccountID sql.NullString
	var chargebackDate sql.NullTime
	if err := s.Scan(
		&p.ID,
		&chargeID,
		&p.SellerID,
		&p.ProductID,
		&p.ProductName,
		&p.Email,
		&subscriptionID,
		&merchantAccountID,
		&p.Processor,
		&p.ProcessorTransactionID,
		&p.Currency,
		&p.PriceCents,
		&p.FeeCents,
		&p.TaxCents,
		&p.GumroadTaxCents,
		&p.TotalTransactionCents,
		&p.AmountRefundedCents,
		&p.State,
		&p.HasRefundPolicy,
		&chargebackDate,
		&p.ChargebackReversed,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	p.ChargeID = chargeID.String
	p.SubscriptionID = subscriptionID.String
	p.MerchantAccountID = merchantAccountID.String
	if chargebackDate.Valid {
		t := chargebackDate.Time
		p.ChargebackDate = &t
	}
	return &p, nil
}

// FindChargeByProcessorTransactionID fetches a charge and its purchases.
func (r *OrderPostgres) FindChargeByProcessorTransactionID(ctx context.Context, processor model.Processor, txnID string) (*model.Charge, error) {
	q := `SELECT ` + chargeColumns + `
		FROM charges
		WHERE processor = $1 AND processor_transaction_id = $2`
	c, err := scanCharge(conn(ctx, r.db).QueryRowContext(ctx, q, processor, txnID))
	if err != nil {
		return nil, notFound(err)
	}
	return r.withPurchases(ctx, c)
}

// FindChargeByID fetches a charge and its purchases.
func (r *OrderPostgres) FindChargeByID(ctx context.Context, id string) (*model.Charge, error) {
	q := `SELECT ` + chargeColumns + `
		FROM charges
		WHERE id = $1`
	c, err := scanCharge(conn(ctx, r.db).QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, notFound(err)
	}
	return r.withPurchases(ctx, c)
}

func (r *OrderPostgres) withPurchases(ctx context.Context, c *model.Charge) (*model.Charge, error) {
	q := `SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE charge_id = $1
		ORDER BY created_at, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, forUpdate(ctx, q), c.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	c.Purchases = make([]model.Purchase, 0)
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, err
		}
		c.Purchases = append(c.Purchases, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// FindPurchaseByProcessorTransactionID fetches a standalone purchase. Purchases
// captured as part of a charge are found through the charge instead.
func (r *OrderPostgres) FindPurchaseByProcessorTransactionID(ctx context.Context, processor model.Processor, txnID string) (*model.Purchase, error) {
	q := `SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE processor = $1 AND processor_transaction_id = $2 AND charge_id IS NULL
		ORDER BY created_at
		LIMIT 1`
	p, err := scanPurchase(conn(ctx, r.db).QueryRowContext(ctx, forUpdate(ctx, q), processor, txnID))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// FindPurchaseByID fetches a single purchase by its ID. Inside a transaction
// the row stays locked, so refund and chargeback updates read the amounts
// they overwrite.
func (r *OrderPostgres) FindPurchaseByID(ctx context.Context, id string) (*model.Purchase, error) {
	q := `SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE id = $1`
	p, err := scanPurchase(conn(ctx, r.db).QueryRowContext(ctx, forUpdate(ctx, q), id))
	if err != nil {
		return nil, notFound(err)
	}
	return p, nil
}

// UpdatePurchaseChargeback stores the chargeback markers of a purchase.
func (r *OrderPostgres) UpdatePurchaseChargeback(ctx context.Context, p *model.Purchase) error {
	const q = `UPDATE purchases SET chargeback_date = $2, chargeback_reversed = $3 WHERE id = $1`
	var date sql.NullTime
	if p.ChargebackDate != nil {
		date = sql.NullTime{Time: *p.ChargebackDate, Valid: true}
	}
	return r.execOne(ctx, q, p.ID, date, p.ChargebackReversed)
}

// UpdatePurchaseRefund stores the refunded amount and the derived state.
func (r *OrderPostgres) UpdatePurchaseRefund(ctx context.Context, p *model.Purchase) error {
	const q = `UPDATE purchases SET amount_refunded_cents = $2, state = $3 WHERE id = $1`
	return r.execOne(ctx, q, p.ID, p.AmountRefundedCents, p.State)
}

// CancelSubscription marks an active subscription cancelled.
func (r *OrderPostgres) CancelSubscription(ctx context.Context, subscriptionID, reason string, at time.Time) error {
	const q = `
		UPDATE subscriptions
		SET state = 'cancelled', cancelled_at = $2, cancelled_reason = $3
		WHERE id = $1 AND state <> 'cancelled'
	`
	_, err := conn(ctx, r.db).ExecContext(ctx, q, subscriptionID, at, reason)
	return err
}

func (r *OrderPostgres) execOne(ctx context.Context, q string, args ...any) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, q, args...)
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
