package postgres

import (
	"context"
	"database/sql"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// RefundPostgres is a PostgreSQL implementation of repository.RefundRepository.
type RefundPostgres struct {
	db *sql.DB
}

// NewRefundPostgres creates a new RefundPostgres repository.
func NewRefundPostgres(db *sql.DB) *RefundPostgres {
	return &RefundPostgres{db: db}
}

var _ repository.RefundRepository = (*RefundPostgres)(nil)

// FindByProcessorRefundID fetches a refund and locks it inside a transaction.
func (r *RefundPostgres) FindByProcessorRefundID(ctx context.Context, processor model.Processor, refundID string) (*model.Refund, error) {
	q := `
		SELECT id, purchase_id, processor, processor_refund_id, amount_cents, currency, status,
			failure_reason, created_at, updated_at
		FROM refunds
		WHERE processor = $1 AND processor_refund_id = $2`
	q = forUpdate(ctx, q)
	var ref model.Refund
	var reason sql.NullString
	if err := conn(ctx, r.db).QueryRowContext(ctx, q, processor, refundID).Scan(
		&ref.ID,
		&ref.PurchaseID,
		&ref.Processor,
		&ref.ProcessorRefundID,
		&ref.AmountCents,
		&ref.Currency,
		&ref.Status,
		&reason,
		&ref.CreatedAt,
		&ref.UpdatedAt,
	); err != nil {
		return nil, notFound(err)
	}
	ref.FailureReason = reason.String
	return &ref, nil
}

// UpdateStatus persists Status, FailureReason and UpdatedAt.
func (r *RefundPostgres) UpdateStatus(ctx context.Context, ref *model.Refund) error {
	const q = `UPDATE refunds SET status = $2, failure_reason = $3, updated_at = $4 WHERE id = $1`
	res, err := conn(ctx, r.db).ExecContext(ctx, q, ref.ID, ref.Status, nullString(ref.FailureReason), ref.UpdatedAt)
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
