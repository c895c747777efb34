package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// LedgerPostgres is a PostgreSQL implementation of repository.LedgerRepository.
// Flow of funds is stored as JSONB next to the signed amount.
type LedgerPostgres struct {
	db *sql.DB
}

// NewLedgerPostgres creates a new LedgerPostgres repository.
func NewLedgerPostgres(db *sql.DB) *LedgerPostgres {
	return &LedgerPostgres{db: db}
}

var _ repository.LedgerRepository = (*LedgerPostgres)(nil)

// Insert appends one balance transaction.
func (r *LedgerPostgres) Insert(ctx context.Context, bt *model.BalanceTransaction) error {
	ff, err := json.Marshal(bt.FlowOfFunds)
	if err != nil {
		return fmt.Errorf("encode flow of funds: %w", err)
	}
	const q = `
		INSERT INTO balance_transactions
			(id, seller_id, purchase_id, dispute_id, refund_id, kind, amount_cents, currency, flow_of_funds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = conn(ctx, r.db).ExecContext(ctx, q,
		bt.ID,
		bt.SellerID,
		bt.PurchaseID,
		nullString(bt.DisputeID),
		nullString(bt.RefundID),
		bt.Kind,
		bt.AmountCents,
		bt.Currency,
		ff,
		bt.CreatedAt,
	)
	return err
}

// ListByPurchases returns the balance transactions of the given purchases, oldest first.
func (r *LedgerPostgres) ListByPurchases(ctx context.Context, purchaseIDs []string) ([]model.BalanceTransaction, error) {
	items := make([]model.BalanceTransaction, 0)
	if len(purchaseIDs) == 0 {
		return items, nil
	}

	placeholders := make([]string, len(purchaseIDs))
	args := make([]any, len(purchaseIDs))
	for i, id := range purchaseIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}
	q := `
		SELECT id, seller_id, purchase_id, dispute_id, refund_id, kind, amount_cents, currency, flow_of_funds, created_at
		FROM balance_transactions
		WHERE purchase_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY created_at, id`
	rows, err := conn(ctx, r.db).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var bt model.BalanceTransaction
		var disputeID, refundID sql.NullString
		var ff []byte
		if err := rows.Scan(
			&bt.ID,
			&bt.SellerID,
			&bt.PurchaseID,
			&disputeID,
			&refundID,
			&bt.Kind,
			&bt.AmountCents,
			&bt.Currency,
			&ff,
			&bt.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(ff, &bt.FlowOfFunds); err != nil {
			return nil, fmt.Errorf("decode flow of funds for %s: %w", bt.ID, err)
		}
		bt.DisputeID = disputeID.String
		bt.RefundID = refundID.String
		items = append(items, bt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
