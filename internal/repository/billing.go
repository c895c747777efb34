package repository

import (
	"context"
	"time"

	"chargeapi/internal/model"
)

// OrderRepository reads charges and purchases and records the state changes
// caused by disputes and refunds.
type OrderRepository interface {
	// FindChargeByProcessorTransactionID returns the charge with its purchases.
	FindChargeByProcessorTransactionID(ctx context.Context, processor model.Processor, txnID string) (*model.Charge, error)
	FindPurchaseByProcessorTransactionID(ctx context.Context, processor model.Processor, txnID string) (*model.Purchase, error)
	// FindChargeByID returns the charge with its purchases.
	FindChargeByID(ctx context.Context, id string) (*model.Charge, error)
	FindPurchaseByID(ctx context.Context, id string) (*model.Purchase, error)

	// UpdatePurchaseChargeback persists ChargebackDate and ChargebackReversed.
	UpdatePurchaseChargeback(ctx context.Context, p *model.Purchase) error
	// UpdatePurchaseRefund persists AmountRefundedCents and State.
	UpdatePurchaseRefund(ctx context.Context, p *model.Purchase) error
	// CancelSubscription is a no-op for subscriptions that are already cancelled.
	CancelSubscription(ctx context.Context, subscriptionID, reason string, at time.Time) error
}

// DisputeRepository persists disputes.
type DisputeRepository interface {
	FindByProcessorDisputeID(ctx context.Context, processor model.Processor, disputeID string) (*model.Dispute, error)
	FindByID(ctx context.Context, id string) (*model.Dispute, error)
	// Create returns ErrDuplicate when the processor dispute id is already stored.
	Create(ctx context.Context, d *model.Dispute) (*model.Dispute, error)
	// UpdateState persists State and the transition timestamps.
	UpdateState(ctx context.Context, d *model.Dispute) error
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Dispute], error)
}

// RefundRepository persists refunds.
type RefundRepository interface {
	FindByProcessorRefundID(ctx context.Context, processor model.Processor, refundID string) (*model.Refund, error)
	UpdateStatus(ctx context.Context, r *model.Refund) error
}

// LedgerRepository appends seller balance movements.
type LedgerRepository interface {
	Insert(ctx context.Context, bt *model.BalanceTransaction) error
	ListByPurchases(ctx context.Context, purchaseIDs []string) ([]model.BalanceTransaction, error)
}

// EventRepository remembers which webhooks were applied.
type EventRepository interface {
	// MarkProcessed claims the event and returns false when it was already recorded.
	// Inside a transaction a concurrent claim of the same event blocks until the
	// first one commits or rolls back.
	MarkProcessed(ctx context.Context, ev *model.ProcessedEvent) (bool, error)
	SetOutcome(ctx context.Context, processor model.Processor, eventID, outcome string) error
}

// EvidenceRepository persists metadata for uploaded dispute evidence.
type EvidenceRepository interface {
	Create(ctx context.Context, e *model.Evidence) (*model.Evidence, error)
	FindByID(ctx context.Context, id string) (*model.Evidence, error)
	ListByDispute(ctx context.Context, disputeID string) ([]model.Evidence, error)
}
