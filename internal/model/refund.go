package model

import "time"

type RefundStatus string

const (
	RefundPending   RefundStatus = "pending"
	RefundSucceeded RefundStatus = "succeeded"
	RefundFailed    RefundStatus = "failed"
	RefundCanceled  RefundStatus = "canceled"
)

// Valid reports whether s is one of the statuses a refund row may hold.
func (s RefundStatus) Valid() bool {
	switch s {
	case RefundPending, RefundSucceeded, RefundFailed, RefundCanceled:
		return true
	}
	return false
}

// Reverted reports whether the money never left the seller's balance.
func (s RefundStatus) Reverted() bool {
	return s == RefundFailed || s == RefundCanceled
}

// Refund is money returned to the buyer for one purchase.
type Refund struct {
	ID                string       `json:"id"`
	PurchaseID        string       `json:"purchase_id"`
	Processor         Processor    `json:"processor"`
	ProcessorRefundID string       `json:"processor_refund_id"`
	AmountCents       int64        `json:"amount_cents"`
	Currency          string       `json:"currency"`
	Status            RefundStatus `json:"status"`
	FailureReason     string       `json:"failure_reason,omitempty"`
	CreatedAt         time.Time    `json:"created_at"`
	UpdatedAt         time.Time    `json:"updated_at"`
}
