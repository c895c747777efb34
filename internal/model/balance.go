package model

import "time"

type BalanceTransactionKind string

const (
	BalanceDisputeDebit          BalanceTransactionKind = "dispute_debit"
	BalanceDisputeReversalCredit BalanceTransactionKind = "dispute_reversal_credit"
	BalanceRefundFailureCredit   BalanceTransactionKind = "refund_failure_credit"
)

// BalanceTransaction is one signed movement on a seller's balance.
type BalanceTransaction struct {
	ID          string                 `json:"id"`
	SellerID    string                 `json:"seller_id"`
	PurchaseID  string                 `json:"purchase_id"`
	DisputeID   string                 `json:"dispute_id,omitempty"`
	RefundID    string                 `json:"refund_id,omitempty"`
	Kind        BalanceTransactionKind `json:"kind"`
	AmountCents int64                  `json:"amount_cents"`
	Currency    string                 `json:"currency"`
	FlowOfFunds FlowOfFunds            `json:"flow_of_funds"`
	CreatedAt   time.Time              `json:"created_at"`
}
