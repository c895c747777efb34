package model

import "time"

// PurchaseState is the lifecycle state of a single-item purchase.
type PurchaseState string

const (
	PurchaseSuccessful        PurchaseState = "successful"
	PurchaseFailed            PurchaseState = "failed"
	PurchaseRefunded          PurchaseState = "refunded"
	PurchasePartiallyRefunded PurchaseState = "partially_refunded"
)

// Purchase is a single-item buyer transaction. When ChargeID is set the purchase
// was captured together with others as part of a combined Charge.
type Purchase struct {
	ID                     string        `json:"id"`
	ChargeID               string        `json:"charge_id,omitempty"`
	SellerID               string        `json:"seller_id"`
	ProductID              string        `json:"product_id"`
	ProductName            string        `json:"product_name"`
	Email                  string        `json:"email"`
	SubscriptionID         string        `json:"subscription_id,omitempty"`
	MerchantAccountID      string        `json:"merchant_account_id"`
	Processor              Processor     `json:"processor"`
	ProcessorTransactionID string        `json:"processor_transaction_id"`
	Currency               string        `json:"currency"`
	PriceCents             int64         `json:"price_cents"`
	FeeCents               int64         `json:"fee_cents"`
	TaxCents               int64         `json:"tax_cents"`
	GumroadTaxCents        int64         `json:"gumroad_tax_cents"`
	TotalTransactionCents  int64         `json:"total_transaction_cents"`
	AmountRefundedCents    int64         `json:"amount_refunded_cents"`
	State                  PurchaseState `json:"state"`
	HasRefundPolicy        bool          `json:"has_refund_policy"`
	ChargebackDate         *time.Time    `json:"chargeback_date,omitempty"`
	ChargebackReversed     bool          `json:"chargeback_reversed"`
	CreatedAt              time.Time     `json:"created_at"`
}

// Charged reports whether money was actually captured for the purchase.
func (p *Purchase) Charged() bool {
	return p.State == PurchaseSuccessful || p.State == PurchasePartiallyRefunded
}

// Chargedback reports whether a formalized dispute is currently held against the purchase.
func (p *Purchase) Chargedback() bool {
	return p.ChargebackDate != nil && !p.ChargebackReversed
}

// RefundState derives the state implied by AmountRefundedCents. Failed purchases keep their state.
func (p *Purchase) RefundState() PurchaseState {
	if p.State == PurchaseFailed {
		return p.State
	}
	switch {
	case p.AmountRefundedCents <= 0:
		return PurchaseSuccessful
	case p.AmountRefundedCents >= p.TotalTransactionCents:
		return PurchaseRefunded
	default:
		return PurchasePartiallyRefunded
	}
}
