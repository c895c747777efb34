package model

import "time"

// Charge is a single payment capture that covers several purchases bought together.
type Charge struct {
	ID                     string     `json:"id"`
	SellerID               string     `json:"seller_id"`
	MerchantAccountID      string     `json:"merchant_account_id"`
	Processor              Processor  `json:"processor"`
	ProcessorTransactionID string     `json:"processor_transaction_id"`
	AmountCents            int64      `json:"amount_cents"`
	GumroadAmountCents     int64      `json:"gumroad_amount_cents"`
	ProcessorFeeCents      int64      `json:"processor_fee_cents"`
	Currency               string     `json:"currency"`
	Purchases              []Purchase `json:"purchases"`
	CreatedAt              time.Time  `json:"created_at"`
}
