package model

import "time"

// Processor names the payment processor that captured a transaction.
type Processor string

const (
	ProcessorStripe Processor = "stripe"
	ProcessorPayPal Processor = "paypal"
)

// MerchantAccount is a seller's connected account at a payment processor.
type MerchantAccount struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	Processor           Processor `json:"processor"`
	ProcessorMerchantID string    `json:"processor_merchant_id"`
	Currency            string    `json:"currency"`
	CreatedAt           time.Time `json:"created_at"`
}
