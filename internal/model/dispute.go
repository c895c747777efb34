package model

import "time"

// DisputeState tracks a chargeback from the issuer's first notice to its resolution.
type DisputeState string

const (
	DisputeInitiated  DisputeState = "initiated"
	DisputeFormalized DisputeState = "formalized"
	DisputeWon        DisputeState = "won"
	DisputeLost       DisputeState = "lost"
)

// Terminal reports whether no further transitions are possible.
func (s DisputeState) Terminal() bool {
	return s == DisputeWon || s == DisputeLost
}

// Dispute is a chargeback raised against either a Purchase or a combined Charge.
// Exactly one of PurchaseID and ChargeID is set.
type Dispute struct {
	ID                 string       `json:"id"`
	PurchaseID         string       `json:"purchase_id,omitempty"`
	ChargeID           string       `json:"charge_id,omitempty"`
	Processor          Processor    `json:"processor"`
	ProcessorDisputeID string       `json:"processor_dispute_id"`
	State              DisputeState `json:"state"`
	Reason             string       `json:"reason,omitempty"`
	AmountCents        int64        `json:"amount_cents"`
	Currency           string       `json:"currency"`
	InitiatedAt        *time.Time   `json:"initiated_at,omitempty"`
	FormalizedAt       *time.Time   `json:"formalized_at,omitempty"`
	WonAt              *time.Time   `json:"won_at,omitempty"`
	LostAt             *time.Time   `json:"lost_at,omitempty"`
	EventCreatedAt     time.Time    `json:"event_created_at"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`
}
