// Package processor turns payment processor webhooks into ChargeEvents, the
// single shape the reconciliation service understands, and talks back to the
// processors where a dispute needs a response.
package processor

import (
	"errors"
	"time"

	"chargeapi/internal/model"
)

// EventType is the processor-independent meaning of a webhook.
type EventType string

const (
	EventInformational     EventType = "informational"
	EventDisputeCreated    EventType = "dispute_created"
	EventDisputeFormalized EventType = "dispute_formalized"
	EventDisputeWon        EventType = "dispute_won"
	EventDisputeLost       EventType = "dispute_lost"
	EventRefundUpdated     EventType = "refund_updated"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrMalformedEvent   = errors.New("malformed webhook event")
)

// ChargeEvent is a normalized processor webhook.
type ChargeEvent struct {
	Processor                    model.Processor    `json:"processor"`
	EventID                      string             `json:"event_id"`
	Type                         EventType          `json:"type"`
	ChargeProcessorTransactionID string             `json:"charge_processor_transaction_id,omitempty"`
	DisputeID                    string             `json:"dispute_id,omitempty"`
	RefundID                     string             `json:"refund_id,omitempty"`
	RefundStatus                 model.RefundStatus `json:"refund_status,omitempty"`
	RefundFailureReason          string             `json:"refund_failure_reason,omitempty"`
	Reason                       string             `json:"reason,omitempty"`
	Amount                       model.Amount       `json:"amount"`
	FlowOfFunds                  *model.FlowOfFunds `json:"flow_of_funds,omitempty"`
	CreatedAt                    time.Time          `json:"created_at"`
}

// IsDispute reports whether the event moves a dispute.
func (e ChargeEvent) IsDispute() bool {
	switch e.Type {
	case EventDisputeCreated, EventDisputeFormalized, EventDisputeWon, EventDisputeLost:
		return true
	}
	return false
}

// Validate checks the fields HandleEvent relies on for the event's type.
func (e ChargeEvent) Validate() error {
	if e.Processor == "" || e.EventID == "" {
		return ErrMalformedEvent
	}
	switch {
	case e.IsDispute():
		if e.DisputeID == "" || e.ChargeProcessorTransactionID == "" {
			return ErrMalformedEvent
		}
	case e.Type == EventRefundUpdated:
		if e.RefundID == "" || !e.RefundStatus.Valid() {
			return ErrMalformedEvent
		}
	case e.Type == EventInformational:
	default:
		return ErrMalformedEvent
	}
	return nil
}
