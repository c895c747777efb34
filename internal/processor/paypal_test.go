package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargeapi/internal/model"
)

func paypalPayload(eventType, status, outcome string) []byte {
	return []byte(`{
		"id": "WH-1",
		"event_type": "` + eventType + `",
		"create_time": "2026-01-01T10:00:00.000Z",
		"resource": {
			"dispute_id": "PP-D-1",
			"reason": "MERCHANDISE_OR_SERVICE_NOT_RECEIVED",
			"status": "` + status + `",
			"dispute_amount": {"currency_code": "USD", "value": "12.35"},
			"dispute_outcome": {"outcome_code": "` + outcome + `"},
			"disputed_transactions": [{"seller_transaction_id": "9XL1"}]
		}
	}`)
}

func TestParsePayPalWebhook(t *testing.T) {
	tests := []struct {
		name      string
		eventType string
		status    string
		outcome   string
		want      EventType
	}{
		{name: "created", eventType: "CUSTOMER.DISPUTE.CREATED", status: "OPEN", want: EventDisputeCreated},
		{name: "under review", eventType: "CUSTOMER.DISPUTE.UPDATED", status: "UNDER_REVIEW", want: EventDisputeFormalized},
		{name: "other update", eventType: "CUSTOMER.DISPUTE.UPDATED", status: "WAITING_FOR_SELLER_RESPONSE", want: EventInformational},
		{name: "seller favour", eventType: "CUSTOMER.DISPUTE.RESOLVED", status: "RESOLVED", outcome: "RESOLVED_SELLER_FAVOUR", want: EventDisputeWon},
		{name: "buyer favour", eventType: "CUSTOMER.DISPUTE.RESOLVED", status: "RESOLVED", outcome: "RESOLVED_BUYER_FAVOUR", want: EventDisputeLost},
		{name: "unrelated", eventType: "PAYMENT.SALE.COMPLETED", want: EventInformational},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParsePayPalWebhook(paypalPayload(tt.eventType, tt.status, tt.outcome))
			require.NoError(t, err)

			assert.Equal(t, tt.want, ev.Type)
			assert.Equal(t, model.ProcessorPayPal, ev.Processor)
			assert.Equal(t, "WH-1", ev.EventID)
			if ev.IsDispute() {
				assert.Equal(t, "PP-D-1", ev.DisputeID)
				assert.Equal(t, "9XL1", ev.ChargeProcessorTransactionID)
				assert.Equal(t, model.Amount{Currency: "usd", Cents: 1235}, ev.Amount)
				assert.Equal(t, "merchandise_or_service_not_received", ev.Reason)
				assert.NoError(t, ev.Validate())
			}
		})
	}
}

func TestParsePayPalWebhook_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "not json", payload: `nope`},
		{name: "missing id", payload: `{"event_type":"CUSTOMER.DISPUTE.CREATED"}`},
		{name: "missing transaction", payload: `{"id":"WH-2","event_type":"CUSTOMER.DISPUTE.CREATED","resource":{"dispute_id":"PP-D-2"}}`},
		{name: "bad amount", payload: `{"id":"WH-3","event_type":"CUSTOMER.DISPUTE.CREATED","resource":{"dispute_id":"PP-D-3","dispute_amount":{"currency_code":"USD","value":"ten"},"disputed_transactions":[{"seller_transaction_id":"T"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePayPalWebhook([]byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}
