package processor

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"chargeapi/internal/model"
)

const (
	paypalDisputeCreated  = "CUSTOMER.DISPUTE.CREATED"
	paypalDisputeUpdated  = "CUSTOMER.DISPUTE.UPDATED"
	paypalDisputeResolved = "CUSTOMER.DISPUTE.RESOLVED"

	paypalUnderReview     = "UNDER_REVIEW"
	paypalSellerFavourWon = "RESOLVED_SELLER_FAVOUR"
)

type paypalWebhook struct {
	ID         string          `json:"id"`
	EventType  string          `json:"event_type"`
	CreateTime time.Time       `json:"create_time"`
	Resource   json.RawMessage `json:"resource"`
}

type paypalDispute struct {
	DisputeID      string      `json:"dispute_id"`
	Reason         string      `json:"reason"`
	Status         string      `json:"status"`
	DisputeAmount  paypalMoney `json:"dispute_amount"`
	DisputeOutcome struct {
		OutcomeCode string `json:"outcome_code"`
	} `json:"dispute_outcome"`
	DisputedTransactions []struct {
		SellerTransactionID string `json:"seller_transaction_id"`
	} `json:"disputed_transactions"`
}

type paypalMoney struct {
	CurrencyCode string `json:"currency_code"`
	Value        string `json:"value"`
}

// ParsePayPalWebhook normalizes a PayPal dispute webhook. Callers authenticate the
// delivery before handing the payload over.
func ParsePayPalWebhook(payload []byte) (ChargeEvent, error) {
	var wh paypalWebhook
	if err := json.Unmarshal(payload, &wh); err != nil {
		return ChargeEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if wh.ID == "" {
		return ChargeEvent{}, fmt.Errorf("%w: missing id", ErrMalformedEvent)
	}

	out := ChargeEvent{
		Processor: model.ProcessorPayPal,
		EventID:   wh.ID,
		Type:      EventInformational,
		CreatedAt: wh.CreateTime.UTC(),
	}

	switch wh.EventType {
	case paypalDisputeCreated, paypalDisputeUpdated, paypalDisputeResolved:
	default:
		return out, nil
	}

	var res paypalDispute
	if err := json.Unmarshal(wh.Resource, &res); err != nil {
		return ChargeEvent{}, fmt.Errorf("%w: dispute resource: %v", ErrMalformedEvent, err)
	}

	switch wh.EventType {
	case paypalDisputeCreated:
		out.Type = EventDisputeCreated
	case paypalDisputeUpdated:
		if res.Status != paypalUnderReview {
			return out, nil
		}
		out.Type = EventDisputeFormalized
	case paypalDisputeResolved:
		if res.DisputeOutcome.OutcomeCode == paypalSellerFavourWon {
			out.Type = EventDisputeWon
		} else {
			out.Type = EventDisputeLost
		}
	}

	if res.DisputeID == "" || len(res.DisputedTransactions) == 0 || res.DisputedTransactions[0].SellerTransactionID == "" {
		return ChargeEvent{}, fmt.Errorf("%w: dispute without id or transaction", ErrMalformedEvent)
	}
	amount, err := parsePayPalMoney(res.DisputeAmount)
	if err != nil {
		return ChargeEvent{}, err
	}
	out.DisputeID = res.DisputeID
	out.ChargeProcessorTransactionID = res.DisputedTransactions[0].SellerTransactionID
	out.Reason = strings.ToLower(res.Reason)
	out.Amount = amount
	return out, nil
}

func parsePayPalMoney(m paypalMoney) (model.Amount, error) {
	if m.Value == "" {
		return model.Amount{Currency: strings.ToLower(m.CurrencyCode)}, nil
	}
	v, err := decimal.NewFromString(m.Value)
	if err != nil {
		return model.Amount{}, fmt.Errorf("%w: amount %q", ErrMalformedEvent, m.Value)
	}
	return model.Amount{
		Currency: strings.ToLower(m.CurrencyCode),
		Cents:    v.Shift(2).Round(0).IntPart(),
	}, nil
}
