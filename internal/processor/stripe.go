package processor

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"chargeapi/internal/billing"
	"chargeapi/internal/model"
)

const (
	stripeDisputeCreated        = "charge.dispute.created"
	stripeDisputeFundsWithdrawn = "charge.dispute.funds_withdrawn"
	stripeDisputeClosed         = "charge.dispute.closed"
	stripeRefundUpdated         = "charge.refund.updated"
)

// ParseStripeWebhook verifies the Stripe-Signature header against secret and
// normalizes the event.
func ParseStripeWebhook(payload []byte, signatureHeader, secret string) (ChargeEvent, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if isSignatureError(err) {
			return ChargeEvent{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return ChargeEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	return FromStripeEvent(ev)
}

func isSignatureError(err error) bool {
	return errors.Is(err, webhook.ErrNotSigned) ||
		errors.Is(err, webhook.ErrInvalidHeader) ||
		errors.Is(err, webhook.ErrNoValidSignature) ||
		errors.Is(err, webhook.ErrTooOld)
}

// FromStripeEvent normalizes an already verified Stripe event.
func FromStripeEvent(ev stripe.Event) (ChargeEvent, error) {
	out := ChargeEvent{
		Processor: model.ProcessorStripe,
		EventID:   ev.ID,
		Type:      EventInformational,
		CreatedAt: time.Unix(ev.Created, 0).UTC(),
	}
	if ev.Data == nil {
		return out, nil
	}

	switch string(ev.Type) {
	case stripeDisputeCreated, stripeDisputeFundsWithdrawn, stripeDisputeClosed:
		var d stripe.Dispute
		if err := json.Unmarshal(ev.Data.Raw, &d); err != nil {
			return ChargeEvent{}, fmt.Errorf("%w: dispute: %v", ErrMalformedEvent, err)
		}
		return disputeEvent(out, string(ev.Type), &d)
	case stripeRefundUpdated:
		var r stripe.Refund
		if err := json.Unmarshal(ev.Data.Raw, &r); err != nil {
			return ChargeEvent{}, fmt.Errorf("%w: refund: %v", ErrMalformedEvent, err)
		}
		return refundEvent(out, &r)
	}
	return out, nil
}

func disputeEvent(out ChargeEvent, typ string, d *stripe.Dispute) (ChargeEvent, error) {
	if d.ID == "" || d.Charge == nil || d.Charge.ID == "" {
		return ChargeEvent{}, fmt.Errorf("%w: dispute without id or charge", ErrMalformedEvent)
	}
	out.DisputeID = d.ID
	out.ChargeProcessorTransactionID = d.Charge.ID
	out.Reason = string(d.Reason)
	out.Amount = model.Amount{Currency: string(d.Currency), Cents: d.Amount}

	switch typ {
	case stripeDisputeCreated:
		out.Type = EventDisputeCreated
	case stripeDisputeFundsWithdrawn:
		out.Type = EventDisputeFormalized
		ff, err := disputeFlowOfFunds(d)
		if err != nil {
			return ChargeEvent{}, err
		}
		out.FlowOfFunds = ff
	case stripeDisputeClosed:
		switch d.Status {
		case stripe.DisputeStatusWon, stripe.DisputeStatusWarningClosed:
			out.Type = EventDisputeWon
		case stripe.DisputeStatusLost:
			out.Type = EventDisputeLost
		}
	}
	return out, nil
}

// disputeFlowOfFunds reads the withdrawal from the dispute's first balance
// transaction. Amounts are reported as magnitudes; the ledger applies the sign.
func disputeFlowOfFunds(d *stripe.Dispute) (*model.FlowOfFunds, error) {
	if len(d.BalanceTransactions) == 0 || d.BalanceTransactions[0] == nil {
		return nil, nil
	}
	bt := d.BalanceTransactions[0]
	issued := model.Amount{Currency: string(d.Currency), Cents: d.Amount}

	settled := model.Amount{Currency: string(bt.Currency), Cents: abs(bt.Amount)}
	if bt.Amount == 0 && bt.ExchangeRate > 0 {
		converted, err := billing.Convert(issued, decimal.NewFromFloat(bt.ExchangeRate), string(bt.Currency))
		if err != nil {
			return nil, err
		}
		settled = converted
	}
	return &model.FlowOfFunds{
		IssuedAmount:  issued,
		SettledAmount: settled,
		GumroadAmount: settled,
	}, nil
}

func refundEvent(out ChargeEvent, r *stripe.Refund) (ChargeEvent, error) {
	if r.ID == "" {
		return ChargeEvent{}, fmt.Errorf("%w: refund without id", ErrMalformedEvent)
	}
	status, ok := refundStatus(r.Status)
	if !ok {
		out.Type = EventInformational
		return out, nil
	}
	out.Type = EventRefundUpdated
	out.RefundID = r.ID
	out.RefundStatus = status
	out.RefundFailureReason = string(r.FailureReason)
	out.Amount = model.Amount{Currency: string(r.Currency), Cents: r.Amount}
	if r.Charge != nil {
		out.ChargeProcessorTransactionID = r.Charge.ID
	}
	return out, nil
}

// refundStatus maps a Stripe refund status onto the statuses stored for a
// refund. Statuses Stripe adds later are reported as not ok.
func refundStatus(s stripe.RefundStatus) (model.RefundStatus, bool) {
	switch s {
	case stripe.RefundStatusPending, stripe.RefundStatusRequiresAction:
		return model.RefundPending, true
	case stripe.RefundStatusSucceeded:
		return model.RefundSucceeded, true
	case stripe.RefundStatusFailed:
		return model.RefundFailed, true
	case stripe.RefundStatusCanceled:
		return model.RefundCanceled, true
	default:
		return "", false
	}
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}
