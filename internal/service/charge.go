package service

import (
	"context"
	"fmt"

	"chargeapi/internal/billing"
	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// ChargeableSummary is the read model of a purchase or combined charge.
type ChargeableSummary struct {
	Kind                   billing.Kind               `json:"kind"`
	ID                     string                     `json:"id"`
	Processor              model.Processor            `json:"processor"`
	ProcessorTransactionID string                     `json:"processor_transaction_id"`
	Currency               string                     `json:"currency"`
	ChargedAmountCents     int64                      `json:"charged_amount_cents"`
	GumroadAmountCents     int64                      `json:"gumroad_amount_cents"`
	RefundableAmountCents  int64                      `json:"refundable_amount_cents"`
	ChargedAmount          string                     `json:"charged_amount"`
	Taxable                bool                       `json:"taxable"`
	MultiItem              bool                       `json:"multi_item"`
	SubscriptionIDs        []string                   `json:"subscription_ids"`
	PurchaseIDs            []string                   `json:"purchase_ids"`
	Ledger                 []model.BalanceTransaction `json:"ledger"`
}

// ChargeService answers read-only questions about chargeables.
type ChargeService interface {
	Summary(ctx context.Context, kind billing.Kind, id string) (*ChargeableSummary, error)
}

type chargeService struct {
	finder chargeableFinder
	ledger repository.LedgerRepository
}

// NewChargeService constructs a new ChargeService.
func NewChargeService(orders repository.OrderRepository, ledger repository.LedgerRepository) ChargeService {
	return &chargeService{finder: chargeableFinder{orders: orders}, ledger: ledger}
}

func (s *chargeService) Summary(ctx context.Context, kind billing.Kind, id string) (*ChargeableSummary, error) {
	ch, err := s.finder.byID(ctx, kind, id)
	if err != nil {
		return nil, err
	}

	purchases := ch.ChargedPurchases()
	ids := make([]string, 0, len(purchases))
	for _, p := range purchases {
		ids = append(ids, p.ID)
	}
	rows, err := s.ledger.ListByPurchases(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list ledger: %w", err)
	}

	return &ChargeableSummary{
		Kind:                   ch.Kind(),
		ID:                     ch.ID(),
		Processor:              ch.Processor(),
		ProcessorTransactionID: ch.ProcessorTransactionID(),
		Currency:               ch.Currency(),
		ChargedAmountCents:     ch.ChargedAmountCents(),
		GumroadAmountCents:     ch.ChargedGumroadAmountCents(),
		RefundableAmountCents:  ch.RefundableAmountCents(),
		ChargedAmount:          billing.Format(model.Amount{Currency: ch.Currency(), Cents: ch.ChargedAmountCents()}),
		Taxable:                ch.Taxable(),
		MultiItem:              ch.MultiItem(),
		SubscriptionIDs:        ch.SubscriptionIDs(),
		PurchaseIDs:            ids,
		Ledger:                 rows,
	}, nil
}
