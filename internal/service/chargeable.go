package service

import (
	"context"
	"errors"
	"fmt"

	"chargeapi/internal/billing"
	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// chargeableFinder loads the Chargeable behind a processor transaction, an id or a dispute.
type chargeableFinder struct {
	orders repository.OrderRepository
}

// byProcessorTransaction prefers a combined Charge and falls back to a standalone Purchase.
func (f chargeableFinder) byProcessorTransaction(ctx context.Context, processor model.Processor, txnID string) (billing.Chargeable, error) {
	c, err := f.orders.FindChargeByProcessorTransactionID(ctx, processor, txnID)
	switch {
	case err == nil:
		return billing.WrapCharge(c)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("find charge %s: %w", txnID, err)
	}

	p, err := f.orders.FindPurchaseByProcessorTransactionID(ctx, processor, txnID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find purchase %s: %w", txnID, err)
	}
	return billing.Wrap(p)
}

func (f chargeableFinder) byID(ctx context.Context, kind billing.Kind, id string) (billing.Chargeable, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	switch kind {
	case billing.KindCharge:
		c, err := f.orders.FindChargeByID(ctx, id)
		if err != nil {
			return nil, mapNotFound(err)
		}
		return billing.WrapCharge(c)
	case billing.KindPurchase:
		p, err := f.orders.FindPurchaseByID(ctx, id)
		if err != nil {
			return nil, mapNotFound(err)
		}
		return billing.Wrap(p)
	default:
		return nil, billing.ErrUnknownKind
	}
}

func (f chargeableFinder) forDispute(ctx context.Context, d *model.Dispute) (billing.Chargeable, error) {
	if d.ChargeID != "" {
		return f.byID(ctx, billing.KindCharge, d.ChargeID)
	}
	return f.byID(ctx, billing.KindPurchase, d.PurchaseID)
}

func mapNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
