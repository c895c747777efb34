// Package billing holds the processor-agnostic rules for money captured from a
// buyer: which purchases a capture covers, how much of it can still be refunded
// or disputed, and how an event's flow of funds is shared between purchases.
package billing

import (
	"errors"

	"chargeapi/internal/model"
)

// Kind tells the two Chargeable variants apart.
type Kind string

const (
	KindPurchase Kind = "purchase"
	KindCharge   Kind = "charge"
)

// ParseKind validates a kind taken from user input.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPurchase, KindCharge:
		return Kind(s), nil
	}
	return "", ErrUnknownKind
}

var (
	ErrNilChargeable = errors.New("chargeable is nil")
	ErrUnknownKind   = errors.New("unknown chargeable kind")
)

// Chargeable is money captured in one processor transaction: either a single
// Purchase or a combined Charge. It is sealed; Single and Combined are the only
// implementations.
type Chargeable interface {
	Kind() Kind
	ID() string
	Processor() model.Processor
	ProcessorTransactionID() string
	SellerID() string
	MerchantAccountID() string
	Currency() string

	// ChargedPurchases returns the purchases money was captured for.
	ChargedPurchases() []*model.Purchase
	// ChargedBackPurchases returns the purchases holding an unreversed
	// chargeback, whatever their refund state became afterwards.
	ChargedBackPurchases() []*model.Purchase
	ChargedAmountCents() int64
	ChargedGumroadAmountCents() int64
	RefundableAmountCents() int64
	DisputedAmountCents() int64
	Taxable() bool
	MultiItem() bool
	SubscriptionIDs() []string
	CustomerEmail() string
	FirstProductWithoutRefundPolicy() *model.Purchase

	sealed()
}

// Single is a purchase captured on its own.
type Single struct {
	p *model.Purchase
}

// Combined is a charge covering one or more purchases.
type Combined struct {
	c *model.Charge
}

// Wrap returns the Chargeable for a standalone purchase.
func Wrap(p *model.Purchase) (Chargeable, error) {
	if p == nil {
		return nil, ErrNilChargeable
	}
	return Single{p: p}, nil
}

// WrapCharge returns the Chargeable for a combined charge.
func WrapCharge(c *model.Charge) (Chargeable, error) {
	if c == nil {
		return nil, ErrNilChargeable
	}
	return Combined{c: c}, nil
}

func (Single) sealed()   {}
func (Combined) sealed() {}

func (s Single) Kind() Kind                       { return KindPurchase }
func (s Single) ID() string                       { return s.p.ID }
func (s Single) Processor() model.Processor       { return s.p.Processor }
func (s Single) ProcessorTransactionID() string   { return s.p.ProcessorTransactionID }
func (s Single) SellerID() string                 { return s.p.SellerID }
func (s Single) MerchantAccountID() string        { return s.p.MerchantAccountID }
func (s Single) Currency() string                 { return s.p.Currency }
func (s Single) ChargedAmountCents() int64        { return s.p.TotalTransactionCents }
func (s Single) ChargedGumroadAmountCents() int64 { return s.p.FeeCents + s.p.GumroadTaxCents }
func (s Single) MultiItem() bool                  { return false }

// Purchase exposes the wrapped record.
func (s Single) Purchase() *model.Purchase { return s.p }

func (s Single) ChargedPurchases() []*model.Purchase {
	if !s.p.Charged() {
		return nil
	}
	return []*model.Purchase{s.p}
}

func (s Single) ChargedBackPurchases() []*model.Purchase {
	return chargedBack([]*model.Purchase{s.p})
}

func (s Single) RefundableAmountCents() int64 { return refundable(s.ChargedPurchases()) }
func (s Single) DisputedAmountCents() int64   { return s.ChargedAmountCents() }
func (s Single) Taxable() bool                { return taxable(s.ChargedPurchases()) }
func (s Single) SubscriptionIDs() []string    { return subscriptionIDs(s.ChargedPurchases()) }
func (s Single) CustomerEmail() string        { return customerEmail(s.ChargedPurchases()) }
func (s Single) FirstProductWithoutRefundPolicy() *model.Purchase {
	return withoutRefundPolicy(s.ChargedPurchases())
}

func (c Combined) Kind() Kind                       { return KindCharge }
func (c Combined) ID() string                       { return c.c.ID }
func (c Combined) Processor() model.Processor       { return c.c.Processor }
func (c Combined) ProcessorTransactionID() string   { return c.c.ProcessorTransactionID }
func (c Combined) SellerID() string                 { return c.c.SellerID }
func (c Combined) MerchantAccountID() string        { return c.c.MerchantAccountID }
func (c Combined) Currency() string                 { return c.c.Currency }
func (c Combined) ChargedAmountCents() int64        { return c.c.AmountCents }
func (c Combined) ChargedGumroadAmountCents() int64 { return c.c.GumroadAmountCents }

// Charge exposes the wrapped record.
func (c Combined) Charge() *model.Charge { return c.c }

func (c Combined) ChargedPurchases() []*model.Purchase {
	out := make([]*model.Purchase, 0, len(c.c.Purchases))
	for i := range c.c.Purchases {
		if c.c.Purchases[i].Charged() {
			out = append(out, &c.c.Purchases[i])
		}
	}
	return out
}

func (c Combined) ChargedBackPurchases() []*model.Purchase {
	all := make([]*model.Purchase, len(c.c.Purchases))
	for i := range c.c.Purchases {
		all[i] = &c.c.Purchases[i]
	}
	return chargedBack(all)
}

func (c Combined) MultiItem() bool              { return len(c.c.Purchases) > 1 }
func (c Combined) RefundableAmountCents() int64 { return refundable(c.ChargedPurchases()) }
func (c Combined) DisputedAmountCents() int64   { return c.ChargedAmountCents() }
func (c Combined) Taxable() bool                { return taxable(c.ChargedPurchases()) }
func (c Combined) SubscriptionIDs() []string    { return subscriptionIDs(c.ChargedPurchases()) }
func (c Combined) CustomerEmail() string        { return customerEmail(c.ChargedPurchases()) }
func (c Combined) FirstProductWithoutRefundPolicy() *model.Purchase {
	return withoutRefundPolicy(c.ChargedPurchases())
}

func chargedBack(ps []*model.Purchase) []*model.Purchase {
	var out []*model.Purchase
	for _, p := range ps {
		if p.Chargedback() {
			out = append(out, p)
		}
	}
	return out
}

func refundable(ps []*model.Purchase) int64 {
	var total int64
	for _, p := range ps {
		if left := p.TotalTransactionCents - p.AmountRefundedCents; left > 0 {
			total += left
		}
	}
	return total
}

func taxable(ps []*model.Purchase) bool {
	for _, p := range ps {
		if p.TaxCents > 0 || p.GumroadTaxCents > 0 {
			return true
		}
	}
	return false
}

func subscriptionIDs(ps []*model.Purchase) []string {
	seen := make(map[string]struct{}, len(ps))
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		if p.SubscriptionID == "" {
			continue
		}
		if _, ok := seen[p.SubscriptionID]; ok {
			continue
		}
		seen[p.SubscriptionID] = struct{}{}
		out = append(out, p.SubscriptionID)
	}
	return out
}

func customerEmail(ps []*model.Purchase) string {
	if len(ps) == 0 {
		return ""
	}
	return ps[0].Email
}

func withoutRefundPolicy(ps []*model.Purchase) *model.Purchase {
	for _, p := range ps {
		if !p.HasRefundPolicy {
			return p
		}
	}
	return nil
}
