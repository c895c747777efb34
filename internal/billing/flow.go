package billing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"chargeapi/internal/model"
)

var ErrInvalidRate = errors.New("exchange rate must be positive")

// SimpleFlowOfFunds is used when the processor reports nothing beyond the amount:
// the same amount was issued, settled and attributed to the platform.
func SimpleFlowOfFunds(currency string, cents int64) model.FlowOfFunds {
	a := model.Amount{Currency: currency, Cents: cents}
	return model.FlowOfFunds{IssuedAmount: a, SettledAmount: a, GumroadAmount: a}
}

// Convert applies rate to amount and rounds half away from zero to whole minor units.
func Convert(amount model.Amount, rate decimal.Decimal, target string) (model.Amount, error) {
	if !rate.IsPositive() {
		return model.Amount{}, ErrInvalidRate
	}
	cents := decimal.NewFromInt(amount.Cents).Mul(rate).Round(0).IntPart()
	return model.Amount{Currency: target, Cents: cents}, nil
}

// Format renders an amount in major units, e.g. "12.34 USD".
func Format(a model.Amount) string {
	return decimal.New(a.Cents, -2).StringFixed(2) + " " + strings.ToUpper(a.Currency)
}

// SplitFlowOfFunds shares every component of ff between len(weights) parts in
// proportion to weights. Each share is floored and the remainder goes to the last
// part, so each component's parts always sum to the original. When every weight
// is zero the split is equal.
func SplitFlowOfFunds(ff model.FlowOfFunds, weights []int64) []model.FlowOfFunds {
	n := len(weights)
	if n == 0 {
		return nil
	}
	w := weights
	var total int64
	for _, x := range weights {
		if x > 0 {
			total += x
		}
	}
	if total == 0 {
		w = make([]int64, n)
		for i := range w {
			w[i] = 1
		}
		total = int64(n)
	}

	issued := splitAmount(ff.IssuedAmount, w, total)
	settled := splitAmount(ff.SettledAmount, w, total)
	gumroad := splitAmount(ff.GumroadAmount, w, total)
	var gross, net []model.Amount
	if ff.MerchantAccountGrossAmount != nil {
		gross = splitAmount(*ff.MerchantAccountGrossAmount, w, total)
	}
	if ff.MerchantAccountNetAmount != nil {
		net = splitAmount(*ff.MerchantAccountNetAmount, w, total)
	}

	out := make([]model.FlowOfFunds, n)
	for i := range out {
		out[i] = model.FlowOfFunds{
			IssuedAmount:  issued[i],
			SettledAmount: settled[i],
			GumroadAmount: gumroad[i],
		}
		if gross != nil {
			g := gross[i]
			out[i].MerchantAccountGrossAmount = &g
		}
		if net != nil {
			m := net[i]
			out[i].MerchantAccountNetAmount = &m
		}
	}
	return out
}

func splitAmount(a model.Amount, weights []int64, total int64) []model.Amount {
	out := make([]model.Amount, len(weights))
	whole := decimal.NewFromInt(a.Cents)
	den := decimal.NewFromInt(total)
	var assigned int64
	for i, x := range weights {
		if x < 0 {
			x = 0
		}
		var share int64
		if i == len(weights)-1 {
			share = a.Cents - assigned
		} else {
			share = whole.Mul(decimal.NewFromInt(x)).Div(den).Truncate(0).IntPart()
		}
		assigned += share
		out[i] = model.Amount{Currency: a.Currency, Cents: share}
	}
	return out
}

// SellerNetCents is the seller's share of a purchase that is still on their
// balance: price minus the platform fee, scaled by the part not yet refunded.
func SellerNetCents(p *model.Purchase) int64 {
	if p.PriceCents <= 0 {
		return 0
	}
	remaining := p.PriceCents - p.AmountRefundedCents
	if remaining <= 0 {
		return 0
	}
	net := decimal.NewFromInt(p.PriceCents - p.FeeCents).
		Mul(decimal.NewFromInt(remaining)).
		Div(decimal.NewFromInt(p.PriceCents)).
		Truncate(0).IntPart()
	if net < 0 {
		return 0
	}
	return net
}

// SellerShareCents is the part of amount that was charged to the seller for purchase p.
func SellerShareCents(p *model.Purchase, amount int64) int64 {
	if p.PriceCents <= 0 || amount <= 0 {
		return 0
	}
	share := decimal.NewFromInt(p.PriceCents - p.FeeCents).
		Mul(decimal.NewFromInt(amount)).
		Div(decimal.NewFromInt(p.PriceCents)).
		Truncate(0).IntPart()
	if share < 0 {
		return 0
	}
	return share
}
