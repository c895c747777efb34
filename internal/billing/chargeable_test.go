package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargeapi/internal/model"
)

func purchase(id string, total int64) model.Purchase {
	return model.Purchase{
		ID:                    id,
		SellerID:              "seller-1",
		Email:                 id + "@example.com",
		Currency:              "usd",
		PriceCents:            total,
		FeeCents:              total / 10,
		TotalTransactionCents: total,
		State:                 model.PurchaseSuccessful,
		HasRefundPolicy:       true,
	}
}

func TestWrap_Nil(t *testing.T) {
	_, err := Wrap(nil)
	assert.ErrorIs(t, err, ErrNilChargeable)

	_, err = WrapCharge(nil)
	assert.ErrorIs(t, err, ErrNilChargeable)
}

func TestSingle(t *testing.T) {
	p := purchase("p1", 1000)
	p.GumroadTaxCents = 50
	p.SubscriptionID = "sub-1"
	p.AmountRefundedCents = 300

	c, err := Wrap(&p)
	require.NoError(t, err)

	assert.Equal(t, KindPurchase, c.Kind())
	assert.Equal(t, int64(1000), c.ChargedAmountCents())
	assert.Equal(t, int64(150), c.ChargedGumroadAmountCents())
	assert.Equal(t, int64(700), c.RefundableAmountCents())
	assert.Equal(t, int64(1000), c.DisputedAmountCents())
	assert.True(t, c.Taxable())
	assert.False(t, c.MultiItem())
	assert.Equal(t, []string{"sub-1"}, c.SubscriptionIDs())
	assert.Equal(t, "p1@example.com", c.CustomerEmail())
	assert.Nil(t, c.FirstProductWithoutRefundPolicy())
	assert.Len(t, c.ChargedPurchases(), 1)
}

func TestSingle_FailedPurchaseIsNotCharged(t *testing.T) {
	p := purchase("p1", 1000)
	p.State = model.PurchaseFailed
	p.SubscriptionID = "sub-1"

	c, err := Wrap(&p)
	require.NoError(t, err)

	assert.Empty(t, c.ChargedPurchases())
	assert.Zero(t, c.RefundableAmountCents())
	assert.Empty(t, c.SubscriptionIDs())
	assert.Empty(t, c.CustomerEmail())
}

func TestCombined(t *testing.T) {
	a := purchase("a", 1000)
	b := purchase("b", 500)
	b.HasRefundPolicy = false
	b.SubscriptionID = "sub-2"
	d := purchase("d", 700)
	d.State = model.PurchaseFailed
	d.TaxCents = 70
	e := purchase("e", 300)
	e.SubscriptionID = "sub-2"
	e.AmountRefundedCents = 400

	ch := &model.Charge{
		ID:                 "ch1",
		AmountCents:        1800,
		GumroadAmountCents: 180,
		Currency:           "usd",
		Purchases:          []model.Purchase{a, b, d, e},
	}
	c, err := WrapCharge(ch)
	require.NoError(t, err)

	assert.Equal(t, KindCharge, c.Kind())
	assert.True(t, c.MultiItem())
	assert.Equal(t, int64(1800), c.ChargedAmountCents())
	assert.Equal(t, int64(180), c.ChargedGumroadAmountCents())
	// e is over-refunded and contributes nothing rather than a negative amount.
	assert.Equal(t, int64(1500), c.RefundableAmountCents())
	assert.False(t, c.Taxable(), "tax on a failed purchase does not count")
	assert.Equal(t, []string{"sub-2"}, c.SubscriptionIDs())
	assert.Equal(t, "a@example.com", c.CustomerEmail())
	require.NotNil(t, c.FirstProductWithoutRefundPolicy())
	assert.Equal(t, "b", c.FirstProductWithoutRefundPolicy().ID)

	ids := make([]string, 0)
	for _, p := range c.ChargedPurchases() {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"a", "b", "e"}, ids)
}

func TestCombined_ChargedPurchasesAliasCharge(t *testing.T) {
	ch := &model.Charge{ID: "ch1", Purchases: []model.Purchase{purchase("a", 100)}}
	c, err := WrapCharge(ch)
	require.NoError(t, err)

	c.ChargedPurchases()[0].ChargebackReversed = true
	assert.True(t, ch.Purchases[0].ChargebackReversed)
	assert.False(t, c.MultiItem())
}

func TestChargedBackPurchases(t *testing.T) {
	at := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	a := purchase("a", 1000)
	a.ChargebackDate = &at
	a.State = model.PurchaseRefunded
	b := purchase("b", 500)
	b.ChargebackDate = &at
	b.ChargebackReversed = true
	d := purchase("d", 700)

	c, err := WrapCharge(&model.Charge{ID: "ch1", Purchases: []model.Purchase{a, b, d}})
	require.NoError(t, err)

	back := c.ChargedBackPurchases()
	require.Len(t, back, 1)
	assert.Equal(t, "a", back[0].ID)
	assert.NotContains(t, c.ChargedPurchases(), back[0], "refunded purchases are no longer charged")

	single, err := Wrap(&a)
	require.NoError(t, err)
	assert.Len(t, single.ChargedBackPurchases(), 1)

	clean, err := Wrap(&d)
	require.NoError(t, err)
	assert.Empty(t, clean.ChargedBackPurchases())
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("charge")
	require.NoError(t, err)
	assert.Equal(t, KindCharge, k)

	_, err = ParseKind("order")
	assert.ErrorIs(t, err, ErrUnknownKind)
}
