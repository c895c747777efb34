package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

var purchaseCols = []string{
	"id", "charge_id", "seller_id", "product_id", "product_name", "email", "subscription_id",
	"merchant_account_id", "processor", "processor_transaction_id", "currency", "price_cents", "fee_cents",
	"tax_cents", "gumroad_tax_cents", "total_transaction_cents", "amount_refunded_cents", "state",
	"has_refund_policy", "chargeback_date", "chargeback_reversed", "created_at",
}

var chargeCols = []string{
	"id", "seller_id", "merchant_account_id", "processor", "processor_transaction_id",
	"amount_cents", "gumroad_amount_cents", "processor_fee_cents", "currency", "created_at",
}

func purchaseRow(rows *sqlmock.Rows, id, chargeID, subscriptionID string, chargebackDate any) *sqlmock.Rows {
	var charge, sub any
	if chargeID != "" {
		charge = chargeID
	}
	if subscriptionID != "" {
		sub = subscriptionID
	}
	return rows.AddRow(id, charge, "seller-1", "prod-"+id, "Product "+id, "buyer@example.com", sub,
		"ma-1", "stripe", "ch_1", "usd", int64(1000), int64(130), int64(0), int64(0), int64(1000), int64(0),
		"successful", true, chargebackDate, false, time.Now())
}

func TestOrderPostgres_FindChargeByProcessorTransactionID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderPostgres(db)
	ctx := context.Background()

	t.Run("loads purchases", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM charges WHERE processor = (.+) AND processor_transaction_id").
			WithArgs(model.ProcessorStripe, "ch_1").
			WillReturnRows(sqlmock.NewRows(chargeCols).
				AddRow("charge-1", "seller-1", nil, "stripe", "ch_1", int64(2000), int64(260), int64(88), "usd", time.Now()))

		rows := sqlmock.NewRows(purchaseCols)
		purchaseRow(rows, "p1", "charge-1", "sub-1", nil)
		purchaseRow(rows, "p2", "charge-1", "", time.Now())
		mock.ExpectQuery("SELECT (.+) FROM purchases WHERE charge_id").
			WithArgs("charge-1").
			WillReturnRows(rows)

		c, err := repo.FindChargeByProcessorTransactionID(ctx, model.ProcessorStripe, "ch_1")

		require.NoError(t, err)
		assert.Equal(t, "charge-1", c.ID)
		assert.Empty(t, c.MerchantAccountID)
		require.Len(t, c.Purchases, 2)
		assert.Equal(t, "sub-1", c.Purchases[0].SubscriptionID)
		assert.Nil(t, c.Purchases[0].ChargebackDate)
		assert.NotNil(t, c.Purchases[1].ChargebackDate)
		assert.Equal(t, "charge-1", c.Purchases[1].ChargeID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM charges").
			WithArgs(model.ProcessorStripe, "ch_missing").
			WillReturnError(sql.ErrNoRows)

		c, err := repo.FindChargeByProcessorTransactionID(ctx, model.ProcessorStripe, "ch_missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, c)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderPostgres_FindPurchaseByProcessorTransactionID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderPostgres(db)

	rows := sqlmock.NewRows(purchaseCols)
	purchaseRow(rows, "p1", "", "", nil)
	mock.ExpectQuery("SELECT (.+) FROM purchases WHERE processor = (.+) AND charge_id IS NULL").
		WithArgs(model.ProcessorPayPal, "PAY-1").
		WillReturnRows(rows)

	p, err := repo.FindPurchaseByProcessorTransactionID(context.Background(), model.ProcessorPayPal, "PAY-1")

	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Empty(t, p.ChargeID)
	assert.Equal(t, model.PurchaseSuccessful, p.State)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_UpdatePurchaseChargeback(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderPostgres(db)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	t.Run("updated", func(t *testing.T) {
		mock.ExpectExec("UPDATE purchases SET chargeback_date").
			WithArgs("p1", at, false).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdatePurchaseChargeback(ctx, &model.Purchase{ID: "p1", ChargebackDate: &at})

		assert.NoError(t, err)
	})

	t.Run("missing row", func(t *testing.T) {
		mock.ExpectExec("UPDATE purchases SET chargeback_date").
			WithArgs("p2", nil, true).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdatePurchaseChargeback(ctx, &model.Purchase{ID: "p2", ChargebackReversed: true})

		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_UpdatePurchaseRefund(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE purchases SET amount_refunded_cents").
		WithArgs("p1", int64(250), model.PurchasePartiallyRefunded).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewOrderPostgres(db).UpdatePurchaseRefund(context.Background(), &model.Purchase{
		ID:                  "p1",
		AmountRefundedCents: 250,
		State:               model.PurchasePartiallyRefunded,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_CancelSubscription(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	at := time.Now().UTC()
	mock.ExpectExec("UPDATE subscriptions SET state = 'cancelled'").
		WithArgs("sub-1", at, "chargeback").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewOrderPostgres(db).CancelSubscription(context.Background(), "sub-1", "chargeback", at)

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrderPostgres_FindPurchaseByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderPostgres(db)

	t.Run("locks inside a transaction", func(t *testing.T) {
		rows := sqlmock.NewRows(purchaseCols)
		purchaseRow(rows, "p1", "", "", nil)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM purchases WHERE id = (.+) FOR UPDATE").
			WithArgs("p1").
			WillReturnRows(rows)
		mock.ExpectExec("UPDATE purchases SET amount_refunded_cents").
			WithArgs("p1", int64(400), model.PurchasePartiallyRefunded).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := NewTransactor(db).WithTx(context.Background(), func(ctx context.Context) error {
			p, err := repo.FindPurchaseByID(ctx, "p1")
			if err != nil {
				return err
			}
			p.AmountRefundedCents = 400
			p.State = model.PurchasePartiallyRefunded
			return repo.UpdatePurchaseRefund(ctx, p)
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM purchases WHERE id").
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindPurchaseByID(context.Background(), "missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestOrderPostgres_ChargePurchasesLockedInsideTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewOrderPostgres(db)

	purchases := sqlmock.NewRows(purchaseCols)
	purchaseRow(purchases, "p1", "charge-1", "", nil)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM charges WHERE processor = (.+) AND processor_transaction_id").
		WithArgs(model.ProcessorStripe, "ch_1").
		WillReturnRows(sqlmock.NewRows(chargeCols).
			AddRow("charge-1", "seller-1", "ma-1", "stripe", "ch_1", int64(1000), int64(130), int64(30), "usd", time.Now()))
	mock.ExpectQuery("SELECT (.+) FROM purchases WHERE charge_id = (.+) ORDER BY created_at, id FOR UPDATE").
		WithArgs("charge-1").
		WillReturnRows(purchases)
	mock.ExpectCommit()

	var c *model.Charge
	err = NewTransactor(db).WithTx(context.Background(), func(ctx context.Context) error {
		var err error
		c, err = repo.FindChargeByProcessorTransactionID(ctx, model.ProcessorStripe, "ch_1")
		return err
	})

	require.NoError(t, err)
	require.Len(t, c.Purchases, 1)
	assert.Equal(t, "p1", c.Purchases[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
