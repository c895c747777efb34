package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

var disputeCols = []string{
	"id", "purchase_id", "charge_id", "processor", "processor_dispute_id", "state", "reason",
	"amount_cents", "currency", "initiated_at", "formalized_at", "won_at", "lost_at", "event_created_at",
	"created_at", "updated_at",
}

func disputeRow(rows *sqlmock.Rows, id, state string, formalizedAt any) *sqlmock.Rows {
	now := time.Now()
	return rows.AddRow(id, nil, "charge-1", "stripe", "dp_"+id, state, "fraudulent",
		int64(2000), "usd", now, formalizedAt, nil, nil, now, now, now)
}

func TestDisputePostgres_FindByProcessorDisputeID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDisputePostgres(db)

	t.Run("locks inside a transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM disputes WHERE processor = (.+) FOR UPDATE").
			WithArgs(model.ProcessorStripe, "dp_1").
			WillReturnRows(disputeRow(sqlmock.NewRows(disputeCols), "1", "formalized", time.Now()))
		mock.ExpectCommit()

		var d *model.Dispute
		err := NewTransactor(db).WithTx(context.Background(), func(ctx context.Context) error {
			var err error
			d, err = repo.FindByProcessorDisputeID(ctx, model.ProcessorStripe, "dp_1")
			return err
		})

		require.NoError(t, err)
		assert.Equal(t, model.DisputeFormalized, d.State)
		assert.Equal(t, "charge-1", d.ChargeID)
		assert.Empty(t, d.PurchaseID)
		assert.NotNil(t, d.FormalizedAt)
		assert.Nil(t, d.WonAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM disputes WHERE processor").
			WithArgs(model.ProcessorStripe, "dp_missing").
			WillReturnError(sql.ErrNoRows)

		d, err := repo.FindByProcessorDisputeID(context.Background(), model.ProcessorStripe, "dp_missing")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, d)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDisputePostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDisputePostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()
	d := &model.Dispute{
		ID:                 "1",
		ChargeID:           "charge-1",
		Processor:          model.ProcessorStripe,
		ProcessorDisputeID: "dp_1",
		State:              model.DisputeInitiated,
		Reason:             "fraudulent",
		AmountCents:        2000,
		Currency:           "usd",
		InitiatedAt:        &now,
		EventCreatedAt:     now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	t.Run("created", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO disputes").
			WithArgs(d.ID, nil, "charge-1", d.Processor, d.ProcessorDisputeID, d.State, d.Reason,
				d.AmountCents, d.Currency, now, nil, nil, nil, now, now, now).
			WillReturnRows(disputeRow(sqlmock.NewRows(disputeCols), "1", "initiated", nil))

		out, err := repo.Create(ctx, d)

		require.NoError(t, err)
		assert.Equal(t, "dp_1", out.ProcessorDisputeID)
	})

	t.Run("duplicate", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO disputes").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		out, err := repo.Create(ctx, d)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, out)
	})

	t.Run("other error", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO disputes").
			WillReturnError(errors.New("db down"))

		_, err := repo.Create(ctx, d)

		assert.Error(t, err)
		assert.NotErrorIs(t, err, repository.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputePostgres_UpdateState(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectExec("UPDATE disputes SET state").
		WithArgs("1", model.DisputeWon, now, now, nil, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewDisputePostgres(db).UpdateState(context.Background(), &model.Dispute{
		ID:           "1",
		State:        model.DisputeWon,
		FormalizedAt: &now,
		WonAt:        &now,
		UpdatedAt:    now,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDisputePostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM disputes").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(disputeCols)
	disputeRow(rows, "1", "initiated", nil)
	disputeRow(rows, "2", "won", time.Now())
	mock.ExpectQuery("SELECT (.+) FROM disputes ORDER BY").
		WithArgs(10, 0).
		WillReturnRows(rows)

	res, err := NewDisputePostgres(db).List(context.Background(), repository.PageQuery{Limit: 10, Offset: 0})

	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Items, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}
