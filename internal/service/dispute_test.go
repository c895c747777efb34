package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"chargeapi/internal/clock"
	"chargeapi/internal/model"
	"chargeapi/internal/processor"
	"chargeapi/internal/repository"
	repoMocks "chargeapi/internal/repository/mocks"
	"chargeapi/internal/storage"
	storeMocks "chargeapi/internal/storage/mocks"
)

type fakeSubmitter struct {
	disputeID string
	evidence  processor.DisputeEvidence
	calls     int
	err       error
}

func (f *fakeSubmitter) SubmitEvidence(_ context.Context, disputeID string, ev processor.DisputeEvidence) error {
	f.calls++
	f.disputeID = disputeID
	f.evidence = ev
	return f.err
}

type disputeFixture struct {
	disputes  *repoMocks.MockDisputeRepository
	evidence  *repoMocks.MockEvidenceRepository
	orders    *repoMocks.MockOrderRepository
	store     *storeMocks.MockStorage
	submitter *fakeSubmitter
	svc       DisputeService
}

func newDisputeFixture() *disputeFixture {
	f := &disputeFixture{
		disputes:  new(repoMocks.MockDisputeRepository),
		evidence:  new(repoMocks.MockEvidenceRepository),
		orders:    new(repoMocks.MockOrderRepository),
		store:     new(storeMocks.MockStorage),
		submitter: &fakeSubmitter{},
	}
	f.svc = NewDisputeService(DisputeDeps{
		Disputes:  f.disputes,
		Evidence:  f.evidence,
		Orders:    f.orders,
		Store:     f.store,
		Submitter: f.submitter,
	}, clock.Fixed(testNow), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return f
}

func TestDisputeService_List(t *testing.T) {
	tests := []struct {
		name       string
		limit      int
		offset     int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", 0, -5, 10, 0},
		{"explicit", 25, 50, 25, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newDisputeFixture()
			f.disputes.On("List", mock.Anything, repository.PageQuery{Limit: tt.wantLimit, Offset: tt.wantOffset}).
				Return(&repository.PageResult[model.Dispute]{Items: []model.Dispute{{ID: "d1"}}, Total: 1}, nil).Once()

			res, err := f.svc.List(context.Background(), tt.limit, tt.offset)

			require.NoError(t, err)
			assert.Equal(t, 1, res.Total)
			assert.Equal(t, "d1", res.Items[0].ID)
			f.disputes.AssertExpectations(t)
		})
	}
}

func TestDisputeService_Get(t *testing.T) {
	t.Run("with evidence", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeFormalized), nil).Once()
		f.evidence.On("ListByDispute", mock.Anything, "d1").
			Return([]model.Evidence{{ID: "e1", DisputeID: "d1", Filename: "receipt.pdf"}}, nil).Once()

		got, err := f.svc.Get(context.Background(), "d1")

		require.NoError(t, err)
		assert.Equal(t, "d1", got.ID)
		require.Len(t, got.Evidence, 1)
		assert.Equal(t, "receipt.pdf", got.Evidence[0].Filename)
	})

	t.Run("not found", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound).Once()

		_, err := f.svc.Get(context.Background(), "missing")

		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("empty id", func(t *testing.T) {
		f := newDisputeFixture()
		_, err := f.svc.Get(context.Background(), "")
		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestDisputeService_UploadEvidence(t *testing.T) {
	putResult := func(_ context.Context, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
		return storage.ObjectInfo{Key: key, Size: opt.Size, ContentType: opt.ContentType}
	}

	t.Run("success", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeFormalized), nil).Once()

		var key string
		f.store.On("Put", mock.Anything, mock.MatchedBy(func(k string) bool {
			key = k
			return strings.HasPrefix(k, "disputes/d1/") && strings.HasSuffix(k, ".pdf")
		}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
			return opt.Size == 7 && opt.ContentType == "application/pdf" &&
				opt.Metadata["original-filename"] == "Receipt.PDF" && opt.Metadata["dispute-id"] == "d1"
		})).Return(putResult, nil).Once()
		f.evidence.On("Create", mock.Anything, mock.MatchedBy(func(e *model.Evidence) bool {
			return e.DisputeID == "d1" && e.Filename == "Receipt.PDF" && e.StoragePath == key &&
				e.Size == 7 && e.CreatedAt.Equal(testNow)
		})).Return(&model.Evidence{ID: "e1", DisputeID: "d1", Filename: "Receipt.PDF", Size: 7}, nil).Once()

		got, err := f.svc.UploadEvidence(context.Background(), "d1", strings.NewReader("content"), "Receipt.PDF", "application/pdf", 7)

		require.NoError(t, err)
		assert.Equal(t, "e1", got.ID)
		f.store.AssertExpectations(t)
		f.evidence.AssertExpectations(t)
		f.store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("nil reader", func(t *testing.T) {
		f := newDisputeFixture()
		_, err := f.svc.UploadEvidence(context.Background(), "d1", nil, "a.pdf", "application/pdf", 1)
		assert.ErrorIs(t, err, ErrReaderNil)
	})

	t.Run("closed dispute", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeWon), nil).Once()

		_, err := f.svc.UploadEvidence(context.Background(), "d1", strings.NewReader("x"), "a.pdf", "application/pdf", 1)

		assert.ErrorIs(t, err, ErrDisputeClosed)
		f.store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("storage failure", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeInitiated), nil).Once()
		f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(storage.ObjectInfo{}, errors.New("bucket gone")).Once()

		_, err := f.svc.UploadEvidence(context.Background(), "d1", strings.NewReader("x"), "a.pdf", "application/pdf", 1)

		assert.ErrorContains(t, err, "upload to storage")
		f.evidence.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("db failure deletes object", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeInitiated), nil).Once()
		f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(putResult, nil).Once()
		f.evidence.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed")).Once()
		f.store.On("Delete", mock.Anything, mock.MatchedBy(func(k string) bool {
			return strings.HasPrefix(k, "disputes/d1/")
		})).Return(nil).Once()

		_, err := f.svc.UploadEvidence(context.Background(), "d1", strings.NewReader("x"), "a.pdf", "application/pdf", 1)

		assert.ErrorContains(t, err, "db save failed")
		f.store.AssertExpectations(t)
	})

	t.Run("db and delete failure", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeInitiated), nil).Once()
		f.store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(putResult, nil).Once()
		f.evidence.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("insert failed")).Once()
		f.store.On("Delete", mock.Anything, mock.Anything).Return(errors.New("delete failed")).Once()

		_, err := f.svc.UploadEvidence(context.Background(), "d1", strings.NewReader("x"), "a.pdf", "application/pdf", 1)

		assert.ErrorContains(t, err, "rollback delete failed")
	})
}

func TestDisputeService_OpenEvidence(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newDisputeFixture()
		f.evidence.On("FindByID", mock.Anything, "e1").
			Return(&model.Evidence{ID: "e1", DisputeID: "d1", StoragePath: "disputes/d1/e1.pdf"}, nil).Once()
		f.store.On("Get", mock.Anything, "disputes/d1/e1.pdf").
			Return(io.NopCloser(strings.NewReader("pdf")), storage.ObjectInfo{Key: "disputes/d1/e1.pdf"}, nil).Once()

		rc, e, err := f.svc.OpenEvidence(context.Background(), "d1", "e1")

		require.NoError(t, err)
		defer rc.Close()
		body, _ := io.ReadAll(rc)
		assert.Equal(t, "pdf", string(body))
		assert.Equal(t, "e1", e.ID)
	})

	t.Run("evidence of another dispute", func(t *testing.T) {
		f := newDisputeFixture()
		f.evidence.On("FindByID", mock.Anything, "e1").
			Return(&model.Evidence{ID: "e1", DisputeID: "other"}, nil).Once()

		_, _, err := f.svc.OpenEvidence(context.Background(), "d1", "e1")

		assert.ErrorIs(t, err, ErrNotFound)
		f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestDisputeService_EvidenceURL(t *testing.T) {
	f := newDisputeFixture()
	f.evidence.On("FindByID", mock.Anything, "e1").
		Return(&model.Evidence{ID: "e1", DisputeID: "d1", StoragePath: "disputes/d1/e1.pdf"}, nil).Once()
	f.store.On("PresignGet", mock.Anything, "disputes/d1/e1.pdf", 5*time.Minute).
		Return("https://minio.local/evidence/disputes/d1/e1.pdf?X-Amz-Signature=abc", nil).Once()

	u, err := f.svc.EvidenceURL(context.Background(), "d1", "e1", 5*time.Minute)

	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Signature")

	_, err = f.svc.EvidenceURL(context.Background(), "d1", "", time.Minute)
	assert.ErrorIs(t, err, ErrIDRequired)
}

func TestDisputeService_Submit(t *testing.T) {
	chargeForDispute := func() *model.Charge {
		c := testCharge()
		c.Purchases[0].ProductName = "Ebook"
		c.Purchases[0].Email = "buyer@example.com"
		c.Purchases[0].HasRefundPolicy = true
		c.Purchases[1].ProductName = "Course"
		c.Purchases[1].Email = "buyer@example.com"
		return c
	}

	t.Run("submits combined charge evidence", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeFormalized), nil).Once()
		f.orders.On("FindChargeByID", mock.Anything, "charge-1").Return(chargeForDispute(), nil).Once()
		f.evidence.On("ListByDispute", mock.Anything, "d1").Return([]model.Evidence{
			{ID: "e1", Filename: "receipt.pdf"},
			{ID: "e2", Filename: "download-log.csv"},
		}, nil).Once()

		ev, err := f.svc.Submit(context.Background(), "d1")

		require.NoError(t, err)
		assert.Equal(t, 1, f.submitter.calls)
		assert.Equal(t, "dp_1", f.submitter.disputeID)
		assert.Equal(t, "buyer@example.com", ev.CustomerEmail)
		assert.Equal(t, "Ebook, Course (30.00 USD)", ev.ProductDescription)
		assert.Equal(t, DefaultRefundPolicy, ev.RefundPolicy)
		assert.Equal(t, "Supporting files: receipt.pdf, download-log.csv", ev.UncategorizedText)
		assert.Equal(t, *ev, f.submitter.evidence)
	})

	t.Run("single purchase with refund policy", func(t *testing.T) {
		f := newDisputeFixture()
		d := storedDispute(model.DisputeInitiated)
		d.ChargeID = ""
		d.PurchaseID = "p1"
		p := chargeForDispute().Purchases[0]
		f.disputes.On("FindByID", mock.Anything, "d1").Return(d, nil).Once()
		f.orders.On("FindPurchaseByID", mock.Anything, "p1").Return(&p, nil).Once()
		f.evidence.On("ListByDispute", mock.Anything, "d1").Return([]model.Evidence{}, nil).Once()

		ev, err := f.svc.Submit(context.Background(), "d1")

		require.NoError(t, err)
		assert.Equal(t, "Ebook (10.00 USD)", ev.ProductDescription)
		assert.Empty(t, ev.RefundPolicy)
		assert.Empty(t, ev.UncategorizedText)
	})

	t.Run("paypal disputes are not submitted", func(t *testing.T) {
		f := newDisputeFixture()
		d := storedDispute(model.DisputeFormalized)
		d.Processor = model.ProcessorPayPal
		f.disputes.On("FindByID", mock.Anything, "d1").Return(d, nil).Once()

		_, err := f.svc.Submit(context.Background(), "d1")

		assert.ErrorIs(t, err, ErrUnsupportedProcessor)
		assert.Zero(t, f.submitter.calls)
	})

	t.Run("closed dispute", func(t *testing.T) {
		f := newDisputeFixture()
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeLost), nil).Once()

		_, err := f.svc.Submit(context.Background(), "d1")

		assert.ErrorIs(t, err, ErrDisputeClosed)
	})

	t.Run("processor error", func(t *testing.T) {
		f := newDisputeFixture()
		f.submitter.err = errors.New("stripe dispute update: boom")
		f.disputes.On("FindByID", mock.Anything, "d1").Return(storedDispute(model.DisputeFormalized), nil).Once()
		f.orders.On("FindChargeByID", mock.Anything, "charge-1").Return(chargeForDispute(), nil).Once()
		f.evidence.On("ListByDispute", mock.Anything, "d1").Return([]model.Evidence{}, nil).Once()

		_, err := f.svc.Submit(context.Background(), "d1")

		assert.ErrorContains(t, err, "boom")
	})
}
