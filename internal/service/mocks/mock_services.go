package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"chargeapi/internal/billing"
	"chargeapi/internal/model"
	"chargeapi/internal/processor"
	"chargeapi/internal/service"
)

type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) HandleEvent(ctx context.Context, ev processor.ChargeEvent) (*service.EventResult, error) {
	args := m.Called(ctx, ev)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EventResult), args.Error(1)
}

type MockDisputeService struct {
	mock.Mock
}

func (m *MockDisputeService) List(ctx context.Context, limit, offset int) (*service.DisputeListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DisputeListResult), args.Error(1)
}

func (m *MockDisputeService) Get(ctx context.Context, id string) (*service.DisputeDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DisputeDetail), args.Error(1)
}

func (m *MockDisputeService) UploadEvidence(ctx context.Context, disputeID string, r io.Reader, filename, contentType string, size int64) (*model.Evidence, error) {
	args := m.Called(ctx, disputeID, r, filename, contentType, size)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evidence), args.Error(1)
}

func (m *MockDisputeService) OpenEvidence(ctx context.Context, disputeID, evidenceID string) (io.ReadCloser, *model.Evidence, error) {
	args := m.Called(ctx, disputeID, evidenceID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(io.ReadCloser), args.Get(1).(*model.Evidence), args.Error(2)
}

func (m *MockDisputeService) EvidenceURL(ctx context.Context, disputeID, evidenceID string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, disputeID, evidenceID, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockDisputeService) Submit(ctx context.Context, disputeID string) (*processor.DisputeEvidence, error) {
	args := m.Called(ctx, disputeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*processor.DisputeEvidence), args.Error(1)
}

type MockChargeService struct {
	mock.Mock
}

func (m *MockChargeService) Summary(ctx context.Context, kind billing.Kind, id string) (*service.ChargeableSummary, error) {
	args := m.Called(ctx, kind, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ChargeableSummary), args.Error(1)
}
