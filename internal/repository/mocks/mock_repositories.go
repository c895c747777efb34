package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"chargeapi/internal/model"
	"chargeapi/internal/repository"
)

// MockTransactor runs fn inline so service tests see every repository call.
type MockTransactor struct {
	mock.Mock
}

func (m *MockTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx)
}

type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindChargeByProcessorTransactionID(ctx context.Context, processor model.Processor, txnID string) (*model.Charge, error) {
	args := m.Called(ctx, processor, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Charge), args.Error(1)
}

func (m *MockOrderRepository) FindPurchaseByProcessorTransactionID(ctx context.Context, processor model.Processor, txnID string) (*model.Purchase, error) {
	args := m.Called(ctx, processor, txnID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockOrderRepository) FindChargeByID(ctx context.Context, id string) (*model.Charge, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Charge), args.Error(1)
}

func (m *MockOrderRepository) FindPurchaseByID(ctx context.Context, id string) (*model.Purchase, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockOrderRepository) UpdatePurchaseChargeback(ctx context.Context, p *model.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdatePurchaseRefund(ctx context.Context, p *model.Purchase) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockOrderRepository) CancelSubscription(ctx context.Context, subscriptionID, reason string, at time.Time) error {
	args := m.Called(ctx, subscriptionID, reason, at)
	return args.Error(0)
}

type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) FindByProcessorDisputeID(ctx context.Context, processor model.Processor, disputeID string) (*model.Dispute, error) {
	args := m.Called(ctx, processor, disputeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) FindByID(ctx context.Context, id string) (*model.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) Create(ctx context.Context, d *model.Dispute) (*model.Dispute, error) {
	args := m.Called(ctx, d)
	if f, ok := args.Get(0).(func(*model.Dispute) *model.Dispute); ok {
		return f(d), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) UpdateState(ctx context.Context, d *model.Dispute) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDisputeRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Dispute], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Dispute]), args.Error(1)
}

type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) FindByProcessorRefundID(ctx context.Context, processor model.Processor, refundID string) (*model.Refund, error) {
	args := m.Called(ctx, processor, refundID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Refund), args.Error(1)
}

func (m *MockRefundRepository) UpdateStatus(ctx context.Context, r *model.Refund) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Insert(ctx context.Context, bt *model.BalanceTransaction) error {
	args := m.Called(ctx, bt)
	return args.Error(0)
}

func (m *MockLedgerRepository) ListByPurchases(ctx context.Context, purchaseIDs []string) ([]model.BalanceTransaction, error) {
	args := m.Called(ctx, purchaseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.BalanceTransaction), args.Error(1)
}

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) MarkProcessed(ctx context.Context, ev *model.ProcessedEvent) (bool, error) {
	args := m.Called(ctx, ev)
	return args.Bool(0), args.Error(1)
}

func (m *MockEventRepository) SetOutcome(ctx context.Context, processor model.Processor, eventID, outcome string) error {
	args := m.Called(ctx, processor, eventID, outcome)
	return args.Error(0)
}

type MockEvidenceRepository struct {
	mock.Mock
}

func (m *MockEvidenceRepository) Create(ctx context.Context, e *model.Evidence) (*model.Evidence, error) {
	args := m.Called(ctx, e)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evidence), args.Error(1)
}

func (m *MockEvidenceRepository) FindByID(ctx context.Context, id string) (*model.Evidence, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Evidence), args.Error(1)
}

func (m *MockEvidenceRepository) ListByDispute(ctx context.Context, disputeID string) ([]model.Evidence, error) {
	args := m.Called(ctx, disputeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Evidence), args.Error(1)
}
