package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"chargeapi/internal/billing"
	"chargeapi/internal/clock"
	"chargeapi/internal/metrics"
	"chargeapi/internal/model"
	"chargeapi/internal/processor"
	"chargeapi/internal/repository"
)

// Outcome says what handling an event did.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeNoop      Outcome = "noop"
	OutcomeIgnored   Outcome = "ignored"
	OutcomeDuplicate Outcome = "duplicate"
)

const (
	outcomePending         = "pending"
	chargebackCancelReason = "chargeback"
	tracerName             = "chargeapi/service"
)

// EventResult is returned to the webhook caller.
type EventResult struct {
	EventID        string              `json:"event_id"`
	Type           processor.EventType `json:"type"`
	Outcome        Outcome             `json:"outcome"`
	ChargeableKind billing.Kind        `json:"chargeable_kind,omitempty"`
	ChargeableID   string              `json:"chargeable_id,omitempty"`
	DisputeID      string              `json:"dispute_id,omitempty"`
	RefundID       string              `json:"refund_id,omitempty"`

	ledger []*model.BalanceTransaction
}

// ReconciliationService applies normalized processor events to disputes,
// refunds, purchases and the seller ledger.
type ReconciliationService interface {
	// HandleEvent applies ev exactly once. Redelivered events report OutcomeDuplicate.
	HandleEvent(ctx context.Context, ev processor.ChargeEvent) (*EventResult, error)
}

// Repositories groups the stores reconciliation writes to.
type Repositories struct {
	Tx       repository.Transactor
	Orders   repository.OrderRepository
	Disputes repository.DisputeRepository
	Refunds  repository.RefundRepository
	Ledger   repository.LedgerRepository
	Events   repository.EventRepository
}

type reconciliationService struct {
	repos   Repositories
	finder  chargeableFinder
	clock   clock.Clock
	log     *slog.Logger
	metrics *metrics.BillingMetrics
	tracer  trace.Tracer
}

// NewReconciliationService constructs a ReconciliationService. m may be nil.
func NewReconciliationService(repos Repositories, clk clock.Clock, log *slog.Logger, m *metrics.BillingMetrics) ReconciliationService {
	return &reconciliationService{
		repos:   repos,
		finder:  chargeableFinder{orders: repos.Orders},
		clock:   clk,
		log:     log.With("component", "reconciliation"),
		metrics: m,
		tracer:  otel.Tracer(tracerName),
	}
}

func (s *reconciliationService) HandleEvent(ctx context.Context, ev processor.ChargeEvent) (*EventResult, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "reconciliation.HandleEvent", trace.WithAttributes(
		attribute.String("billing.processor", string(ev.Processor)),
		attribute.String("billing.event_id", ev.EventID),
		attribute.String("billing.event_type", string(ev.Type)),
	))
	defer span.End()

	log := s.log.With(
		"processor", ev.Processor,
		"event_id", ev.EventID,
		"event_type", ev.Type,
	)

	res := &EventResult{EventID: ev.EventID, Type: ev.Type}
	err := s.repos.Tx.WithTx(ctx, func(ctx context.Context) error {
		claimed, err := s.repos.Events.MarkProcessed(ctx, &model.ProcessedEvent{
			Processor:   ev.Processor,
			EventID:     ev.EventID,
			Type:        string(ev.Type),
			Outcome:     outcomePending,
			ProcessedAt: s.clock.Now(),
		})
		if err != nil {
			return fmt.Errorf("claim event: %w", err)
		}
		if !claimed {
			res.Outcome = OutcomeDuplicate
			return nil
		}

		outcome, err := s.apply(ctx, log, ev, res)
		if err != nil {
			return err
		}
		res.Outcome = outcome
		if err := s.repos.Events.SetOutcome(ctx, ev.Processor, ev.EventID, string(outcome)); err != nil {
			return fmt.Errorf("record outcome: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "handle event failed")
		s.metrics.ObserveEvent(string(ev.Processor), string(ev.Type), "error")
		log.ErrorContext(ctx, "event_failed", "error", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("billing.outcome", string(res.Outcome)))
	s.metrics.ObserveEvent(string(ev.Processor), string(ev.Type), string(res.Outcome))
	for _, bt := range res.ledger {
		s.metrics.ObserveLedger(string(bt.Kind), bt.Currency, bt.AmountCents)
	}
	log.InfoContext(ctx, "event_handled",
		"outcome", res.Outcome,
		"chargeable_kind", res.ChargeableKind,
		"chargeable_id", res.ChargeableID,
		"dispute_id", res.DisputeID,
		"refund_id", res.RefundID,
	)
	return res, nil
}

func (s *reconciliationService) apply(ctx context.Context, log *slog.Logger, ev processor.ChargeEvent, res *EventResult) (Outcome, error) {
	switch ev.Type {
	case processor.EventInformational:
		return OutcomeIgnored, nil
	case processor.EventRefundUpdated:
		return s.refundUpdated(ctx, log, ev, res)
	}

	ch, err := s.finder.byProcessorTransaction(ctx, ev.Processor, ev.ChargeProcessorTransactionID)
	if errors.Is(err, ErrNotFound) {
		log.WarnContext(ctx, "no chargeable for processor transaction",
			"processor_transaction_id", ev.ChargeProcessorTransactionID,
			"processor_dispute_id", ev.DisputeID,
		)
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}
	res.ChargeableKind = ch.Kind()
	res.ChargeableID = ch.ID()

	d, created, err := s.findOrCreateDispute(ctx, ch, ev)
	if err != nil {
		return "", err
	}
	res.DisputeID = d.ID

	switch ev.Type {
	case processor.EventDisputeCreated:
		if created {
			return OutcomeApplied, nil
		}
		return OutcomeNoop, nil
	case processor.EventDisputeFormalized:
		return s.formalize(ctx, res, ch, d, ev)
	case processor.EventDisputeWon:
		return s.win(ctx, res, ch, d, ev)
	case processor.EventDisputeLost:
		return s.lose(ctx, res, ch, d, ev)
	}
	return "", fmt.Errorf("%w: unhandled type %s", processor.ErrMalformedEvent, ev.Type)
}

// findOrCreateDispute returns the stored dispute, creating it in the initiated state when unseen.
func (s *reconciliationService) findOrCreateDispute(ctx context.Context, ch billing.Chargeable, ev processor.ChargeEvent) (*model.Dispute, bool, error) {
	d, err := s.repos.Disputes.FindByProcessorDisputeID(ctx, ev.Processor, ev.DisputeID)
	if err == nil {
		return d, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, fmt.Errorf("find dispute %s: %w", ev.DisputeID, err)
	}

	now := s.clock.Now()
	initiatedAt := ev.CreatedAt
	if initiatedAt.IsZero() {
		initiatedAt = now
	}
	amount := ev.Amount
	if amount.Cents <= 0 {
		amount = model.Amount{Currency: ch.Currency(), Cents: ch.DisputedAmountCents()}
	}

	nd := &model.Dispute{
		ID:                 uuid.NewString(),
		Processor:          ev.Processor,
		ProcessorDisputeID: ev.DisputeID,
		State:              model.DisputeInitiated,
		Reason:             ev.Reason,
		AmountCents:        amount.Cents,
		Currency:           amount.Currency,
		InitiatedAt:        &initiatedAt,
		EventCreatedAt:     initiatedAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	switch c := ch.(type) {
	case billing.Combined:
		nd.ChargeID = c.Charge().ID
	case billing.Single:
		nd.PurchaseID = c.Purchase().ID
	}

	stored, err := s.repos.Disputes.Create(ctx, nd)
	if err != nil {
		return nil, false, fmt.Errorf("create dispute %s: %w", ev.DisputeID, err)
	}
	return stored, true, nil
}

func (s *reconciliationService) formalize(ctx context.Context, res *EventResult, ch billing.Chargeable, d *model.Dispute, ev processor.ChargeEvent) (Outcome, error) {
	now := s.clock.Now()
	if err := billing.Apply(d, model.DisputeFormalized, now); err != nil {
		if isStaleTransition(err) {
			return OutcomeNoop, nil
		}
		return "", err
	}
	if err := s.chargeback(ctx, res, ch, d, ev, now); err != nil {
		return "", err
	}
	if err := s.repos.Disputes.UpdateState(ctx, d); err != nil {
		return "", fmt.Errorf("update dispute %s: %w", d.ID, err)
	}
	return OutcomeApplied, nil
}

func (s *reconciliationService) win(ctx context.Context, res *EventResult, ch billing.Chargeable, d *model.Dispute, ev processor.ChargeEvent) (Outcome, error) {
	if d.State.Terminal() {
		return OutcomeNoop, nil
	}
	wasFormalized := d.State == model.DisputeFormalized

	now := s.clock.Now()
	if err := billing.Apply(d, model.DisputeWon, now); err != nil {
		if isStaleTransition(err) {
			return OutcomeNoop, nil
		}
		return "", err
	}
	if wasFormalized {
		if err := s.reverseChargeback(ctx, res, ch, d, ev, now); err != nil {
			return "", err
		}
	}
	if err := s.repos.Disputes.UpdateState(ctx, d); err != nil {
		return "", fmt.Errorf("update dispute %s: %w", d.ID, err)
	}
	return OutcomeApplied, nil
}

// lose closes the dispute. A dispute lost without ever being formalized goes
// through formalization first so the seller is still debited.
func (s *reconciliationService) lose(ctx context.Context, res *EventResult, ch billing.Chargeable, d *model.Dispute, ev processor.ChargeEvent) (Outcome, error) {
	if d.State.Terminal() {
		return OutcomeNoop, nil
	}

	now := s.clock.Now()
	if d.State == model.DisputeInitiated {
		if err := billing.Apply(d, model.DisputeFormalized, now); err != nil {
			return "", err
		}
		if err := s.chargeback(ctx, res, ch, d, ev, now); err != nil {
			return "", err
		}
	}
	if err := billing.Apply(d, model.DisputeLost, now); err != nil {
		if isStaleTransition(err) {
			return OutcomeNoop, nil
		}
		return "", err
	}
	if err := s.repos.Disputes.UpdateState(ctx, d); err != nil {
		return "", fmt.Errorf("update dispute %s: %w", d.ID, err)
	}
	return OutcomeApplied, nil
}

// chargeback marks every charged purchase as charged back, cancels its
// subscription and debits the seller's net share.
func (s *reconciliationService) chargeback(ctx context.Context, res *EventResult, ch billing.Chargeable, d *model.Dispute, ev processor.ChargeEvent, now time.Time) error {
	purchases := ch.ChargedPurchases()
	shares := s.flowShares(ch, purchases, ev)

	for i, p := range purchases {
		if p.Chargedback() {
			continue
		}
		at := now
		p.ChargebackDate = &at
		p.ChargebackReversed = false
		if err := s.repos.Orders.UpdatePurchaseChargeback(ctx, p); err != nil {
			return fmt.Errorf("mark purchase %s charged back: %w", p.ID, err)
		}
		if p.SubscriptionID != "" {
			if err := s.repos.Orders.CancelSubscription(ctx, p.SubscriptionID, chargebackCancelReason, now); err != nil {
				return fmt.Errorf("cancel subscription %s: %w", p.SubscriptionID, err)
			}
		}
		if err := s.insertLedger(ctx, res, p, model.BalanceDisputeDebit, -billing.SellerNetCents(p), shares[i], d.ID, "", now); err != nil {
			return err
		}
	}
	return nil
}

// reverseChargeback credits back every purchase still holding the chargeback,
// including purchases refunded while the dispute was open. The credit matches
// what the dispute debited.
func (s *reconciliationService) reverseChargeback(ctx context.Context, res *EventResult, ch billing.Chargeable, d *model.Dispute, ev processor.ChargeEvent, now time.Time) error {
	purchases := ch.ChargedBackPurchases()
	if len(purchases) == 0 {
		return nil
	}
	shares := s.flowShares(ch, purchases, ev)
	debited, err := s.disputeDebits(ctx, d.ID, purchases)
	if err != nil {
		return err
	}

	for i, p := range purchases {
		p.ChargebackReversed = true
		if err := s.repos.Orders.UpdatePurchaseChargeback(ctx, p); err != nil {
			return fmt.Errorf("reverse chargeback on purchase %s: %w", p.ID, err)
		}
		credit, ok := debited[p.ID]
		if !ok {
			credit = billing.SellerNetCents(p)
		}
		if err := s.insertLedger(ctx, res, p, model.BalanceDisputeReversalCredit, credit, shares[i], d.ID, "", now); err != nil {
			return err
		}
	}
	return nil
}

// disputeDebits sums the dispute_debit rows the dispute wrote per purchase, as
// positive cents.
func (s *reconciliationService) disputeDebits(ctx context.Context, disputeID string, purchases []*model.Purchase) (map[string]int64, error) {
	ids := make([]string, len(purchases))
	for i, p := range purchases {
		ids[i] = p.ID
	}
	rows, err := s.repos.Ledger.ListByPurchases(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list ledger for dispute %s: %w", disputeID, err)
	}
	out := make(map[string]int64, len(purchases))
	for _, bt := range rows {
		if bt.Kind == model.BalanceDisputeDebit && bt.DisputeID == disputeID {
			out[bt.PurchaseID] -= bt.AmountCents
		}
	}
	return out, nil
}

// flowShares splits the event's flow of funds across purchases by their totals.
func (s *reconciliationService) flowShares(ch billing.Chargeable, purchases []*model.Purchase, ev processor.ChargeEvent) []model.FlowOfFunds {
	ff := billing.SimpleFlowOfFunds(ch.Currency(), ch.DisputedAmountCents())
	if ev.FlowOfFunds != nil {
		ff = *ev.FlowOfFunds
	}
	weights := make([]int64, len(purchases))
	for i, p := range purchases {
		weights[i] = p.TotalTransactionCents
	}
	return billing.SplitFlowOfFunds(ff, weights)
}

func (s *reconciliationService) refundUpdated(ctx context.Context, log *slog.Logger, ev processor.ChargeEvent, res *EventResult) (Outcome, error) {
	ref, err := s.repos.Refunds.FindByProcessorRefundID(ctx, ev.Processor, ev.RefundID)
	if errors.Is(err, repository.ErrNotFound) {
		log.WarnContext(ctx, "unknown refund", "processor_refund_id", ev.RefundID)
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", fmt.Errorf("find refund %s: %w", ev.RefundID, err)
	}
	res.RefundID = ref.ID

	if ref.Status == ev.RefundStatus {
		return OutcomeNoop, nil
	}

	now := s.clock.Now()
	if ev.RefundStatus.Reverted() && !ref.Status.Reverted() {
		if err := s.restoreRefundedAmount(ctx, res, ref, now); err != nil {
			return "", err
		}
	}

	ref.Status = ev.RefundStatus
	ref.FailureReason = ev.RefundFailureReason
	ref.UpdatedAt = now
	if err := s.repos.Refunds.UpdateStatus(ctx, ref); err != nil {
		return "", fmt.Errorf("update refund %s: %w", ref.ID, err)
	}
	return OutcomeApplied, nil
}

// restoreRefundedAmount undoes a refund that never reached the buyer and
// credits the seller the share that was taken from them.
func (s *reconciliationService) restoreRefundedAmount(ctx context.Context, res *EventResult, ref *model.Refund, now time.Time) error {
	p, err := s.repos.Orders.FindPurchaseByID(ctx, ref.PurchaseID)
	if err != nil {
		return fmt.Errorf("find purchase %s for refund %s: %w", ref.PurchaseID, ref.ID, err)
	}

	credit := billing.SellerShareCents(p, ref.AmountCents)
	p.AmountRefundedCents -= ref.AmountCents
	if p.AmountRefundedCents < 0 {
		p.AmountRefundedCents = 0
	}
	p.State = p.RefundState()
	if err := s.repos.Orders.UpdatePurchaseRefund(ctx, p); err != nil {
		return fmt.Errorf("update purchase %s: %w", p.ID, err)
	}

	ff := billing.SimpleFlowOfFunds(ref.Currency, ref.AmountCents)
	return s.insertLedger(ctx, res, p, model.BalanceRefundFailureCredit, credit, ff, "", ref.ID, now)
}

func (s *reconciliationService) insertLedger(ctx context.Context, res *EventResult, p *model.Purchase, kind model.BalanceTransactionKind, cents int64, ff model.FlowOfFunds, disputeID, refundID string, now time.Time) error {
	bt := &model.BalanceTransaction{
		ID:          uuid.NewString(),
		SellerID:    p.SellerID,
		PurchaseID:  p.ID,
		DisputeID:   disputeID,
		RefundID:    refundID,
		Kind:        kind,
		AmountCents: cents,
		Currency:    p.Currency,
		FlowOfFunds: ff,
		CreatedAt:   now,
	}
	if err := s.repos.Ledger.Insert(ctx, bt); err != nil {
		return fmt.Errorf("insert %s for purchase %s: %w", kind, p.ID, err)
	}
	res.ledger = append(res.ledger, bt)
	return nil
}

func isStaleTransition(err error) bool {
	return errors.Is(err, billing.ErrNoTransition) || errors.Is(err, billing.ErrInvalidTransition)
}
