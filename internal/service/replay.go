package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chargeapi/internal/processor"
)

// TaskError accumulates the errors of a replay batch.
type TaskError struct {
	Errors []error
}

func (e *TaskError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d errors: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap lets errors.Is and errors.As see every collected error.
func (e *TaskError) Unwrap() []error {
	return e.Errors
}

func (e *TaskError) append(err error) {
	if err == nil {
		return
	}
	e.Errors = append(e.Errors, err)
}

func (e *TaskError) asError() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return e
}

// ReplayReport counts the outcomes of a replayed batch.
type ReplayReport struct {
	Total    int             `json:"total"`
	Failed   int             `json:"failed"`
	Outcomes map[Outcome]int `json:"outcomes"`
}

// Replayer re-applies stored processor events through a ReconciliationService
// using a bounded worker pool. Events touching the same charge, dispute or
// refund are applied by one worker in input order.
type Replayer struct {
	svc     ReconciliationService
	workers int
	log     *slog.Logger
}

// NewReplayer creates a Replayer with the provided concurrency.
func NewReplayer(svc ReconciliationService, workers int, log *slog.Logger) *Replayer {
	if workers <= 0 {
		workers = 4
	}
	return &Replayer{svc: svc, workers: workers, log: log.With("component", "replay")}
}

// Replay applies events and returns a report. The error is a *TaskError when
// individual events failed, or the context error when ctx was cancelled.
func (r *Replayer) Replay(ctx context.Context, events []processor.ChargeEvent) (*ReplayReport, error) {
	groups := partition(events)

	var mu sync.Mutex
	report := &ReplayReport{Total: len(events), Outcomes: make(map[Outcome]int)}

	err := r.run(ctx, len(groups), func(idx int) error {
		var taskErr TaskError
		for _, ev := range groups[idx] {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.svc.HandleEvent(ctx, ev)

			mu.Lock()
			if err != nil {
				report.Failed++
			} else {
				report.Outcomes[res.Outcome]++
			}
			mu.Unlock()

			if err != nil {
				r.log.WarnContext(ctx, "replay_event_failed", "event_id", ev.EventID, "error", err)
				taskErr.append(fmt.Errorf("event %s/%s: %w", ev.Processor, ev.EventID, err))
			}
		}
		return taskErr.asError()
	})
	return report, err
}

// partition groups events that touch the same charge, dispute or refund,
// keeping input order inside a group. An event carrying several of those ids
// joins their groups, so a refund seen once with its charge and once without
// still lands in one group.
func partition(events []processor.ChargeEvent) [][]processor.ChargeEvent {
	parent := make(map[string]string)
	var find func(k string) string
	find = func(k string) string {
		p, ok := parent[k]
		if !ok {
			parent[k] = k
			return k
		}
		if p == k {
			return k
		}
		root := find(p)
		parent[k] = root
		return root
	}

	roots := make([]string, len(events))
	for i, ev := range events {
		keys := partitionKeys(ev)
		root := find(keys[0])
		for _, k := range keys[1:] {
			if r := find(k); r != root {
				parent[r] = root
			}
		}
		roots[i] = root
	}

	index := make(map[string]int)
	var groups [][]processor.ChargeEvent
	for i, ev := range events {
		root := find(roots[i])
		g, ok := index[root]
		if !ok {
			g = len(groups)
			index[root] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], ev)
	}
	return groups
}

func partitionKeys(ev processor.ChargeEvent) []string {
	prefix := string(ev.Processor) + "/"
	var keys []string
	if ev.ChargeProcessorTransactionID != "" {
		keys = append(keys, prefix+"charge/"+ev.ChargeProcessorTransactionID)
	}
	if ev.DisputeID != "" {
		keys = append(keys, prefix+"dispute/"+ev.DisputeID)
	}
	if ev.RefundID != "" {
		keys = append(keys, prefix+"refund/"+ev.RefundID)
	}
	if len(keys) == 0 {
		keys = append(keys, prefix+"event/"+ev.EventID)
	}
	return keys
}

func (r *Replayer) run(ctx context.Context, total int, workerFn func(idx int) error) error {
	if total == 0 {
		return nil
	}
	indexCh := make(chan int)
	errCh := make(chan error, total)
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range indexCh {
			if err := workerFn(idx); err != nil {
				errCh <- err
			}
		}
	}

	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go worker()
	}

Loop:
	for i := 0; i < total; i++ {
		select {
		case indexCh <- i:
		case <-ctx.Done():
			break Loop
		}
	}
	close(indexCh)
	wg.Wait()
	close(errCh)

	var taskErr TaskError
	for err := range errCh {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		var te *TaskError
		if errors.As(err, &te) {
			for _, e := range te.Errors {
				taskErr.append(e)
			}
			continue
		}
		taskErr.append(err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return taskErr.asError()
}
