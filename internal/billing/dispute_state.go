package billing

import (
	"errors"
	"fmt"
	"time"

	"chargeapi/internal/model"
)

var (
	ErrNoTransition      = errors.New("dispute already in requested state")
	ErrInvalidTransition = errors.New("invalid dispute transition")
)

var transitions = map[model.DisputeState][]model.DisputeState{
	model.DisputeInitiated:  {model.DisputeFormalized, model.DisputeWon, model.DisputeLost},
	model.DisputeFormalized: {model.DisputeWon, model.DisputeLost},
}

// CanTransition returns nil when d may move from its current state to `to`.
func CanTransition(from, to model.DisputeState) error {
	if from == to {
		return ErrNoTransition
	}
	for _, s := range transitions[from] {
		if s == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}

// Apply moves d to `to` and stamps the matching timestamp with at.
func Apply(d *model.Dispute, to model.DisputeState, at time.Time) error {
	if err := CanTransition(d.State, to); err != nil {
		return err
	}
	t := at
	switch to {
	case model.DisputeFormalized:
		d.FormalizedAt = &t
	case model.DisputeWon:
		d.WonAt = &t
	case model.DisputeLost:
		d.LostAt = &t
	}
	d.State = to
	d.UpdatedAt = at
	return nil
}
