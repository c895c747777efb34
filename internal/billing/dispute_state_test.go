package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chargeapi/internal/model"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.DisputeState
		wantErr  error
	}{
		{model.DisputeInitiated, model.DisputeFormalized, nil},
		{model.DisputeInitiated, model.DisputeWon, nil},
		{model.DisputeInitiated, model.DisputeLost, nil},
		{model.DisputeFormalized, model.DisputeWon, nil},
		{model.DisputeFormalized, model.DisputeLost, nil},
		{model.DisputeFormalized, model.DisputeFormalized, ErrNoTransition},
		{model.DisputeWon, model.DisputeWon, ErrNoTransition},
		{model.DisputeFormalized, model.DisputeInitiated, ErrInvalidTransition},
		{model.DisputeWon, model.DisputeLost, ErrInvalidTransition},
		{model.DisputeLost, model.DisputeFormalized, ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			err := CanTransition(tt.from, tt.to)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestApply(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	d := &model.Dispute{State: model.DisputeInitiated}

	require.NoError(t, Apply(d, model.DisputeFormalized, at))
	assert.Equal(t, model.DisputeFormalized, d.State)
	require.NotNil(t, d.FormalizedAt)
	assert.Equal(t, at, *d.FormalizedAt)
	assert.Equal(t, at, d.UpdatedAt)

	later := at.Add(time.Hour)
	require.NoError(t, Apply(d, model.DisputeWon, later))
	assert.Equal(t, later, *d.WonAt)
	assert.Nil(t, d.LostAt)
	assert.True(t, d.State.Terminal())

	err := Apply(d, model.DisputeLost, later)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, model.DisputeWon, d.State)
}
