package order

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otori-vision/ovt-trader/internal/market"
)

func TestNewOrder(t *testing.T) {
	o, err := New(market.SideBuy, 500, 70.5)
	require.NoError(t, err)

	_, parseErr := uuid.Parse(o.ID)
	assert.NoError(t, parseErr)
	assert.Equal(t, StatusPending, o.Status)
	assert.False(t, o.Timestamp.IsZero())

	_, err = New(market.Side("hold"), 500, 70)
	assert.Error(t, err)

	_, err = New(market.SideSell, 0, 70)
	assert.Error(t, err)
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusCompleted, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusFailed, StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))

			o := &Order{Status: tt.from}
			err := o.Transition(tt.to)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, tt.to, o.Status)
			} else {
				assert.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, o.Status)
			}
		})
	}
}

func TestTerminalStates(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}
