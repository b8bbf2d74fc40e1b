package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name string
		from domain.QueueStatus
		to   domain.QueueStatus
		ok   bool
	}{
		{"start", domain.QueuePending, domain.QueueInProgress, true},
		{"complete", domain.QueueInProgress, domain.QueueCompleted, true},
		{"fail", domain.QueueInProgress, domain.QueueFailed, true},
		{"retry", domain.QueueFailed, domain.QueuePending, true},
		{"skip ahead", domain.QueuePending, domain.QueueCompleted, false},
		{"fail from pending", domain.QueuePending, domain.QueueFailed, false},
		{"restart completed", domain.QueueCompleted, domain.QueuePending, false},
		{"retry completed", domain.QueueCompleted, domain.QueueInProgress, false},
		{"fail again", domain.QueueFailed, domain.QueueFailed, false},
		{"self loop", domain.QueueInProgress, domain.QueueInProgress, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, CanTransition(tt.from, tt.to))

			err := Transition(tt.from, tt.to)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
			}
		})
	}
}

func TestTransitionRejectsUnknownStatus(t *testing.T) {
	err := Transition("archived", domain.QueuePending)
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))

	err = Transition(domain.QueuePending, "archived")
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
}

func TestTerminal(t *testing.T) {
	assert.True(t, Terminal(domain.QueueCompleted))
	assert.False(t, Terminal(domain.QueuePending))
	assert.False(t, Terminal(domain.QueueInProgress))
	assert.False(t, Terminal(domain.QueueFailed))
}
