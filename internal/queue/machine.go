// Package queue defines the processing-queue state machine. The storage
// layer enforces the same transitions with conditional updates; this table
// is the single written-down form of the lifecycle.
package queue

import (
	"fmt"

	"github.com/maelkann/cliograph/internal/core/domain"
	apperrors "github.com/maelkann/cliograph/internal/core/errors"
)

// transitions maps each state to the states it may move to.
var transitions = map[domain.QueueStatus][]domain.QueueStatus{
	domain.QueuePending:    {domain.QueueInProgress},
	domain.QueueInProgress: {domain.QueueCompleted, domain.QueueFailed},
	domain.QueueCompleted:  {},
	domain.QueueFailed:     {domain.QueuePending},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to domain.QueueStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// Transition validates a state change, returning ErrInvalidTransition with
// both states named when the change is illegal.
func Transition(from, to domain.QueueStatus) error {
	if !from.Valid() {
		return apperrors.Validationf("status", "unknown queue status %q", from)
	}

	if !to.Valid() {
		return apperrors.Validationf("status", "unknown queue status %q", to)
	}

	if !CanTransition(from, to) {
		return fmt.Errorf("%s -> %s: %w", from, to, apperrors.ErrInvalidTransition)
	}

	return nil
}

// Terminal reports whether a state has no outgoing transitions.
func Terminal(status domain.QueueStatus) bool {
	return len(transitions[status]) == 0
}
