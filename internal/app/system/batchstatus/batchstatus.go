// Package batchstatus governs batch status transitions.
//
// The transition table is fixed:
//
//	upcoming  → active, cancelled
//	active    → completed, cancelled
//	completed → (terminal)
//	cancelled → upcoming, active   (reactivation permitted)
//
// Entering active additionally requires an assigned instructor and a
// non-empty schedule. The table itself is pure; batchstore.ChangeStatus
// commits the status field and the history entry in one document update.
package batchstatus

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/dalemusser/learnhub/internal/domain/models"
)

var (
	// ErrInvalidTransition is returned for any transition not in the
	// table. The wrapped message names the allowed targets.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrActivationPrecondition is returned when a transition into
	// active is requested without an instructor or with an empty schedule.
	ErrActivationPrecondition = errors.New("batch cannot be activated")

	// ErrUnknownStatus is returned for statuses outside the state set.
	ErrUnknownStatus = errors.New("unknown batch status")
)

var transitions = map[string]map[string]struct{}{
	models.BatchUpcoming:  {models.BatchActive: {}, models.BatchCancelled: {}},
	models.BatchActive:    {models.BatchCompleted: {}, models.BatchCancelled: {}},
	models.BatchCompleted: {},
	models.BatchCancelled: {models.BatchUpcoming: {}, models.BatchActive: {}},
}

// IsValid reports whether s is one of the four batch statuses.
func IsValid(s string) bool {
	_, ok := transitions[s]
	return ok
}

// AllowedTargets returns the sorted set of statuses reachable from
// current, empty for the terminal completed status.
func AllowedTargets(current string) []string {
	targets := make([]string, 0, len(transitions[current]))
	for t := range transitions[current] {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// CanTransition validates a transition against the table only; it does
// not run the activation gate.
func CanTransition(from, to string) error {
	if !IsValid(from) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, from)
	}
	if !IsValid(to) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, to)
	}
	if _, ok := transitions[from][to]; !ok {
		allowed := AllowedTargets(from)
		if len(allowed) == 0 {
			return fmt.Errorf("%w: %s is terminal", ErrInvalidTransition, from)
		}
		return fmt.Errorf("%w: %s → %s (allowed: %s)",
			ErrInvalidTransition, from, to, strings.Join(allowed, ", "))
	}
	return nil
}

// Check validates the full transition for a batch, including the
// activation gate when the target status is active.
func Check(b models.Batch, to string) error {
	if err := CanTransition(b.Status, to); err != nil {
		return err
	}
	if to == models.BatchActive {
		if b.InstructorID == nil {
			return fmt.Errorf("%w: no instructor assigned", ErrActivationPrecondition)
		}
		if len(b.Sessions) == 0 {
			return fmt.Errorf("%w: schedule is empty", ErrActivationPrecondition)
		}
	}
	return nil
}
