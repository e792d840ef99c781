// Package schedule validates session placement within a batch timetable.
//
// The checks here are pure: they look at a batch's date range and its
// existing sessions, never at the datastore. batchstore.AddSession runs
// them inside its optimistic-concurrency commit loop so the invariants
// are re-validated against the latest document before every attempt.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
)

var (
	// ErrMissingDateRange is returned when a batch has no start or end
	// date; sessions cannot be placed until the range is set.
	ErrMissingDateRange = errors.New("batch has no start/end date set")

	// ErrOutOfRange is returned when a session date falls outside the
	// batch's [start_date, end_date] window.
	ErrOutOfRange = errors.New("session date is outside the batch date range")

	// ErrConflict is returned when a session's time interval overlaps an
	// existing session on the same date. Use errors.Is to detect it; the
	// wrapped message names the conflicting session.
	ErrConflict = errors.New("session overlaps an existing session")

	// ErrInvalidInterval is returned when end is not after start or a
	// minute value is outside the day.
	ErrInvalidInterval = errors.New("session end time must be after start time")
)

// Day truncates t to day granularity in UTC. All session-date
// comparisons happen at this resolution.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ValidateWindow checks that date lies within the batch's date range,
// inclusive at both ends, compared at day granularity.
func ValidateWindow(b models.Batch, date time.Time) error {
	if b.StartDate == nil || b.EndDate == nil {
		return ErrMissingDateRange
	}
	d := Day(date)
	if d.Before(Day(*b.StartDate)) || d.After(Day(*b.EndDate)) {
		return ErrOutOfRange
	}
	return nil
}

// ValidateInterval checks the minute-of-day interval [start, end).
func ValidateInterval(startMinute, endMinute int) error {
	if startMinute < 0 || endMinute > 24*60 || endMinute <= startMinute {
		return ErrInvalidInterval
	}
	return nil
}

// FindConflict returns the first existing session whose half-open
// interval overlaps [startMinute, endMinute) on the same date. Intervals
// that merely touch ([9:00,10:00) next to [10:00,11:00)) do not overlap.
func FindConflict(sessions []models.Session, date time.Time, startMinute, endMinute int) (models.Session, bool) {
	d := Day(date)
	for _, s := range sessions {
		if !Day(s.Date).Equal(d) {
			continue
		}
		if startMinute < s.EndMinute && endMinute > s.StartMinute {
			return s, true
		}
	}
	return models.Session{}, false
}

// Validate runs the full placement check for a candidate session and
// returns a typed error on the first violated invariant.
func Validate(b models.Batch, date time.Time, startMinute, endMinute int) error {
	if err := ValidateInterval(startMinute, endMinute); err != nil {
		return err
	}
	if err := ValidateWindow(b, date); err != nil {
		return err
	}
	if hit, ok := FindConflict(b.Sessions, date, startMinute, endMinute); ok {
		return fmt.Errorf("%w: %q (%s-%s)", ErrConflict, hit.Title,
			MinuteClock(hit.StartMinute), MinuteClock(hit.EndMinute))
	}
	return nil
}

// MinuteClock formats a minute-of-day as HH:MM for error messages and
// meeting topics.
func MinuteClock(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}
