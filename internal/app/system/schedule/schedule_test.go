package schedule_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/schedule"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func batchWithRange(start, end time.Time) models.Batch {
	return models.Batch{StartDate: &start, EndDate: &end}
}

func session(d time.Time, start, end int, title string) models.Session {
	return models.Session{
		ID:          primitive.NewObjectID(),
		Date:        d,
		StartMinute: start,
		EndMinute:   end,
		Title:       title,
	}
}

func TestValidateWindow_MissingRange(t *testing.T) {
	err := schedule.ValidateWindow(models.Batch{}, date(2026, 3, 10))
	if !errors.Is(err, schedule.ErrMissingDateRange) {
		t.Errorf("expected ErrMissingDateRange, got %v", err)
	}
}

func TestValidateWindow_Inclusive(t *testing.T) {
	b := batchWithRange(date(2026, 3, 1), date(2026, 3, 31))

	for _, d := range []time.Time{date(2026, 3, 1), date(2026, 3, 15), date(2026, 3, 31)} {
		if err := schedule.ValidateWindow(b, d); err != nil {
			t.Errorf("date %v should be in range, got %v", d, err)
		}
	}
}

func TestValidateWindow_OutOfRange(t *testing.T) {
	b := batchWithRange(date(2026, 3, 1), date(2026, 3, 31))

	for _, d := range []time.Time{date(2026, 2, 28), date(2026, 4, 1)} {
		if err := schedule.ValidateWindow(b, d); !errors.Is(err, schedule.ErrOutOfRange) {
			t.Errorf("date %v: expected ErrOutOfRange, got %v", d, err)
		}
	}
}

func TestValidateWindow_TimeOfDayIgnored(t *testing.T) {
	// End date at midnight, candidate late in the evening of the same
	// day: day-granularity comparison must accept it.
	b := batchWithRange(date(2026, 3, 1), date(2026, 3, 31))
	candidate := time.Date(2026, 3, 31, 22, 30, 0, 0, time.UTC)

	if err := schedule.ValidateWindow(b, candidate); err != nil {
		t.Errorf("same-day evening should be in range, got %v", err)
	}
}

func TestValidateInterval(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
		wantErr    bool
	}{
		{"normal", 9 * 60, 10 * 60, false},
		{"full day", 0, 24 * 60, false},
		{"zero length", 9 * 60, 9 * 60, true},
		{"inverted", 10 * 60, 9 * 60, true},
		{"negative start", -10, 60, true},
		{"past midnight", 23 * 60, 25 * 60, true},
	}
	for _, tc := range tests {
		err := schedule.ValidateInterval(tc.start, tc.end)
		if (err != nil) != tc.wantErr {
			t.Errorf("%s: ValidateInterval(%d, %d) = %v", tc.name, tc.start, tc.end, err)
		}
	}
}

func TestFindConflict_Overlap(t *testing.T) {
	d := date(2026, 3, 10)
	existing := []models.Session{session(d, 9*60, 10*60, "Morning")}

	// [9:30,10:30) overlaps [9:00,10:00) regardless of insertion order.
	if _, ok := schedule.FindConflict(existing, d, 9*60+30, 10*60+30); !ok {
		t.Error("expected overlap for [9:30,10:30) vs [9:00,10:00)")
	}
	if _, ok := schedule.FindConflict([]models.Session{session(d, 9*60+30, 10*60+30, "Late")}, d, 9*60, 10*60); !ok {
		t.Error("expected overlap for [9:00,10:00) vs [9:30,10:30)")
	}
}

func TestFindConflict_BoundaryTouchIsNotOverlap(t *testing.T) {
	d := date(2026, 3, 10)
	existing := []models.Session{session(d, 9*60, 10*60, "Morning")}

	if _, ok := schedule.FindConflict(existing, d, 10*60, 11*60); ok {
		t.Error("[10:00,11:00) touching [9:00,10:00) must not conflict")
	}
	if _, ok := schedule.FindConflict(existing, d, 8*60, 9*60); ok {
		t.Error("[8:00,9:00) touching [9:00,10:00) must not conflict")
	}
}

func TestFindConflict_DifferentDates(t *testing.T) {
	existing := []models.Session{session(date(2026, 3, 10), 9*60, 10*60, "Morning")}

	if _, ok := schedule.FindConflict(existing, date(2026, 3, 11), 9*60, 10*60); ok {
		t.Error("same interval on a different date must not conflict")
	}
}

func TestFindConflict_Containment(t *testing.T) {
	d := date(2026, 3, 10)
	existing := []models.Session{session(d, 9*60, 12*60, "Long")}

	if _, ok := schedule.FindConflict(existing, d, 10*60, 11*60); !ok {
		t.Error("interval contained in an existing session must conflict")
	}
}

func TestValidate_NamesConflictingSession(t *testing.T) {
	start, end := date(2026, 3, 1), date(2026, 3, 31)
	b := models.Batch{
		StartDate: &start,
		EndDate:   &end,
		Sessions:  []models.Session{session(date(2026, 3, 10), 9*60, 10*60, "Intro to Go")},
	}

	err := schedule.Validate(b, date(2026, 3, 10), 9*60+30, 10*60+30)
	if !errors.Is(err, schedule.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if want := "Intro to Go"; !contains(err.Error(), want) {
		t.Errorf("error %q should name session %q", err.Error(), want)
	}
}

func TestMinuteClock(t *testing.T) {
	if got := schedule.MinuteClock(9*60 + 5); got != "09:05" {
		t.Errorf("MinuteClock: got %q, want %q", got, "09:05")
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
