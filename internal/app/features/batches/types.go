// internal/app/features/batches/types.go
package batches

import (
	"fmt"
	"time"
)

type createBatchRequest struct {
	CourseID     string `json:"course_id"`
	Name         string `json:"name"`
	BatchType    string `json:"batch_type"`
	Capacity     int    `json:"capacity"`
	InstructorID string `json:"instructor_id,omitempty"`
	StartDate    string `json:"start_date,omitempty"` // 2006-01-02
	EndDate      string `json:"end_date,omitempty"`
}

type sessionRequest struct {
	Date        string `json:"date"`       // 2006-01-02
	StartTime   string `json:"start_time"` // HH:MM
	EndTime     string `json:"end_time"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	// CreateMeeting opts out of provider meeting creation when set to
	// false. Omitted means true.
	CreateMeeting *bool `json:"create_meeting,omitempty"`
}

func (r sessionRequest) wantsMeeting() bool {
	return r.CreateMeeting == nil || *r.CreateMeeting
}

type statusRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type capacityRequest struct {
	Capacity int `json:"capacity"`
}

type instructorRequest struct {
	InstructorID string `json:"instructor_id"`
}

type enrollRequest struct {
	StudentID string `json:"student_id"`
}

type externalLinkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// parseDate parses a 2006-01-02 date value.
func parseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return t, nil
}

// parseClock parses an HH:MM wall-clock value into a minute-of-day.
func parseClock(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
