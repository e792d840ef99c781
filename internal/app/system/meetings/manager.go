// internal/app/system/meetings/manager.go
package meetings

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.uber.org/zap"
)

// MinDurationMinutes is the floor applied to provider meeting durations;
// very short sessions still book a 30-minute meeting.
const MinDurationMinutes = 30

// Manager owns the lifecycle of provider meetings attached to sessions:
// creation at session-add time, and post-hoc repairs triggered by admins.
type Manager struct {
	provider Provider
	timezone string
	loc      *time.Location
	log      *zap.Logger
}

// NewManager builds a Manager scheduling in the organization's operating
// timezone. An unknown timezone name falls back to UTC and is logged.
func NewManager(provider Provider, timezone string, logger *zap.Logger) *Manager {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		logger.Warn("unknown operating timezone, falling back to UTC",
			zap.String("timezone", timezone), zap.Error(err))
		timezone = "UTC"
		loc = time.UTC
	}
	return &Manager{provider: provider, timezone: timezone, loc: loc, log: logger}
}

// DefaultSettings are requested for every session meeting: early join,
// cloud recording, and the unattended AI companion features.
func DefaultSettings() Settings {
	return Settings{
		JoinBeforeHost:       true,
		AutoRecording:        "cloud",
		AutoStartAICompanion: true,
		AutoStartSummary:     true,
	}
}

// BuildRequest derives the provider payload from course, batch, and
// session data: topic from course + session titles, start from the
// session date and start minute in the operating timezone, duration from
// the interval with the minimum floor applied.
func (m *Manager) BuildRequest(courseTitle string, s models.Session) Request {
	topic := courseTitle
	if s.Title != "" {
		topic = fmt.Sprintf("%s - %s", courseTitle, s.Title)
	}

	y, mo, d := s.Date.UTC().Date()
	start := time.Date(y, mo, d, s.StartMinute/60, s.StartMinute%60, 0, 0, m.loc)

	duration := s.EndMinute - s.StartMinute
	if duration < MinDurationMinutes {
		duration = MinDurationMinutes
	}

	return Request{
		Topic:           topic,
		StartTime:       start,
		DurationMinutes: duration,
		Timezone:        m.timezone,
		Settings:        DefaultSettings(),
	}
}

// CreateForSession creates the provider meeting for a session and
// returns the MeetingInfo to embed. Provider failures are recorded on
// the returned value, never raised: a meeting that could not be created
// must not abort session creation.
func (m *Manager) CreateForSession(ctx context.Context, courseTitle string, s models.Session) models.MeetingInfo {
	req := m.BuildRequest(courseTitle, s)

	meeting, err := m.provider.CreateMeeting(ctx, req)
	if err != nil {
		m.log.Warn("meeting creation failed; session will carry the error",
			zap.String("topic", req.Topic), zap.Error(err))
		msg := err.Error()
		return models.MeetingInfo{LastSyncError: &msg}
	}

	return models.MeetingInfo{
		MeetingID: &meeting.ID,
		JoinURL:   meeting.JoinURL,
		HostURL:   meeting.HostURL,
		Password:  meeting.Password,
	}
}

// RetryCreate creates the provider meeting for a session that has none,
// surfacing provider errors. Unlike CreateForSession this is an explicit
// admin action, so the caller gets to see why it failed.
func (m *Manager) RetryCreate(ctx context.Context, courseTitle string, s models.Session) (models.MeetingInfo, error) {
	meeting, err := m.provider.CreateMeeting(ctx, m.BuildRequest(courseTitle, s))
	if err != nil {
		return models.MeetingInfo{}, err
	}
	return models.MeetingInfo{
		MeetingID: &meeting.ID,
		JoinURL:   meeting.JoinURL,
		HostURL:   meeting.HostURL,
		Password:  meeting.Password,
	}, nil
}

// EnableCompanionWithoutHost re-applies the unattended AI companion
// settings to an existing meeting. Some provider accounts drop the
// companion flags when no host joins; re-patching the same settings is
// the documented workaround and the call is idempotent. Errors surface
// to the caller: this is an explicit admin action.
func (m *Manager) EnableCompanionWithoutHost(ctx context.Context, meetingID int64) (models.MeetingInfo, error) {
	meeting, err := m.provider.UpdateMeetingSettings(ctx, meetingID, DefaultSettings())
	if err != nil {
		return models.MeetingInfo{}, err
	}
	return models.MeetingInfo{
		MeetingID: &meeting.ID,
		JoinURL:   meeting.JoinURL,
		HostURL:   meeting.HostURL,
		Password:  meeting.Password,
	}, nil
}

// Recordings lists the provider recording artifacts for a meeting.
func (m *Manager) Recordings(ctx context.Context, meetingID int64) ([]RecordingFile, error) {
	return m.provider.GetRecordings(ctx, meetingID)
}
