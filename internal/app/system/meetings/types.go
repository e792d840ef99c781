// internal/app/system/meetings/types.go
package meetings

import (
	"context"
	"errors"
	"time"
)

// ErrProvider wraps any failure reported by the meeting provider. During
// automatic meeting creation it is recorded on MeetingInfo rather than
// returned; explicit admin retries surface it to the caller.
var ErrProvider = errors.New("meeting provider request failed")

// Request is the provider-facing meeting creation payload.
type Request struct {
	Topic           string
	StartTime       time.Time
	DurationMinutes int
	Timezone        string
	Settings        Settings
}

// Settings mirrors the provider meeting settings LearnHub cares about:
// students may join before the host, recordings go to the provider
// cloud, and the AI companion runs unattended so analytics never need a
// live human host.
type Settings struct {
	JoinBeforeHost       bool   `json:"join_before_host"`
	AutoRecording        string `json:"auto_recording"` // "cloud"
	AutoStartAICompanion bool   `json:"auto_start_ai_companion_questions"`
	AutoStartSummary     bool   `json:"auto_start_meeting_summary"`
}

// Meeting is the provider's view of a created or updated meeting.
type Meeting struct {
	ID       int64
	JoinURL  string
	HostURL  string
	Password string
}

// RecordingFile is one recording artifact reported by the provider.
type RecordingFile struct {
	ID         string
	FileType   string // MP4, M4A, TRANSCRIPT, ...
	FileSize   int64
	PlayURL    string
	RecordedAt time.Time
}

// Provider is the meeting-provider capability. The production
// implementation is the Zoom client; tests inject fakes.
type Provider interface {
	CreateMeeting(ctx context.Context, req Request) (Meeting, error)
	UpdateMeetingSettings(ctx context.Context, meetingID int64, settings Settings) (Meeting, error)
	GetRecordings(ctx context.Context, meetingID int64) ([]RecordingFile, error)
}
