// internal/domain/models/session.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recorded-lesson sources.
const (
	RecordingSourceManual   = "manual_upload"
	RecordingSourceZoomSync = "zoom_auto_sync"
	RecordingSourceExternal = "external_link"
)

// Session is one scheduled occurrence in a batch's timetable. Sessions
// are embedded in the batch document and addressed by their generated id.
//
// Date is stored at day granularity (UTC midnight); StartMinute/EndMinute
// are minutes-of-day forming the half-open interval [start, end). No two
// sessions in a batch may overlap on the same date.
type Session struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Date        time.Time          `bson:"date" json:"date"`
	StartMinute int                `bson:"start_minute" json:"start_minute"`
	EndMinute   int                `bson:"end_minute" json:"end_minute"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`

	Meeting         MeetingInfo      `bson:"meeting" json:"meeting"`
	RecordedLessons []RecordedLesson `bson:"recorded_lessons" json:"recorded_lessons"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

// MeetingInfo is the external meeting-provider state attached to a
// session. A nil MeetingID means creation failed or was skipped; the
// failure message lives in LastSyncError. Only the meetings manager and
// the recording sync engine mutate this value.
type MeetingInfo struct {
	MeetingID       *int64     `bson:"meeting_id,omitempty" json:"meeting_id,omitempty"`
	JoinURL         string     `bson:"join_url,omitempty" json:"join_url,omitempty"`
	HostURL         string     `bson:"host_url,omitempty" json:"host_url,omitempty"`
	Password        string     `bson:"password,omitempty" json:"-"`
	RecordingSynced bool       `bson:"recording_synced" json:"recording_synced"`
	SyncAttempts    int        `bson:"sync_attempts" json:"sync_attempts"`
	LastSyncError   *string    `bson:"last_sync_error,omitempty" json:"last_sync_error,omitempty"`
	NextRetryAt     *time.Time `bson:"next_retry_at,omitempty" json:"next_retry_at,omitempty"`
}

// RecordedLesson is a stored video artifact associated with a session.
// Entries are appended (or, rarely, removed by an admin), never mutated
// in place. StorageKey and ExternalURL are mutually exclusive; playback
// URLs for storage-backed lessons are signed on the way out and raw
// storage locations never reach a client.
type RecordedLesson struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	StorageKey  string             `bson:"storage_key,omitempty" json:"-"`
	ExternalURL string             `bson:"external_url,omitempty" json:"external_url,omitempty"`
	RecordedAt  time.Time          `bson:"recorded_at" json:"recorded_at"`
	Source      string             `bson:"source" json:"source"`
	CreatedBy   primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
}
