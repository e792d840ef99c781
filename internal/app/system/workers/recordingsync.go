// internal/app/system/workers/recordingsync.go
package workers

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	batchstore "github.com/dalemusser/learnhub/internal/app/store/batches"
	"github.com/dalemusser/learnhub/internal/app/system/meetings"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Backoff schedule for failed recording pulls: 1m, 2m, 4m, ... capped
// at an hour. Sessions whose next_retry_at lies in the future are
// skipped by subsequent sweeps.
const (
	syncBackoffBase = time.Minute
	syncBackoffCap  = time.Hour
)

// Runner decides how a sync sweep executes. GoRunner detaches it;
// SyncRunner runs it inline for tests.
type Runner interface {
	Go(fn func())
}

type GoRunner struct{}

func (GoRunner) Go(fn func()) { go fn() }

type SyncRunner struct{}

func (SyncRunner) Go(fn func()) { fn() }

// Syncer pulls provider recordings for a batch's sessions and attaches
// them as recorded lessons. Sweeps are fire-and-forget: triggering one
// never blocks the caller, and at most one sweep per batch is in
// flight at a time.
type Syncer struct {
	batches *batchstore.Store
	meet    *meetings.Manager
	log     *zap.Logger
	runner  Runner

	mu       sync.Mutex
	inflight map[primitive.ObjectID]struct{}
}

// NewSyncer builds a Syncer. A nil runner means detached goroutines.
func NewSyncer(batches *batchstore.Store, meet *meetings.Manager, logger *zap.Logger, runner Runner) *Syncer {
	if runner == nil {
		runner = GoRunner{}
	}
	return &Syncer{
		batches:  batches,
		meet:     meet,
		log:      logger,
		runner:   runner,
		inflight: make(map[primitive.ObjectID]struct{}),
	}
}

// NextRetryDelay returns the backoff before retry number attempts+1.
func NextRetryDelay(attempts int) time.Duration {
	if attempts < 0 {
		attempts = 0
	}
	d := syncBackoffBase
	for i := 0; i < attempts; i++ {
		d *= 2
		if d >= syncBackoffCap {
			return syncBackoffCap
		}
	}
	return d
}

// Enqueue starts a sweep for the batch and returns immediately. The
// false return means a sweep for this batch is already running and no
// new one was started.
func (s *Syncer) Enqueue(batchID primitive.ObjectID) bool {
	s.mu.Lock()
	if _, running := s.inflight[batchID]; running {
		s.mu.Unlock()
		return false
	}
	s.inflight[batchID] = struct{}{}
	s.mu.Unlock()

	s.runner.Go(func() {
		defer func() {
			s.mu.Lock()
			delete(s.inflight, batchID)
			s.mu.Unlock()
		}()
		s.sweep(batchID)
	})
	return true
}

func (s *Syncer) sweep(batchID primitive.ObjectID) {
	// One sweep covers every pending session in the batch, provider
	// calls included.
	ctx, cancel := timeouts.WithTimeout(context.Background(), timeouts.Sweep(), s.log, "recording sync sweep")
	defer cancel()

	b, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		s.log.Error("recording sync: load batch failed",
			zap.String("batch_id", batchID.Hex()), zap.Error(err))
		return
	}

	now := time.Now().UTC()
	var synced, failed, skipped int
	for _, sess := range b.Sessions {
		switch {
		case sess.Meeting.MeetingID == nil:
			skipped++
		case sess.Meeting.RecordingSynced:
			skipped++
		case sess.Meeting.NextRetryAt != nil && sess.Meeting.NextRetryAt.After(now):
			skipped++
		default:
			if s.syncSession(ctx, b, sess) {
				synced++
			} else {
				failed++
			}
		}
	}

	s.log.Info("recording sync sweep finished",
		zap.String("batch_id", batchID.Hex()),
		zap.Int("synced", synced),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped))
}

// syncSession pulls one session's recordings and commits them. Returns
// true when the session ended up synced (by this sweep or a concurrent
// one).
func (s *Syncer) syncSession(ctx context.Context, b models.Batch, sess models.Session) bool {
	files, err := s.meet.Recordings(ctx, *sess.Meeting.MeetingID)
	if err != nil {
		s.fail(ctx, b.ID, sess, fmt.Sprintf("fetch recordings: %v", err))
		return false
	}
	if len(files) == 0 {
		s.fail(ctx, b.ID, sess, "no recordings available yet")
		return false
	}

	lessons := make([]models.RecordedLesson, 0, len(files))
	for i, f := range files {
		title := sess.Title
		if title == "" {
			title = "Session recording"
		}
		if i > 0 {
			title = fmt.Sprintf("%s (Part %d)", title, i+1)
		}
		lessons = append(lessons, models.RecordedLesson{
			ID:          primitive.NewObjectID(),
			Title:       title,
			ExternalURL: f.PlayURL,
			RecordedAt:  f.RecordedAt,
			Source:      models.RecordingSourceZoomSync,
		})
	}

	applied, err := s.batches.MarkRecordingSynced(ctx, b.ID, sess.ID, lessons)
	if err != nil {
		s.fail(ctx, b.ID, sess, fmt.Sprintf("commit recordings: %v", err))
		return false
	}
	if !applied {
		s.log.Debug("recording sync: session already synced",
			zap.String("session_id", sess.ID.Hex()))
	}
	return true
}

func (s *Syncer) fail(ctx context.Context, batchID primitive.ObjectID, sess models.Session, msg string) {
	retryAt := time.Now().UTC().Add(NextRetryDelay(sess.Meeting.SyncAttempts))
	if err := s.batches.RecordSyncFailure(ctx, batchID, sess.ID, msg, retryAt); err != nil {
		s.log.Error("recording sync: record failure failed",
			zap.String("session_id", sess.ID.Hex()), zap.Error(err))
		return
	}
	s.log.Warn("recording sync: session failed",
		zap.String("session_id", sess.ID.Hex()),
		zap.String("reason", msg),
		zap.Time("next_retry_at", retryAt))
}

// SessionSyncState is one session's entry in a sync report.
type SessionSyncState struct {
	SessionID   primitive.ObjectID `json:"session_id"`
	Title       string             `json:"title"`
	Synced      bool               `json:"synced"`
	Attempts    int                `json:"attempts"`
	LastError   *string            `json:"last_error,omitempty"`
	NextRetryAt *time.Time         `json:"next_retry_at,omitempty"`
}

// Report summarizes a batch's recording-sync progress. Percent counts
// only sessions that have a meeting; a batch with none reports zero.
type Report struct {
	BatchID       primitive.ObjectID `json:"batch_id"`
	TotalSessions int                `json:"total_sessions"`
	WithMeeting   int                `json:"with_meeting"`
	Synced        int                `json:"synced"`
	Percent       int                `json:"percent"`
	InFlight      bool               `json:"in_flight"`
	Sessions      []SessionSyncState `json:"sessions"`
}

// Status reports per-session sync state for a batch.
func (s *Syncer) Status(ctx context.Context, batchID primitive.ObjectID) (Report, error) {
	b, err := s.batches.GetByID(ctx, batchID)
	if err != nil {
		return Report{}, err
	}

	r := Report{
		BatchID:       batchID,
		TotalSessions: len(b.Sessions),
		Sessions:      make([]SessionSyncState, 0, len(b.Sessions)),
	}
	for _, sess := range b.Sessions {
		if sess.Meeting.MeetingID == nil {
			continue
		}
		r.WithMeeting++
		if sess.Meeting.RecordingSynced {
			r.Synced++
		}
		r.Sessions = append(r.Sessions, SessionSyncState{
			SessionID:   sess.ID,
			Title:       sess.Title,
			Synced:      sess.Meeting.RecordingSynced,
			Attempts:    sess.Meeting.SyncAttempts,
			LastError:   sess.Meeting.LastSyncError,
			NextRetryAt: sess.Meeting.NextRetryAt,
		})
	}
	if r.WithMeeting > 0 {
		r.Percent = int(math.Round(float64(r.Synced) / float64(r.WithMeeting) * 100))
	}

	s.mu.Lock()
	_, r.InFlight = s.inflight[batchID]
	s.mu.Unlock()

	return r, nil
}
