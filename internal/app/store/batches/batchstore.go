// internal/app/store/batches/batchstore.go
package batchstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/learnhub/internal/app/policy/capacitypolicy"
	"github.com/dalemusser/learnhub/internal/app/system/batchstatus"
	"github.com/dalemusser/learnhub/internal/app/system/schedule"
	"github.com/dalemusser/learnhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/sethvargo/go-retry"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrDuplicateBatchName = errors.New("a batch with this name already exists for the course")
	ErrSessionNotFound    = errors.New("session not found in batch")
	ErrBatchNotFound      = errors.New("batch not found")

	// errRevMismatch signals a lost optimistic-concurrency race inside a
	// commit loop; it never escapes the store.
	errRevMismatch = errors.New("schedule revision changed")
)

// Store wraps the batches collection. It also holds the database handle
// because enrollment occupancy (the authoritative counter) lives in a
// sibling collection.
type Store struct {
	c  *mongo.Collection
	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("batches"), db: db}
}

// commitBackoff bounds the retry loops used by schedule and status
// mutations. Contention on a single batch document is rare and short.
func commitBackoff() retry.Backoff {
	return retry.WithMaxRetries(4, retry.NewConstant(15*time.Millisecond))
}

// Create inserts a new batch in the upcoming state with an empty
// schedule. Individual batches are pinned to capacity 1 regardless of
// the requested value.
func (s *Store) Create(ctx context.Context, b models.Batch) (models.Batch, error) {
	if b.BatchType == models.BatchTypeIndividual {
		b.Capacity = 1
	}
	if err := capacitypolicy.ValidateCapacityChange(b.BatchType, b.Capacity, 0); err != nil {
		return models.Batch{}, err
	}

	now := time.Now().UTC()
	b.ID = primitive.NewObjectID()
	b.NameCI = text.Fold(b.Name)
	b.Status = models.BatchUpcoming
	b.EnrolledStudents = 0
	b.ScheduleRev = 0
	b.Sessions = []models.Session{}
	b.StatusHistory = []models.StatusChange{{
		To:        models.BatchUpcoming,
		Reason:    "created",
		ChangedAt: now,
	}}
	b.CreatedAt = now
	b.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, b); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Batch{}, ErrDuplicateBatchName
		}
		return models.Batch{}, err
	}
	return b, nil
}

func (s *Store) getRaw(ctx context.Context, id primitive.ObjectID) (models.Batch, error) {
	var b models.Batch
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Batch{}, ErrBatchNotFound
		}
		return models.Batch{}, err
	}
	return b, nil
}

// GetByID loads a batch and reconciles its cached enrollment counter
// against the enrollments collection. Reconciliation is best effort: a
// failed count never blocks the read.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Batch, error) {
	b, err := s.getRaw(ctx, id)
	if err != nil {
		return models.Batch{}, err
	}
	if active, err := capacitypolicy.ActiveCount(ctx, s.db, id); err == nil && active != b.EnrolledStudents {
		b.EnrolledStudents = active
		_, _ = s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{"enrolled_students": active}})
	}
	return b, nil
}

// ListFilter narrows List. Zero values mean "any".
type ListFilter struct {
	CourseID     *primitive.ObjectID
	InstructorID *primitive.ObjectID
	Status       string
	Page         int
	PageSize     int
}

// List returns a page of batches, newest first, with the total count
// for the filter.
func (s *Store) List(ctx context.Context, f ListFilter) ([]models.Batch, int64, error) {
	filter := bson.M{}
	if f.CourseID != nil {
		filter["course_id"] = *f.CourseID
	}
	if f.InstructorID != nil {
		filter["instructor_id"] = *f.InstructorID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := s.c.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		opts.SetSkip(int64((page - 1) * f.PageSize)).SetLimit(int64(f.PageSize))
	}

	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	var out []models.Batch
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// AddSession validates the candidate against the batch's date range and
// existing sessions, then commits it with a schedule_rev guard so two
// concurrent adds cannot both validate against the same snapshot. A
// lost race reloads and re-validates; invariant violations surface as
// schedule.Err* values.
func (s *Store) AddSession(ctx context.Context, batchID primitive.ObjectID, sess models.Session) (models.Session, error) {
	sess.ID = primitive.NewObjectID()
	sess.Date = schedule.Day(sess.Date)
	sess.CreatedAt = time.Now().UTC()
	if sess.RecordedLessons == nil {
		sess.RecordedLessons = []models.RecordedLesson{}
	}

	err := retry.Do(ctx, commitBackoff(), func(ctx context.Context) error {
		b, err := s.getRaw(ctx, batchID)
		if err != nil {
			return err
		}
		if err := schedule.Validate(b, sess.Date, sess.StartMinute, sess.EndMinute); err != nil {
			return err
		}
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": batchID, "schedule_rev": b.ScheduleRev},
			bson.M{
				"$push": bson.M{"sessions": sess},
				"$inc":  bson.M{"schedule_rev": 1},
				"$set":  bson.M{"updated_at": time.Now().UTC()},
			})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return retry.RetryableError(errRevMismatch)
		}
		return nil
	})
	if err != nil {
		return models.Session{}, err
	}
	return sess, nil
}

// RemoveSession deletes an embedded session from the schedule.
func (s *Store) RemoveSession(ctx context.Context, batchID, sessionID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, batchID, bson.M{
		"$pull": bson.M{"sessions": bson.M{"_id": sessionID}},
		"$inc":  bson.M{"schedule_rev": 1},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBatchNotFound
	}
	if res.ModifiedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// UpdateSessionMeeting replaces a session's meeting state.
func (s *Store) UpdateSessionMeeting(ctx context.Context, batchID, sessionID primitive.ObjectID, m models.MeetingInfo) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": batchID, "sessions._id": sessionID},
		bson.M{"$set": bson.M{
			"sessions.$.meeting": m,
			"updated_at":         time.Now().UTC(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// AppendRecordedLessons appends lessons to a session. Used for manual
// uploads and external links; the sync engine goes through
// MarkRecordingSynced instead so its dedup guard applies.
func (s *Store) AppendRecordedLessons(ctx context.Context, batchID, sessionID primitive.ObjectID, lessons []models.RecordedLesson) error {
	if len(lessons) == 0 {
		return nil
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": batchID, "sessions._id": sessionID},
		bson.M{
			"$push": bson.M{"sessions.$.recorded_lessons": bson.M{"$each": lessons}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// RemoveRecordedLesson deletes one recorded lesson from a session.
func (s *Store) RemoveRecordedLesson(ctx context.Context, batchID, sessionID, lessonID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": batchID, "sessions._id": sessionID},
		bson.M{
			"$pull": bson.M{"sessions.$.recorded_lessons": bson.M{"_id": lessonID}},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// MarkRecordingSynced appends provider recordings and flips the
// session's synced flag in one update. The filter requires the flag to
// still be false, so a session that synced while this worker was
// fetching commits nothing; the false return tells the caller the work
// was already done.
func (s *Store) MarkRecordingSynced(ctx context.Context, batchID, sessionID primitive.ObjectID, lessons []models.RecordedLesson) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id": batchID,
			"sessions": bson.M{"$elemMatch": bson.M{
				"_id":                      sessionID,
				"meeting.recording_synced": false,
			}},
		},
		bson.M{
			"$push": bson.M{"sessions.$.recorded_lessons": bson.M{"$each": lessons}},
			"$set": bson.M{
				"sessions.$.meeting.recording_synced": true,
				"sessions.$.meeting.sync_attempts":    0,
				"updated_at":                          time.Now().UTC(),
			},
			"$unset": bson.M{
				"sessions.$.meeting.last_sync_error": "",
				"sessions.$.meeting.next_retry_at":   "",
			},
		})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// RecordSyncFailure bumps the attempt counter and stores the failure
// message and the backoff deadline computed by the sync engine.
func (s *Store) RecordSyncFailure(ctx context.Context, batchID, sessionID primitive.ObjectID, msg string, nextRetry time.Time) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": batchID, "sessions._id": sessionID},
		bson.M{
			"$inc": bson.M{"sessions.$.meeting.sync_attempts": 1},
			"$set": bson.M{
				"sessions.$.meeting.last_sync_error": msg,
				"sessions.$.meeting.next_retry_at":   nextRetry.UTC(),
				"updated_at":                         time.Now().UTC(),
			},
		})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// ChangeStatus validates the transition (including the activation gate)
// against the latest document and commits the status together with its
// history entry. The filter pins the previous status so a concurrent
// transition cannot be overwritten; a lost race re-validates from the
// new state and typically surfaces batchstatus.ErrInvalidTransition.
func (s *Store) ChangeStatus(ctx context.Context, batchID primitive.ObjectID, to string, actor primitive.ObjectID, reason string) (models.Batch, error) {
	var out models.Batch
	err := retry.Do(ctx, commitBackoff(), func(ctx context.Context) error {
		b, err := s.getRaw(ctx, batchID)
		if err != nil {
			return err
		}
		if err := batchstatus.Check(b, to); err != nil {
			return err
		}
		change := models.StatusChange{
			From:      b.Status,
			To:        to,
			ActorID:   actor,
			Reason:    reason,
			ChangedAt: time.Now().UTC(),
		}
		res, err := s.c.UpdateOne(ctx,
			bson.M{"_id": batchID, "status": b.Status},
			bson.M{
				"$set":  bson.M{"status": to, "updated_at": change.ChangedAt},
				"$push": bson.M{"status_history": change},
			})
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return retry.RetryableError(errRevMismatch)
		}
		b.Status = to
		b.StatusHistory = append(b.StatusHistory, change)
		out = b
		return nil
	})
	if err != nil {
		return models.Batch{}, err
	}
	return out, nil
}

// History returns a batch's status history without loading the sessions.
func (s *Store) History(ctx context.Context, batchID primitive.ObjectID) ([]models.StatusChange, error) {
	var doc struct {
		StatusHistory []models.StatusChange `bson:"status_history"`
	}
	opts := options.FindOne().SetProjection(bson.M{"status_history": 1})
	if err := s.c.FindOne(ctx, bson.M{"_id": batchID}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrBatchNotFound
		}
		return nil, err
	}
	return doc.StatusHistory, nil
}

// UpdateCapacity applies an administrative capacity change after
// checking it against the batch type and current occupancy.
func (s *Store) UpdateCapacity(ctx context.Context, batchID primitive.ObjectID, capacity int) error {
	b, err := s.getRaw(ctx, batchID)
	if err != nil {
		return err
	}
	active, err := capacitypolicy.ActiveCount(ctx, s.db, batchID)
	if err != nil {
		return err
	}
	if err := capacitypolicy.ValidateCapacityChange(b.BatchType, capacity, active); err != nil {
		return err
	}
	_, err = s.c.UpdateByID(ctx, batchID, bson.M{"$set": bson.M{
		"capacity":   capacity,
		"updated_at": time.Now().UTC(),
	}})
	return err
}

// AssignInstructor sets the batch's instructor.
func (s *Store) AssignInstructor(ctx context.Context, batchID, instructorID primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, batchID, bson.M{"$set": bson.M{
		"instructor_id": instructorID,
		"updated_at":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrBatchNotFound
	}
	return nil
}

// IncEnrolled bumps the cached counter, guarded so it never exceeds
// capacity even if two enrollments race past the policy check.
func (s *Store) IncEnrolled(ctx context.Context, batchID primitive.ObjectID) (bool, error) {
	res, err := s.c.UpdateOne(ctx,
		bson.M{
			"_id":   batchID,
			"$expr": bson.M{"$lt": bson.A{"$enrolled_students", "$capacity"}},
		},
		bson.M{"$inc": bson.M{"enrolled_students": 1}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// DecEnrolled lowers the cached counter, floored at zero.
func (s *Store) DecEnrolled(ctx context.Context, batchID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": batchID, "enrolled_students": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"enrolled_students": -1}})
	return err
}

// SetEnrolledCount overwrites the cached counter with the authoritative
// value. Used by the reconcile task.
func (s *Store) SetEnrolledCount(ctx context.Context, batchID primitive.ObjectID, n int) error {
	_, err := s.c.UpdateByID(ctx, batchID, bson.M{"$set": bson.M{"enrolled_students": n}})
	return err
}

// WithRecordedLessons returns every batch carrying at least one
// recorded lesson on any session. The scheduled recordings view walks
// this.
func (s *Store) WithRecordedLessons(ctx context.Context) ([]models.Batch, error) {
	cur, err := s.c.Find(ctx, bson.M{"sessions.recorded_lessons.0": bson.M{"$exists": true}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Batch
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AllIDs lists every batch id. The counter-reconcile task walks this.
func (s *Store) AllIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	cur, err := s.c.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(docs))
	for i, d := range docs {
		ids[i] = d.ID
	}
	return ids, nil
}
