package batchstore_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/policy/capacitypolicy"
	batchstore "github.com/dalemusser/learnhub/internal/app/store/batches"
	"github.com/dalemusser/learnhub/internal/app/system/batchstatus"
	"github.com/dalemusser/learnhub/internal/app/system/schedule"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(offset int) time.Time {
	return schedule.Day(time.Now().UTC().AddDate(0, 0, offset))
}

func newBatch(courseID primitive.ObjectID, name string) models.Batch {
	start := day(0)
	end := day(30)
	return models.Batch{
		CourseID:  courseID,
		Name:      name,
		BatchType: models.BatchTypeGroup,
		Capacity:  20,
		StartDate: &start,
		EndDate:   &end,
	}
}

func TestStore_Create(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")

	created, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Status != models.BatchUpcoming {
		t.Errorf("expected status upcoming, got %q", created.Status)
	}
	if created.NameCI == "" {
		t.Error("expected NameCI to be set")
	}
	if len(created.StatusHistory) != 1 || created.StatusHistory[0].To != models.BatchUpcoming {
		t.Errorf("expected a seeded history entry, got %+v", created.StatusHistory)
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("expected timestamps to be set")
	}
}

func TestStore_Create_IndividualPinnedToOne(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	b := newBatch(course.ID, "One-on-One")
	b.BatchType = models.BatchTypeIndividual
	b.Capacity = 10

	created, err := store.Create(ctx, b)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Capacity != 1 {
		t.Errorf("individual batch capacity: got %d, want 1", created.Capacity)
	}
}

func TestStore_AddSession(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	batch, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	sess, err := store.AddSession(ctx, batch.ID, testutil.Session(day(1), 9*60, 10*60, "Kickoff"))
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}
	if sess.ID == primitive.NilObjectID {
		t.Error("expected session ID to be assigned")
	}

	got, err := store.GetByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if len(got.Sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(got.Sessions))
	}
	if got.ScheduleRev != batch.ScheduleRev+1 {
		t.Errorf("schedule_rev: got %d, want %d", got.ScheduleRev, batch.ScheduleRev+1)
	}
}

func TestStore_AddSession_RejectsOverlap(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	batch, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := store.AddSession(ctx, batch.ID, testutil.Session(day(1), 9*60, 10*60, "Kickoff")); err != nil {
		t.Fatalf("first AddSession failed: %v", err)
	}

	_, err = store.AddSession(ctx, batch.ID, testutil.Session(day(1), 9*60+30, 10*60+30, "Overlap"))
	if !errors.Is(err, schedule.ErrConflict) {
		t.Errorf("expected ErrConflict, got %v", err)
	}

	// Touching intervals do not overlap.
	if _, err := store.AddSession(ctx, batch.ID, testutil.Session(day(1), 10*60, 11*60, "Followup")); err != nil {
		t.Errorf("adjacent session should be accepted: %v", err)
	}

	// Same interval on another date is fine.
	if _, err := store.AddSession(ctx, batch.ID, testutil.Session(day(2), 9*60, 10*60, "Next day")); err != nil {
		t.Errorf("same time on a different date should be accepted: %v", err)
	}
}

func TestStore_AddSession_RejectsOutOfRange(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	batch, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = store.AddSession(ctx, batch.ID, testutil.Session(day(31), 9*60, 10*60, "Too late"))
	if !errors.Is(err, schedule.ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}

func TestStore_ChangeStatus(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	instructor := fixtures.CreateInstructor(ctx, "Jane Smith")
	actor := fixtures.CreateUser(ctx, "Ops Admin", models.RoleAdmin)

	batch, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Activation gate: no instructor, no sessions.
	if _, err := store.ChangeStatus(ctx, batch.ID, models.BatchActive, actor.ID, "go live"); !errors.Is(err, batchstatus.ErrActivationPrecondition) {
		t.Errorf("expected ErrActivationPrecondition, got %v", err)
	}

	if err := store.AssignInstructor(ctx, batch.ID, instructor.ID); err != nil {
		t.Fatalf("AssignInstructor failed: %v", err)
	}
	if _, err := store.AddSession(ctx, batch.ID, testutil.Session(day(1), 9*60, 10*60, "Kickoff")); err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	updated, err := store.ChangeStatus(ctx, batch.ID, models.BatchActive, actor.ID, "go live")
	if err != nil {
		t.Fatalf("ChangeStatus failed: %v", err)
	}
	if updated.Status != models.BatchActive {
		t.Errorf("status: got %q, want active", updated.Status)
	}

	history, err := store.History(ctx, batch.ID)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	last := history[len(history)-1]
	if last.From != models.BatchUpcoming || last.To != models.BatchActive || last.ActorID != actor.ID {
		t.Errorf("history entry: got %+v", last)
	}

	// Completed is terminal.
	if _, err := store.ChangeStatus(ctx, batch.ID, models.BatchCompleted, actor.ID, "done"); err != nil {
		t.Fatalf("ChangeStatus to completed failed: %v", err)
	}
	if _, err := store.ChangeStatus(ctx, batch.ID, models.BatchActive, actor.ID, "undo"); !errors.Is(err, batchstatus.ErrInvalidTransition) {
		t.Errorf("expected ErrInvalidTransition out of completed, got %v", err)
	}
}

func TestStore_GetByID_ReconcilesCounter(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	batch, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Two active enrollments, one cancelled; cached counter still zero.
	s1 := fixtures.CreateStudent(ctx, "Student One")
	s2 := fixtures.CreateStudent(ctx, "Student Two")
	s3 := fixtures.CreateStudent(ctx, "Student Three")
	fixtures.CreateEnrollment(ctx, batch.ID, course.ID, s1.ID, models.EnrollmentActive)
	fixtures.CreateEnrollment(ctx, batch.ID, course.ID, s2.ID, models.EnrollmentActive)
	fixtures.CreateEnrollment(ctx, batch.ID, course.ID, s3.ID, models.EnrollmentCancelled)

	got, err := store.GetByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.EnrolledStudents != 2 {
		t.Errorf("reconciled counter: got %d, want 2", got.EnrolledStudents)
	}
}

func TestStore_IncEnrolled_StopsAtCapacity(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	b := newBatch(course.ID, "Tiny Cohort")
	b.Capacity = 2
	batch, err := store.Create(ctx, b)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for i := 0; i < 2; i++ {
		ok, err := store.IncEnrolled(ctx, batch.ID)
		if err != nil || !ok {
			t.Fatalf("IncEnrolled %d: ok=%v err=%v", i, ok, err)
		}
	}
	ok, err := store.IncEnrolled(ctx, batch.ID)
	if err != nil {
		t.Fatalf("IncEnrolled: %v", err)
	}
	if ok {
		t.Error("IncEnrolled should refuse past capacity")
	}
}

func TestStore_UpdateCapacity_RejectsBelowOccupancy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	batch, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	s1 := fixtures.CreateStudent(ctx, "Student One")
	s2 := fixtures.CreateStudent(ctx, "Student Two")
	fixtures.CreateEnrollment(ctx, batch.ID, course.ID, s1.ID, models.EnrollmentActive)
	fixtures.CreateEnrollment(ctx, batch.ID, course.ID, s2.ID, models.EnrollmentActive)

	if err := store.UpdateCapacity(ctx, batch.ID, 1); !errors.Is(err, capacitypolicy.ErrCapacityBelowOccupancy) {
		t.Errorf("expected ErrCapacityBelowOccupancy, got %v", err)
	}
	if err := store.UpdateCapacity(ctx, batch.ID, 5); err != nil {
		t.Errorf("valid capacity change failed: %v", err)
	}
}

func TestStore_MarkRecordingSynced_Dedupes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	batch, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sess, err := store.AddSession(ctx, batch.ID, testutil.Session(day(1), 9*60, 10*60, "Kickoff"))
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	lessons := []models.RecordedLesson{{
		ID:         primitive.NewObjectID(),
		Title:      "Kickoff",
		StorageKey: "recordings/kickoff.mp4",
		RecordedAt: time.Now().UTC(),
		Source:     models.RecordingSourceZoomSync,
	}}

	applied, err := store.MarkRecordingSynced(ctx, batch.ID, sess.ID, lessons)
	if err != nil || !applied {
		t.Fatalf("first MarkRecordingSynced: applied=%v err=%v", applied, err)
	}
	applied, err = store.MarkRecordingSynced(ctx, batch.ID, sess.ID, lessons)
	if err != nil {
		t.Fatalf("second MarkRecordingSynced: %v", err)
	}
	if applied {
		t.Error("second sync for the same session must be a no-op")
	}

	got, err := store.GetByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	s, ok := got.SessionByID(sess.ID)
	if !ok {
		t.Fatal("session missing after sync")
	}
	if !s.Meeting.RecordingSynced {
		t.Error("expected recording_synced to be set")
	}
	if len(s.RecordedLessons) != 1 {
		t.Errorf("expected exactly one recorded lesson, got %d", len(s.RecordedLessons))
	}
}

func TestStore_RecordSyncFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := batchstore.New(db)
	fixtures := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	course := fixtures.CreateCourse(ctx, "Intro to Go")
	batch, err := store.Create(ctx, newBatch(course.ID, "Morning Cohort"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	sess, err := store.AddSession(ctx, batch.ID, testutil.Session(day(1), 9*60, 10*60, "Kickoff"))
	if err != nil {
		t.Fatalf("AddSession failed: %v", err)
	}

	retryAt := time.Now().UTC().Add(2 * time.Minute)
	if err := store.RecordSyncFailure(ctx, batch.ID, sess.ID, "provider unavailable", retryAt); err != nil {
		t.Fatalf("RecordSyncFailure failed: %v", err)
	}

	got, err := store.GetByID(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	s, _ := got.SessionByID(sess.ID)
	if s.Meeting.SyncAttempts != 1 {
		t.Errorf("sync_attempts: got %d, want 1", s.Meeting.SyncAttempts)
	}
	if s.Meeting.LastSyncError == nil || *s.Meeting.LastSyncError != "provider unavailable" {
		t.Errorf("last_sync_error: got %v", s.Meeting.LastSyncError)
	}
	if s.Meeting.NextRetryAt == nil {
		t.Error("expected next_retry_at to be set")
	}
}
