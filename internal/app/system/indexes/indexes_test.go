package indexes_test

import (
	"testing"

	"github.com/dalemusser/learnhub/internal/app/system/indexes"
	"github.com/dalemusser/learnhub/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestEnsureAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// EnsureAll should succeed on a clean database
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// First call
	err := indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}

	// Second call should also succeed (idempotent)
	err = indexes.EnsureAll(ctx, db)
	if err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesBatchIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := db.Collection("batches").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}

	expected := []string{
		"uniq_batches_course_nameci",
		"idx_batches_status_created",
		"idx_batches_instructor_status",
		"idx_batches_session_meeting",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected index %q to exist on batches collection", name)
		}
	}
}

func TestEnsureAll_CreatesEnrollmentIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	cur, err := db.Collection("enrollments").Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}

	expected := []string{
		"uniq_enroll_batch_student_active",
		"idx_enroll_batch_status",
		"idx_enroll_student_status",
	}
	for _, name := range expected {
		if !names[name] {
			t.Errorf("expected index %q to exist on enrollments collection", name)
		}
	}
}

func TestEnsureAll_ActiveEnrollmentUniqueness(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	coll := db.Collection("enrollments")
	if _, err := coll.InsertOne(ctx, bson.M{"batch_id": "b1", "student_id": "s1", "status": "active"}); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	// Second ACTIVE enrollment for the same pair must be rejected.
	if _, err := coll.InsertOne(ctx, bson.M{"batch_id": "b1", "student_id": "s1", "status": "active"}); err == nil {
		t.Error("expected duplicate key error for a second active enrollment")
	}

	// A cancelled record for the same pair is allowed (partial index).
	if _, err := coll.InsertOne(ctx, bson.M{"batch_id": "b1", "student_id": "s1", "status": "cancelled"}); err != nil {
		t.Errorf("cancelled enrollment should not collide: %v", err)
	}
}
