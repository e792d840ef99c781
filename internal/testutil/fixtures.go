package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calls chain: an existing route context is extended, not replaced.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateCourse creates a test course with the given title.
func (f *Fixtures) CreateCourse(ctx context.Context, title string) models.Course {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Course{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Status:    "active",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("courses").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("failed to create test course: %v", err)
	}
	return c
}

// CreateUser creates a test user with the given role.
func (f *Fixtures) CreateUser(ctx context.Context, name, role string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      strings.ReplaceAll(text.Fold(name), " ", ".") + "@example.com",
		Role:       role,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateInstructor creates a test instructor user.
func (f *Fixtures) CreateInstructor(ctx context.Context, name string) models.User {
	return f.CreateUser(ctx, name, models.RoleInstructor)
}

// CreateStudent creates a test student user.
func (f *Fixtures) CreateStudent(ctx context.Context, name string) models.User {
	return f.CreateUser(ctx, name, models.RoleStudent)
}

// CreateBatch inserts a batch directly, bypassing store validation.
// It starts upcoming with an empty schedule; callers adjust fields on
// the returned value before use only if they also persist the change.
func (f *Fixtures) CreateBatch(ctx context.Context, courseID primitive.ObjectID, name, batchType string, capacity int, start, end time.Time) models.Batch {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.Batch{
		ID:            primitive.NewObjectID(),
		CourseID:      courseID,
		Name:          name,
		NameCI:        text.Fold(name),
		BatchType:     batchType,
		Capacity:      capacity,
		Status:        models.BatchUpcoming,
		StartDate:     &start,
		EndDate:       &end,
		Sessions:      []models.Session{},
		StatusHistory: []models.StatusChange{{To: models.BatchUpcoming, Reason: "created", ChangedAt: now}},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("batches").InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test batch: %v", err)
	}
	return b
}

// CreateEnrollment inserts an enrollment with the given status.
func (f *Fixtures) CreateEnrollment(ctx context.Context, batchID, courseID, studentID primitive.ObjectID, status string) models.Enrollment {
	f.t.Helper()

	now := time.Now().UTC()
	e := models.Enrollment{
		ID:        primitive.NewObjectID(),
		BatchID:   batchID,
		CourseID:  courseID,
		StudentID: studentID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("enrollments").InsertOne(ctx, e); err != nil {
		f.t.Fatalf("failed to create test enrollment: %v", err)
	}
	return e
}

// Session builds (but does not persist) an embedded session value for
// the given day and minute interval.
func Session(date time.Time, startMinute, endMinute int, title string) models.Session {
	return models.Session{
		ID:              primitive.NewObjectID(),
		Date:            time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
		StartMinute:     startMinute,
		EndMinute:       endMinute,
		Title:           title,
		RecordedLessons: []models.RecordedLesson{},
		CreatedAt:       time.Now().UTC(),
	}
}
