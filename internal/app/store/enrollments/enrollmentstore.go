// internal/app/store/enrollments/enrollmentstore.go
package enrollmentstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/learnhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrAlreadyEnrolled    = errors.New("student already has an active enrollment in this batch")
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("enrollments")}
}

// Create inserts an active enrollment. The unique partial index on
// (batch_id, student_id, status=active) is the final arbiter against
// double-enrollment; capacity is the caller's concern.
func (s *Store) Create(ctx context.Context, e models.Enrollment) (models.Enrollment, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.Status = models.EnrollmentActive
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Enrollment{}, ErrAlreadyEnrolled
		}
		return models.Enrollment{}, err
	}
	return e, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Enrollment, error) {
	var e models.Enrollment
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Enrollment{}, ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	return e, nil
}

// UpdateStatus moves an enrollment out of (or back into) the active
// set. Counter adjustments on the batch are the caller's job.
func (s *Store) UpdateStatus(ctx context.Context, id primitive.ObjectID, status string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrEnrollmentNotFound
	}
	return nil
}

// ActiveByBatchAndStudent returns the student's active enrollment in
// the batch, if any.
func (s *Store) ActiveByBatchAndStudent(ctx context.Context, batchID, studentID primitive.ObjectID) (models.Enrollment, error) {
	var e models.Enrollment
	err := s.c.FindOne(ctx, bson.M{
		"batch_id":   batchID,
		"student_id": studentID,
		"status":     models.EnrollmentActive,
	}).Decode(&e)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Enrollment{}, ErrEnrollmentNotFound
		}
		return models.Enrollment{}, err
	}
	return e, nil
}

// CountActiveByBatch is the authoritative occupancy for a batch.
func (s *Store) CountActiveByBatch(ctx context.Context, batchID primitive.ObjectID) (int, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"batch_id": batchID,
		"status":   models.EnrollmentActive,
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ListByBatch returns a batch's enrollments, newest first. An empty
// status means all statuses.
func (s *Store) ListByBatch(ctx context.Context, batchID primitive.ObjectID, status string) ([]models.Enrollment, error) {
	filter := bson.M{"batch_id": batchID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Enrollment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListActiveByStudent returns the batches a student is currently in.
func (s *Store) ListActiveByStudent(ctx context.Context, studentID primitive.ObjectID) ([]models.Enrollment, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"student_id": studentID,
		"status":     models.EnrollmentActive,
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Enrollment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
