// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Admin event types recorded for batch administration.
const (
	EventBatchCreated       = "batch_created"
	EventSessionAdded       = "session_added"
	EventSessionRemoved     = "session_removed"
	EventStatusChanged      = "status_changed"
	EventCapacityChanged    = "capacity_changed"
	EventInstructorAssigned = "instructor_assigned"
	EventStudentEnrolled    = "student_enrolled"
	EventStudentRemoved     = "student_removed"
	EventMeetingRetried     = "meeting_retried"
	EventRecordingAdded     = "recording_added"
	EventRecordingRemoved   = "recording_removed"
)

// Event is one audit record. EntityID is the batch (or other aggregate)
// the action touched.
type Event struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	EventType string              `bson:"event_type"`
	EntityID  *primitive.ObjectID `bson:"entity_id,omitempty"`
	ActorID   *primitive.ObjectID `bson:"actor_id,omitempty"`
	IP        string              `bson:"ip,omitempty"`
	Details   map[string]string   `bson:"details,omitempty"`
	CreatedAt time.Time           `bson:"created_at"`
}

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_log")}
}

// Insert writes one audit event.
func (s *Store) Insert(ctx context.Context, e Event) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// ListByEntity returns the latest events for one entity, newest first.
func (s *Store) ListByEntity(ctx context.Context, entityID primitive.ObjectID, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"entity_id": entityID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
