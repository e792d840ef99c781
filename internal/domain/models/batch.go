// internal/domain/models/batch.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Batch types.
const (
	BatchTypeGroup      = "group"
	BatchTypeIndividual = "individual"
)

// Batch statuses. Transitions between them are governed by the
// batchstatus package; nothing outside batchstore writes the field.
const (
	BatchUpcoming  = "upcoming"
	BatchActive    = "active"
	BatchCompleted = "completed"
	BatchCancelled = "cancelled"
)

// Batch is a scheduled cohort of students following a course on a
// timetable. It is the owning aggregate for its sessions: sessions are
// embedded value-objects and every mutation goes through batchstore
// methods that re-validate scheduling invariants before commit.
//
// NOTE:
//   - EnrolledStudents is a cached count. The authoritative number is
//     count(enrollments where batch_id=B and status=active); reads
//     reconcile on drift and the counter-reconcile task is a backstop.
//   - ScheduleRev is an optimistic-concurrency token bumped by every
//     embedded-schedule mutation. Concurrent session adds on the same
//     batch retry against it instead of silently interleaving.
type Batch struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CourseID primitive.ObjectID `bson:"course_id" json:"course_id"`
	Name     string             `bson:"name" json:"name"`
	NameCI   string             `bson:"name_ci" json:"name_ci"`

	BatchType    string              `bson:"batch_type" json:"batch_type"` // group | individual
	Capacity     int                 `bson:"capacity" json:"capacity"`     // >= 1; forced to 1 for individual
	InstructorID *primitive.ObjectID `bson:"instructor_id,omitempty" json:"instructor_id,omitempty"`

	Status    string     `bson:"status" json:"status"`
	StartDate *time.Time `bson:"start_date,omitempty" json:"start_date,omitempty"`
	EndDate   *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`

	EnrolledStudents int   `bson:"enrolled_students" json:"enrolled_students"`
	ScheduleRev      int64 `bson:"schedule_rev" json:"-"`

	Sessions      []Session      `bson:"sessions" json:"sessions"`
	StatusHistory []StatusChange `bson:"status_history" json:"status_history"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// StatusChange is one entry in a batch's append-only status history.
type StatusChange struct {
	From      string             `bson:"from" json:"from"`
	To        string             `bson:"to" json:"to"`
	ActorID   primitive.ObjectID `bson:"actor_id" json:"actor_id"`
	Reason    string             `bson:"reason" json:"reason"`
	ChangedAt time.Time          `bson:"changed_at" json:"changed_at"`
}

// SessionByID returns the embedded session with the given id.
func (b *Batch) SessionByID(id primitive.ObjectID) (*Session, bool) {
	for i := range b.Sessions {
		if b.Sessions[i].ID == id {
			return &b.Sessions[i], true
		}
	}
	return nil, false
}
