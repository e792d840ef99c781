// internal/domain/models/enrollment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Enrollment statuses.
const (
	EnrollmentActive      = "active"
	EnrollmentCompleted   = "completed"
	EnrollmentCancelled   = "cancelled"
	EnrollmentTransferred = "transferred"
)

// Enrollment links a student to a batch and course. The enrollments
// collection is the authoritative source for batch occupancy; the
// cached counter on Batch is reconciled against it.
type Enrollment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	BatchID   primitive.ObjectID `bson:"batch_id" json:"batch_id"`
	CourseID  primitive.ObjectID `bson:"course_id" json:"course_id"`
	StudentID primitive.ObjectID `bson:"student_id" json:"student_id"`
	Status    string             `bson:"status" json:"status"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
