// internal/app/policy/capacitypolicy/capacitypolicy.go
package capacitypolicy

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrCapacityExceeded is returned when an enrollment would push a
	// batch past its capacity (1 for individual batches).
	ErrCapacityExceeded = errors.New("batch capacity exceeded")

	// ErrCapacityBelowOccupancy is returned when an administrative
	// capacity change would shrink a batch below its current active
	// enrollment count.
	ErrCapacityBelowOccupancy = errors.New("capacity cannot be reduced below current enrollment")

	// ErrInvalidCapacity is returned for capacities below 1, or any
	// value other than 1 on an individual batch.
	ErrInvalidCapacity = errors.New("invalid batch capacity")
)

// EffectiveCapacity returns the ceiling the guard enforces: individual
// batches hold exactly one student regardless of the stored value.
func EffectiveCapacity(batchType string, capacity int) int {
	if batchType == models.BatchTypeIndividual {
		return 1
	}
	return capacity
}

// CanEnroll checks whether one more active enrollment fits the batch.
// active is the authoritative count from the enrollments collection,
// not the cached counter.
func CanEnroll(batchType string, capacity, active int) error {
	limit := EffectiveCapacity(batchType, capacity)
	if active >= limit {
		if batchType == models.BatchTypeIndividual {
			return fmt.Errorf("%w: individual batches hold a single student", ErrCapacityExceeded)
		}
		return fmt.Errorf("%w: %d/%d enrolled", ErrCapacityExceeded, active, limit)
	}
	return nil
}

// ValidateCapacityChange checks an administrative capacity update
// against the batch type and current occupancy.
func ValidateCapacityChange(batchType string, newCapacity, occupancy int) error {
	if newCapacity < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, newCapacity)
	}
	if batchType == models.BatchTypeIndividual && newCapacity != 1 {
		return fmt.Errorf("%w: individual batches are fixed at capacity 1", ErrInvalidCapacity)
	}
	if newCapacity < occupancy {
		return fmt.Errorf("%w: %d active, requested %d", ErrCapacityBelowOccupancy, occupancy, newCapacity)
	}
	return nil
}

// ActiveCount returns the authoritative occupancy for a batch from the
// enrollments collection.
func ActiveCount(ctx context.Context, db *mongo.Database, batchID primitive.ObjectID) (int, error) {
	n, err := db.Collection("enrollments").CountDocuments(ctx, bson.M{
		"batch_id": batchID,
		"status":   models.EnrollmentActive,
	})
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
