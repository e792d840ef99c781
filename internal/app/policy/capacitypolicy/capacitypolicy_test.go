package capacitypolicy_test

import (
	"errors"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/policy/capacitypolicy"
	"github.com/dalemusser/learnhub/internal/domain/models"
)

func TestCanEnroll_Group(t *testing.T) {
	if err := capacitypolicy.CanEnroll(models.BatchTypeGroup, 5, 4); err != nil {
		t.Errorf("4/5 enrolled should accept one more, got %v", err)
	}
	if err := capacitypolicy.CanEnroll(models.BatchTypeGroup, 5, 5); !errors.Is(err, capacitypolicy.ErrCapacityExceeded) {
		t.Errorf("5/5 enrolled should fail with ErrCapacityExceeded, got %v", err)
	}
}

func TestCanEnroll_IndividualNeverExceedsOne(t *testing.T) {
	if err := capacitypolicy.CanEnroll(models.BatchTypeIndividual, 1, 0); err != nil {
		t.Errorf("empty individual batch should accept, got %v", err)
	}
	// Even if the stored capacity drifted above 1, the guard pins it.
	if err := capacitypolicy.CanEnroll(models.BatchTypeIndividual, 10, 1); !errors.Is(err, capacitypolicy.ErrCapacityExceeded) {
		t.Errorf("second enrollment on individual batch must fail, got %v", err)
	}
}

func TestEffectiveCapacity(t *testing.T) {
	if got := capacitypolicy.EffectiveCapacity(models.BatchTypeIndividual, 7); got != 1 {
		t.Errorf("individual capacity: got %d, want 1", got)
	}
	if got := capacitypolicy.EffectiveCapacity(models.BatchTypeGroup, 7); got != 7 {
		t.Errorf("group capacity: got %d, want 7", got)
	}
}

func TestValidateCapacityChange(t *testing.T) {
	tests := []struct {
		name      string
		batchType string
		newCap    int
		occupancy int
		wantErr   error
	}{
		{"grow group", models.BatchTypeGroup, 10, 5, nil},
		{"shrink to occupancy", models.BatchTypeGroup, 5, 5, nil},
		{"shrink below occupancy", models.BatchTypeGroup, 4, 5, capacitypolicy.ErrCapacityBelowOccupancy},
		{"zero capacity", models.BatchTypeGroup, 0, 0, capacitypolicy.ErrInvalidCapacity},
		{"individual stays one", models.BatchTypeIndividual, 1, 1, nil},
		{"individual cannot grow", models.BatchTypeIndividual, 2, 1, capacitypolicy.ErrInvalidCapacity},
	}
	for _, tc := range tests {
		err := capacitypolicy.ValidateCapacityChange(tc.batchType, tc.newCap, tc.occupancy)
		if tc.wantErr == nil && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
			t.Errorf("%s: got %v, want %v", tc.name, err, tc.wantErr)
		}
	}
}
