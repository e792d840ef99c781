package batchstatus_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/dalemusser/learnhub/internal/app/system/batchstatus"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCanTransition_Table(t *testing.T) {
	tests := []struct {
		from, to string
		ok       bool
	}{
		{models.BatchUpcoming, models.BatchActive, true},
		{models.BatchUpcoming, models.BatchCancelled, true},
		{models.BatchUpcoming, models.BatchCompleted, false},
		{models.BatchActive, models.BatchCompleted, true},
		{models.BatchActive, models.BatchCancelled, true},
		{models.BatchActive, models.BatchUpcoming, false},
		{models.BatchCompleted, models.BatchActive, false},
		{models.BatchCompleted, models.BatchCancelled, false},
		{models.BatchCompleted, models.BatchUpcoming, false},
		{models.BatchCancelled, models.BatchUpcoming, true},
		{models.BatchCancelled, models.BatchActive, true},
		{models.BatchCancelled, models.BatchCompleted, false},
	}
	for _, tc := range tests {
		err := batchstatus.CanTransition(tc.from, tc.to)
		if tc.ok && err != nil {
			t.Errorf("%s → %s should be allowed, got %v", tc.from, tc.to, err)
		}
		if !tc.ok && !errors.Is(err, batchstatus.ErrInvalidTransition) {
			t.Errorf("%s → %s should fail with ErrInvalidTransition, got %v", tc.from, tc.to, err)
		}
	}
}

func TestCanTransition_NamesAllowedSet(t *testing.T) {
	err := batchstatus.CanTransition(models.BatchUpcoming, models.BatchCompleted)
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, models.BatchActive) || !strings.Contains(msg, models.BatchCancelled) {
		t.Errorf("error %q should name the allowed targets", msg)
	}
}

func TestCanTransition_UnknownStatus(t *testing.T) {
	if err := batchstatus.CanTransition("archived", models.BatchActive); !errors.Is(err, batchstatus.ErrUnknownStatus) {
		t.Errorf("expected ErrUnknownStatus, got %v", err)
	}
}

func TestCheck_ActivationRequiresInstructor(t *testing.T) {
	b := models.Batch{
		Status:   models.BatchUpcoming,
		Sessions: []models.Session{{ID: primitive.NewObjectID()}},
	}

	err := batchstatus.Check(b, models.BatchActive)
	if !errors.Is(err, batchstatus.ErrActivationPrecondition) {
		t.Errorf("expected ErrActivationPrecondition without instructor, got %v", err)
	}
}

func TestCheck_ActivationRequiresSchedule(t *testing.T) {
	instructor := primitive.NewObjectID()
	b := models.Batch{
		Status:       models.BatchUpcoming,
		InstructorID: &instructor,
	}

	err := batchstatus.Check(b, models.BatchActive)
	if !errors.Is(err, batchstatus.ErrActivationPrecondition) {
		t.Errorf("expected ErrActivationPrecondition with empty schedule, got %v", err)
	}
}

func TestCheck_ActivationSucceeds(t *testing.T) {
	instructor := primitive.NewObjectID()
	b := models.Batch{
		Status:       models.BatchUpcoming,
		InstructorID: &instructor,
		Sessions:     []models.Session{{ID: primitive.NewObjectID()}},
	}

	if err := batchstatus.Check(b, models.BatchActive); err != nil {
		t.Errorf("activation with instructor and schedule should pass, got %v", err)
	}
}

func TestCheck_GateOnlyAppliesToActive(t *testing.T) {
	// Cancelling needs no instructor or schedule.
	b := models.Batch{Status: models.BatchUpcoming}
	if err := batchstatus.Check(b, models.BatchCancelled); err != nil {
		t.Errorf("cancel should not run the activation gate, got %v", err)
	}
}

func TestAllowedTargets_TerminalCompleted(t *testing.T) {
	if got := batchstatus.AllowedTargets(models.BatchCompleted); len(got) != 0 {
		t.Errorf("completed must be terminal, got targets %v", got)
	}
}
