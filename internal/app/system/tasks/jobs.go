// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"time"

	batchstore "github.com/dalemusser/learnhub/internal/app/store/batches"
	enrollmentstore "github.com/dalemusser/learnhub/internal/app/store/enrollments"
	"go.uber.org/zap"
)

// CounterReconcileJob creates a job that sweeps every batch and rewrites
// its cached enrolled_students counter from the enrollments collection.
// Reads already reconcile on drift; this catches batches nobody reads.
func CounterReconcileJob(batches *batchstore.Store, enrollments *enrollmentstore.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "enrollment-counter-reconcile",
		Interval: 1 * time.Hour,
		Run: func(ctx context.Context) error {
			ids, err := batches.AllIDs(ctx)
			if err != nil {
				return err
			}
			var fixed int
			for _, id := range ids {
				active, err := enrollments.CountActiveByBatch(ctx, id)
				if err != nil {
					return err
				}
				if err := batches.SetEnrolledCount(ctx, id, active); err != nil {
					return err
				}
				fixed++
			}
			if fixed > 0 {
				logger.Debug("reconciled enrollment counters", zap.Int("batches", fixed))
			}
			return nil
		},
	}
}
