// internal/app/features/batches/routes.go
package batches

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the batch administration API. Reads are open to admins
// and instructors; every mutation is admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin, models.RoleInstructor))
		r.Get("/", h.ListBatches)
		r.Get("/{id}", h.GetBatch)
		r.Get("/{id}/history", h.StatusHistory)
		r.Get("/{id}/students", h.ListStudents)
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin))
		r.Post("/", h.CreateBatch)
		r.Post("/{id}/status", h.ChangeStatus)
		r.Patch("/{id}/capacity", h.UpdateCapacity)
		r.Post("/{id}/instructor", h.AssignInstructor)

		r.Post("/{id}/sessions", h.AddSession)
		r.Delete("/{id}/sessions/{sessionID}", h.RemoveSession)
		r.Post("/{id}/sessions/{sessionID}/meeting/retry", h.RetryMeeting)

		r.Post("/{id}/sessions/{sessionID}/recordings", h.UploadRecording)
		r.Post("/{id}/sessions/{sessionID}/recordings/link", h.AddExternalRecording)
		r.Delete("/{id}/sessions/{sessionID}/recordings/{lessonID}", h.RemoveRecording)

		r.Post("/{id}/students", h.EnrollStudent)
		r.Delete("/{id}/students/{studentID}", h.RemoveStudent)
	})

	return r
}
