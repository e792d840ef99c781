// internal/app/features/recordings/routes.go
package recordings

import (
	"github.com/dalemusser/learnhub/internal/app/system/auth"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the recording views. Any signed-in user can browse the
// correlated views; triggering a provider sync is admin-only.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(auth.RequireSignedIn)

	r.Get("/", h.ListByBatch)
	r.Get("/personal", h.ListPersonal)
	r.Get("/scheduled", h.ListScheduled)
	r.Get("/batch/{id}", h.GetBatch)
	r.Get("/batch/{id}/sync-status", h.SyncStatus)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireRole(models.RoleAdmin))
		r.Post("/batch/{id}/sync", h.TriggerSync)
	})

	return r
}
