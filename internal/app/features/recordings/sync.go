// internal/app/features/recordings/sync.go
package recordings

import (
	"net/http"
)

// TriggerSync handles POST /recordings/batch/{id}/sync. The sweep runs
// in the background; the response only says whether it was queued or a
// sweep for this batch is already in flight. Progress is polled via
// SyncStatus.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if _, err := h.Batches.GetByID(r.Context(), id); err != nil {
		respondError(w, http.StatusNotFound, "batch not found")
		return
	}

	queued := h.Syncer.Enqueue(id)
	respond(w, http.StatusAccepted, map[string]bool{"queued": queued})
}

// SyncStatus handles GET /recordings/batch/{id}/sync-status.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	report, err := h.Syncer.Status(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "batch not found")
		return
	}
	respond(w, http.StatusOK, report)
}
