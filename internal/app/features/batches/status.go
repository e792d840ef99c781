// internal/app/features/batches/status.go
package batches

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
)

// ChangeStatus handles POST /batches/{id}/status. Transition rules,
// including the activation gate, live in the batchstatus package and
// are enforced inside the store's commit loop.
func (h *Handler) ChangeStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req statusRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	b, err := h.Batches.ChangeStatus(r.Context(), id, req.Status, actor, req.Reason)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventStatusChanged, id, actor, map[string]string{
		"status": req.Status,
		"reason": req.Reason,
	})
	respond(w, http.StatusOK, b)
}

// StatusHistory handles GET /batches/{id}/history.
func (h *Handler) StatusHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	history, err := h.Batches.History(r.Context(), id)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"history": history})
}
