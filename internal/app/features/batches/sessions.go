// internal/app/features/batches/sessions.go
package batches

import (
	"net/http"
	"strings"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/learnhub/internal/app/system/schedule"
	"github.com/dalemusser/learnhub/internal/domain/models"
)

// AddSession handles POST /batches/{id}/sessions. The schedule is
// validated first, then the provider meeting is created, and session
// and meeting state are committed in a single write. A meeting failure
// never loses the session: the failure message is stored on the session
// for the retry endpoint to act on.
func (h *Handler) AddSession(w http.ResponseWriter, r *http.Request) {
	batchID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	startMinute, err := parseClock(req.StartTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	endMinute, err := parseClock(req.EndTime)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := h.Batches.GetByID(r.Context(), batchID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	course, err := h.Courses.GetByID(r.Context(), b.CourseID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	sess := models.Session{
		Date:        date,
		StartMinute: startMinute,
		EndMinute:   endMinute,
		Title:       strings.TrimSpace(req.Title),
		Description: htmlsanitize.Sanitize(req.Description),
	}

	// Validate up front so a session the store would reject never gets
	// a provider meeting created for it. The store re-validates against
	// the committed schedule; a concurrent add that slips in between
	// surfaces as a conflict, and the meeting it orphans stays unused.
	if err := schedule.Validate(b, sess.Date, sess.StartMinute, sess.EndMinute); err != nil {
		h.respondDomainError(w, err)
		return
	}

	if req.wantsMeeting() {
		sess.Meeting = h.Meetings.CreateForSession(r.Context(), course.Title, sess)
	}

	created, err := h.Batches.AddSession(r.Context(), batchID, sess)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventSessionAdded, batchID, actor, map[string]string{
		"session_id": created.ID.Hex(),
		"date":       req.Date,
		"interval":   schedule.MinuteClock(startMinute) + "-" + schedule.MinuteClock(endMinute),
	})
	respond(w, http.StatusCreated, created)
}

// RemoveSession handles DELETE /batches/{id}/sessions/{sessionID}.
func (h *Handler) RemoveSession(w http.ResponseWriter, r *http.Request) {
	batchID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	sessionID, ok := urlID(w, r, "sessionID")
	if !ok {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.Batches.RemoveSession(r.Context(), batchID, sessionID); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventSessionRemoved, batchID, actor, map[string]string{
		"session_id": sessionID.Hex(),
	})
	w.WriteHeader(http.StatusNoContent)
}
