// internal/app/features/batches/meetingretry.go
package batches

import (
	"net/http"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
)

// RetryMeeting handles POST /batches/{id}/sessions/{sessionID}/meeting/retry.
//
// Two cases:
//   - the session has no meeting: creation failed at add time, so try
//     the provider again and surface the error if it still fails;
//   - the session has one: re-apply the unattended companion settings,
//     which some provider accounts drop when no host joins.
//
// Either way the resulting meeting state replaces the session's.
func (h *Handler) RetryMeeting(w http.ResponseWriter, r *http.Request) {
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

	b, err := h.Batches.GetByID(r.Context(), batchID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}
	sess, found := b.SessionByID(sessionID)
	if !found {
		respondError(w, http.StatusNotFound, "session not found in batch")
		return
	}

	if sess.Meeting.MeetingID == nil {
		course, err := h.Courses.GetByID(r.Context(), b.CourseID)
		if err != nil {
			h.respondDomainError(w, err)
			return
		}
		info, err := h.Meetings.RetryCreate(r.Context(), course.Title, *sess)
		if err != nil {
			respondError(w, http.StatusBadGateway, "meeting creation failed: "+err.Error())
			return
		}
		// Recording sync state carries over; a fresh meeting has none.
		info.RecordingSynced = false
		if err := h.Batches.UpdateSessionMeeting(r.Context(), batchID, sessionID, info); err != nil {
			h.respondDomainError(w, err)
			return
		}
		h.Audit.AdminAction(r.Context(), r, audit.EventMeetingRetried, batchID, actor, map[string]string{
			"session_id": sessionID.Hex(),
			"mode":       "create",
		})
		respond(w, http.StatusOK, info)
		return
	}

	info, err := h.Meetings.EnableCompanionWithoutHost(r.Context(), *sess.Meeting.MeetingID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "meeting settings update failed: "+err.Error())
		return
	}
	// Keep the sync bookkeeping the session already accumulated.
	info.RecordingSynced = sess.Meeting.RecordingSynced
	info.SyncAttempts = sess.Meeting.SyncAttempts
	info.LastSyncError = sess.Meeting.LastSyncError
	info.NextRetryAt = sess.Meeting.NextRetryAt
	if err := h.Batches.UpdateSessionMeeting(r.Context(), batchID, sessionID, info); err != nil {
		h.respondDomainError(w, err)
		return
	}
	h.Audit.AdminAction(r.Context(), r, audit.EventMeetingRetried, batchID, actor, map[string]string{
		"session_id": sessionID.Hex(),
		"mode":       "resettings",
	})
	respond(w, http.StatusOK, info)
}
