// internal/app/features/batches/recordings.go
package batches

import (
	"fmt"
	"net/http"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dalemusser/learnhub/internal/app/store/audit"
	"github.com/dalemusser/learnhub/internal/app/system/limits"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// sessionSequence is a session's 1-based position in the batch's
// chronological order. Storage keys embed this sequence so recordings
// found in the bucket can be correlated back to sessions.
func sessionSequence(b models.Batch, sessionID primitive.ObjectID) (int, bool) {
	ordered := make([]models.Session, len(b.Sessions))
	copy(ordered, b.Sessions)
	sort.Slice(ordered, func(i, j int) bool {
		if !ordered[i].Date.Equal(ordered[j].Date) {
			return ordered[i].Date.Before(ordered[j].Date)
		}
		return ordered[i].StartMinute < ordered[j].StartMinute
	})
	for i, s := range ordered {
		if s.ID == sessionID {
			return i + 1, true
		}
	}
	return 0, false
}

// recordingKey builds the storage path for a manual upload:
// videos/{batchID}/session-{seq}/{uuid8}-{filename}. The batch id and
// session token are what the correlation resolver parses back out.
func recordingKey(batchID primitive.ObjectID, seq int, filename string) string {
	uniqueName := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(filename))
	return filepath.ToSlash(filepath.Join(
		"videos", batchID.Hex(), fmt.Sprintf("session-%d", seq), uniqueName))
}

// sanitizeFilename replaces characters that could be problematic in
// storage paths and caps the length, preserving the extension.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '.' || c == '-' || c == '_' {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}
	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

// UploadRecording handles POST /batches/{id}/sessions/{sessionID}/recordings
// as a multipart form with a "file" part and an optional "title" field.
func (h *Handler) UploadRecording(w http.ResponseWriter, r *http.Request) {
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
	seq, _ := sessionSequence(b, sessionID)

	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxRecordingUploadSize)
	if err := r.ParseMultipartForm(limits.MaxUploadMemory); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file")
		return
	}
	defer file.Close()

	key := recordingKey(batchID, seq, header.Filename)
	opts := &storage.PutOptions{ContentType: header.Header.Get("Content-Type")}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "recording upload")
	defer cancel()
	if err := h.Storage.Put(ctx, key, file, opts); err != nil {
		respondError(w, http.StatusInternalServerError, "upload failed")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = sess.Title
	}
	if title == "" {
		title = "Session recording"
	}

	lesson := models.RecordedLesson{
		ID:         primitive.NewObjectID(),
		Title:      title,
		StorageKey: key,
		RecordedAt: time.Now().UTC(),
		Source:     models.RecordingSourceManual,
		CreatedBy:  actor,
	}
	if err := h.Batches.AppendRecordedLessons(r.Context(), batchID, sessionID, []models.RecordedLesson{lesson}); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventRecordingAdded, batchID, actor, map[string]string{
		"session_id": sessionID.Hex(),
		"lesson_id":  lesson.ID.Hex(),
		"source":     models.RecordingSourceManual,
	})
	respond(w, http.StatusCreated, lesson)
}

// AddExternalRecording handles POST
// /batches/{id}/sessions/{sessionID}/recordings/link for recordings
// hosted elsewhere (YouTube, Drive).
func (h *Handler) AddExternalRecording(w http.ResponseWriter, r *http.Request) {
	batchID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	sessionID, ok := urlID(w, r, "sessionID")
	if !ok {
		return
	}
	var req externalLinkRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	if !urlutil.IsValidAbsHTTPURL(req.URL) {
		respondError(w, http.StatusBadRequest, "url must be an absolute http(s) URL")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Session recording"
	}

	lesson := models.RecordedLesson{
		ID:          primitive.NewObjectID(),
		Title:       title,
		ExternalURL: req.URL,
		RecordedAt:  time.Now().UTC(),
		Source:      models.RecordingSourceExternal,
		CreatedBy:   actor,
	}
	if err := h.Batches.AppendRecordedLessons(r.Context(), batchID, sessionID, []models.RecordedLesson{lesson}); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventRecordingAdded, batchID, actor, map[string]string{
		"session_id": sessionID.Hex(),
		"lesson_id":  lesson.ID.Hex(),
		"source":     models.RecordingSourceExternal,
	})
	respond(w, http.StatusCreated, lesson)
}

// RemoveRecording handles DELETE
// /batches/{id}/sessions/{sessionID}/recordings/{lessonID}. The storage
// object is left in place; only the database reference goes away.
func (h *Handler) RemoveRecording(w http.ResponseWriter, r *http.Request) {
	batchID, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	sessionID, ok := urlID(w, r, "sessionID")
	if !ok {
		return
	}
	lessonID, ok := urlID(w, r, "lessonID")
	if !ok {
		return
	}
	actor, ok := actorID(w, r)
	if !ok {
		return
	}

	if err := h.Batches.RemoveRecordedLesson(r.Context(), batchID, sessionID, lessonID); err != nil {
		h.respondDomainError(w, err)
		return
	}

	h.Audit.AdminAction(r.Context(), r, audit.EventRecordingRemoved, batchID, actor, map[string]string{
		"session_id": sessionID.Hex(),
		"lesson_id":  lessonID.Hex(),
	})
	w.WriteHeader(http.StatusNoContent)
}
