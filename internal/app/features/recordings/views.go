// internal/app/features/recordings/views.go
package recordings

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/correlate"
	"github.com/dalemusser/learnhub/internal/app/system/paging"
	"github.com/dalemusser/learnhub/internal/app/system/timeouts"
	"github.com/dalemusser/learnhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// personalItem is one recording that could not be attributed to a batch.
type personalItem struct {
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	PlaybackURL string `json:"playback_url"`
	RecordedAt  string `json:"recorded_at"`
}

// buildRecords assembles the session metadata map the resolver enriches
// from: for every batch referenced by a storage key, sessions in
// chronological order keyed by their 1-based sequence. Missing batches
// and malformed ids are skipped; correlation degrades to generic labels.
func (h *Handler) buildRecords(ctx context.Context, objects []correlate.Object) map[string]correlate.SessionRecord {
	batchHexes := make(map[string]struct{})
	for _, obj := range objects {
		if ref, ok := correlate.ParseObjectKey(obj.Key); ok {
			batchHexes[ref.BatchID] = struct{}{}
		}
	}

	type loaded struct {
		hex   string
		batch models.Batch
	}
	var batches []loaded
	var instructorIDs []primitive.ObjectID
	for hex := range batchHexes {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			continue
		}
		b, err := h.Batches.GetByID(ctx, id)
		if err != nil {
			h.Log.Debug("batch referenced by storage key not found",
				zap.String("batch_id", hex), zap.Error(err))
			continue
		}
		batches = append(batches, loaded{hex: hex, batch: b})
		if b.InstructorID != nil {
			instructorIDs = append(instructorIDs, *b.InstructorID)
		}
	}

	names, err := h.Users.NamesByIDs(ctx, instructorIDs)
	if err != nil {
		names = map[primitive.ObjectID]string{}
	}

	records := make(map[string]correlate.SessionRecord)
	for _, l := range batches {
		instructor := ""
		if l.batch.InstructorID != nil {
			instructor = names[*l.batch.InstructorID]
		}

		ordered := make([]models.Session, len(l.batch.Sessions))
		copy(ordered, l.batch.Sessions)
		sort.Slice(ordered, func(i, j int) bool {
			if !ordered[i].Date.Equal(ordered[j].Date) {
				return ordered[i].Date.Before(ordered[j].Date)
			}
			return ordered[i].StartMinute < ordered[j].StartMinute
		})
		for i, s := range ordered {
			records[correlate.SessionKey(l.hex, i+1)] = correlate.SessionRecord{
				Title:           s.Title,
				Instructor:      instructor,
				DurationMinutes: s.EndMinute - s.StartMinute,
			}
		}
	}
	return records
}

// resolve lists a prefix and runs the correlation pass over it.
func (h *Handler) resolve(ctx context.Context, prefix string) (correlate.Result, error) {
	objects, err := h.Lister.List(ctx, prefix)
	if err != nil {
		return correlate.Result{}, err
	}
	cObjects := make([]correlate.Object, len(objects))
	for i, o := range objects {
		cObjects[i] = correlate.Object(o)
	}
	return correlate.Correlate(cObjects, h.buildRecords(ctx, cObjects)), nil
}

// signGroups fills in playback URLs for every recording in the groups.
func (h *Handler) signGroups(ctx context.Context, groups []correlate.SessionGroup) {
	for gi := range groups {
		for ri := range groups[gi].Recordings {
			rec := &groups[gi].Recordings[ri]
			rec.PlaybackURL = h.sign(ctx, rec.Key)
		}
	}
}

// ListByBatch handles GET /recordings: every batch with recordings in
// storage, sessions grouped and enriched, paginated over batches.
func (h *Handler) ListByBatch(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "batch recording correlation")
	defer cancel()

	result, err := h.resolve(ctx, videoPrefix)
	if err != nil {
		h.Log.Error("recording listing failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "storage listing failed")
		return
	}

	p := paging.Parse(r)
	page := paging.Slice(result.Batches, p)
	for i := range page {
		h.signGroups(ctx, page[i].Sessions)
	}
	respond(w, http.StatusOK, paging.Wrap(page, int64(len(result.Batches)), p))
}

// ListPersonal handles GET /recordings/personal: objects under the
// video prefix that carry no batch reference.
func (h *Handler) ListPersonal(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "personal recording correlation")
	defer cancel()

	result, err := h.resolve(ctx, videoPrefix)
	if err != nil {
		h.Log.Error("recording listing failed", zap.Error(err))
		respondError(w, http.StatusBadGateway, "storage listing failed")
		return
	}

	p := paging.Parse(r)
	page := paging.Slice(result.Personal, p)
	items := make([]personalItem, 0, len(page))
	for _, obj := range page {
		items = append(items, personalItem{
			Key:         obj.Key,
			Size:        obj.Size,
			PlaybackURL: h.sign(ctx, obj.Key),
			RecordedAt:  obj.LastModified.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}
	respond(w, http.StatusOK, paging.Wrap(items, int64(len(result.Personal)), p))
}

// scheduledItem is one recorded lesson attached to a session document
// whose playback lives outside the video store: provider cloud
// recordings and external links. Storage-backed lessons surface through
// the correlated batch view instead, so the views stay disjoint.
type scheduledItem struct {
	BatchID     string    `json:"batch_id"`
	BatchName   string    `json:"batch_name"`
	SessionID   string    `json:"session_id"`
	Title       string    `json:"title"`
	PlaybackURL string    `json:"playback_url"`
	Source      string    `json:"source"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// ListScheduled handles GET /recordings/scheduled: lessons tracked on
// session documents with external playback, newest first.
func (h *Handler) ListScheduled(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "scheduled recording listing")
	defer cancel()

	batches, err := h.Batches.WithRecordedLessons(ctx)
	if err != nil {
		h.Log.Error("scheduled recording listing failed", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "listing failed")
		return
	}

	var items []scheduledItem
	for _, b := range batches {
		for _, s := range b.Sessions {
			for _, l := range s.RecordedLessons {
				if l.ExternalURL == "" {
					continue
				}
				items = append(items, scheduledItem{
					BatchID:     b.ID.Hex(),
					BatchName:   b.Name,
					SessionID:   s.ID.Hex(),
					Title:       l.Title,
					PlaybackURL: l.ExternalURL,
					Source:      l.Source,
					RecordedAt:  l.RecordedAt,
				})
			}
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].RecordedAt.After(items[j].RecordedAt)
	})

	p := paging.Parse(r)
	page := paging.Slice(items, p)
	respond(w, http.StatusOK, paging.Wrap(page, int64(len(items)), p))
}

// GetBatch handles GET /recordings/batch/{id}: one batch's correlated
// recordings, sessions paginated.
func (h *Handler) GetBatch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "batch recording correlation")
	defer cancel()

	// The view reflects storage; the batch itself must exist.
	if _, err := h.Batches.GetByID(ctx, id); err != nil {
		respondError(w, http.StatusNotFound, "batch not found")
		return
	}

	result, err := h.resolve(ctx, videoPrefix+id.Hex()+"/")
	if err != nil {
		h.Log.Error("recording listing failed",
			zap.String("batch_id", id.Hex()), zap.Error(err))
		respondError(w, http.StatusBadGateway, "storage listing failed")
		return
	}

	var sessions []correlate.SessionGroup
	for _, bg := range result.Batches {
		if bg.BatchID == id.Hex() {
			sessions = bg.Sessions
			break
		}
	}

	p := paging.Parse(r)
	page := paging.Slice(sessions, p)
	h.signGroups(ctx, page)
	respond(w, http.StatusOK, paging.Wrap(page, int64(len(sessions)), p))
}
