// internal/app/system/correlate/correlate.go
package correlate

import (
	"fmt"
	"sort"
	"time"
)

// Object is a storage object discovered under a video prefix.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// SessionRecord is the database-side session metadata used to enrich
// correlated recordings. Records are keyed by SessionKey(batch, seq).
type SessionRecord struct {
	Title           string
	Instructor      string
	DurationMinutes int
	// ProviderSize is the provider-reported artifact size, if known.
	ProviderSize int64
}

// Recording is one correlated recording with its resolved metadata.
// PlaybackURL is filled in by the caller after signing; the resolver
// never sees raw storage URLs leave.
type Recording struct {
	Key             string    `json:"-"`
	Title           string    `json:"title"`
	PlaybackURL     string    `json:"playback_url"`
	DurationMinutes int       `json:"duration_minutes"`
	Instructor      string    `json:"instructor,omitempty"`
	RecordedAt      time.Time `json:"recorded_at"`
	Part            int       `json:"part"`
	Matched         bool      `json:"-"`
}

// SessionGroup collects the recordings resolving to one session key.
type SessionGroup struct {
	SessionKey string      `json:"session_key"`
	Sequence   int         `json:"sequence"`
	Title      string      `json:"title"`
	Recordings []Recording `json:"recordings"`
}

// BatchGroup collects a batch's session groups.
type BatchGroup struct {
	BatchID  string         `json:"batch_id"`
	Sessions []SessionGroup `json:"sessions"`
}

// Result splits correlation output into the batch-organized view and
// the personal leftovers (objects not attributable to any batch).
type Result struct {
	Batches  []BatchGroup
	Personal []Object
}

// Correlate groups storage objects by batch and session key, enriching
// them from records where a match exists. Unmatched recordings are
// still surfaced with a generic label — absence of a record is not an
// error. Duplicate keys are dropped; within a session group recordings
// keep discovery order and entries beyond the first are labeled
// "Part N".
func Correlate(objects []Object, records map[string]SessionRecord) Result {
	type sessionBucket struct {
		ref     KeyRef
		objects []Object
	}

	seen := make(map[string]struct{}, len(objects))
	buckets := make(map[string]*sessionBucket)
	var batchOrder []string
	var personal []Object

	for _, obj := range objects {
		if _, dup := seen[obj.Key]; dup {
			continue
		}
		seen[obj.Key] = struct{}{}

		ref, ok := ParseObjectKey(obj.Key)
		if !ok {
			personal = append(personal, obj)
			continue
		}
		key := SessionKey(ref.BatchID, ref.Sequence)
		b, ok := buckets[key]
		if !ok {
			b = &sessionBucket{ref: ref}
			buckets[key] = b
		}
		b.objects = append(b.objects, obj)
		batchOrder = append(batchOrder, ref.BatchID)
	}

	grouped := make(map[string][]SessionGroup)
	for key, bucket := range buckets {
		rec, matched := records[key]

		title := rec.Title
		if title == "" {
			title = fmt.Sprintf("Session %d", bucket.ref.Sequence)
		}

		sg := SessionGroup{
			SessionKey: key,
			Sequence:   bucket.ref.Sequence,
			Title:      title,
			Recordings: make([]Recording, 0, len(bucket.objects)),
		}
		for i, obj := range bucket.objects {
			r := Recording{
				Key:        obj.Key,
				Title:      title,
				Instructor: rec.Instructor,
				RecordedAt: obj.LastModified,
				Part:       i + 1,
				Matched:    matched,
			}
			if i > 0 {
				r.Title = fmt.Sprintf("%s (Part %d)", title, i+1)
			}
			r.DurationMinutes = EstimateDuration(
				FromRecord(rec.DurationMinutes),
				FromProviderSize(rec.ProviderSize),
				FromObjectSize(obj.Size),
			)
			sg.Recordings = append(sg.Recordings, r)
		}
		grouped[bucket.ref.BatchID] = append(grouped[bucket.ref.BatchID], sg)
	}

	// Batches in first-discovery order, sessions chronological by
	// sequence within each batch.
	var batches []BatchGroup
	added := make(map[string]struct{})
	for _, id := range batchOrder {
		if _, ok := added[id]; ok {
			continue
		}
		added[id] = struct{}{}
		sessions := grouped[id]
		sort.Slice(sessions, func(i, j int) bool {
			return sessions[i].Sequence < sessions[j].Sequence
		})
		batches = append(batches, BatchGroup{BatchID: id, Sessions: sessions})
	}

	return Result{Batches: batches, Personal: personal}
}
