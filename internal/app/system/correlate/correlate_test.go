package correlate_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/learnhub/internal/app/system/correlate"
)

func obj(key string, size int64, mod time.Time) correlate.Object {
	return correlate.Object{Key: key, Size: size, LastModified: mod}
}

func TestCorrelate_PartsWithinSameSession(t *testing.T) {
	now := time.Now().UTC()
	objects := []correlate.Object{
		obj("videos/"+batchHex+"/session-2/a.mp4", 50*mb, now),
		obj("videos/"+batchHex+"/session-2/b.mp4", 50*mb, now.Add(time.Minute)),
	}

	res := correlate.Correlate(objects, nil)

	if len(res.Batches) != 1 || len(res.Batches[0].Sessions) != 1 {
		t.Fatalf("expected one batch with one session group, got %+v", res.Batches)
	}
	recs := res.Batches[0].Sessions[0].Recordings
	if len(recs) != 2 {
		t.Fatalf("expected both objects in the session group, got %d", len(recs))
	}
	if recs[0].Part != 1 || recs[1].Part != 2 {
		t.Errorf("parts: got %d,%d, want 1,2", recs[0].Part, recs[1].Part)
	}
	if !strings.Contains(recs[1].Title, "Part 2") {
		t.Errorf("second recording should be labeled Part 2, got %q", recs[1].Title)
	}
	if strings.Contains(recs[0].Title, "Part") {
		t.Errorf("first recording should carry the plain title, got %q", recs[0].Title)
	}
}

func TestCorrelate_EnrichmentFromRecords(t *testing.T) {
	now := time.Now().UTC()
	objects := []correlate.Object{
		obj("videos/"+batchHex+"/session-3/rec.mp4", 500*mb, now),
	}
	records := map[string]correlate.SessionRecord{
		batchHex + "_3": {Title: "Goroutines Deep Dive", Instructor: "R. Pike", DurationMinutes: 75},
	}

	res := correlate.Correlate(objects, records)

	rec := res.Batches[0].Sessions[0].Recordings[0]
	if rec.Title != "Goroutines Deep Dive" {
		t.Errorf("title: got %q", rec.Title)
	}
	if rec.Instructor != "R. Pike" {
		t.Errorf("instructor: got %q", rec.Instructor)
	}
	if rec.DurationMinutes != 75 {
		t.Errorf("duration should come from the record, got %d", rec.DurationMinutes)
	}
	if !rec.Matched {
		t.Error("recording should be marked matched")
	}
}

func TestCorrelate_UnmatchedIsSurfacedGenerically(t *testing.T) {
	now := time.Now().UTC()
	objects := []correlate.Object{
		obj("videos/"+batchHex+"/session-5/rec.mp4", 50*mb, now),
	}

	res := correlate.Correlate(objects, map[string]correlate.SessionRecord{})

	rec := res.Batches[0].Sessions[0].Recordings[0]
	if rec.Title != "Session 5" {
		t.Errorf("unmatched recording should get a generic label, got %q", rec.Title)
	}
	if rec.Matched {
		t.Error("recording without a record must not be marked matched")
	}
	// 50 MB middle tier: 0.7 min/MB.
	if rec.DurationMinutes != 35 {
		t.Errorf("duration should fall back to the size heuristic, got %d", rec.DurationMinutes)
	}
}

func TestCorrelate_PersonalSplit(t *testing.T) {
	now := time.Now().UTC()
	objects := []correlate.Object{
		obj("videos/"+batchHex+"/session-1/rec.mp4", mb, now),
		obj("videos/personal/clip.mp4", mb, now),
	}

	res := correlate.Correlate(objects, nil)

	if len(res.Personal) != 1 || res.Personal[0].Key != "videos/personal/clip.mp4" {
		t.Errorf("personal view: got %+v", res.Personal)
	}
	if len(res.Batches) != 1 {
		t.Errorf("batch view: got %+v", res.Batches)
	}
}

func TestCorrelate_DeduplicatesKeys(t *testing.T) {
	now := time.Now().UTC()
	objects := []correlate.Object{
		obj("videos/"+batchHex+"/session-1/rec.mp4", mb, now),
		obj("videos/"+batchHex+"/session-1/rec.mp4", mb, now),
	}

	res := correlate.Correlate(objects, nil)

	if got := len(res.Batches[0].Sessions[0].Recordings); got != 1 {
		t.Errorf("duplicate keys must collapse, got %d recordings", got)
	}
}

func TestCorrelate_SessionsOrderedBySequence(t *testing.T) {
	now := time.Now().UTC()
	objects := []correlate.Object{
		obj("videos/"+batchHex+"/session-4/rec.mp4", mb, now),
		obj("videos/"+batchHex+"/session-1/rec.mp4", mb, now),
		obj("videos/"+batchHex+"/session-2/rec.mp4", mb, now),
	}

	res := correlate.Correlate(objects, nil)

	sessions := res.Batches[0].Sessions
	want := []int{1, 2, 4}
	for i, s := range sessions {
		if s.Sequence != want[i] {
			t.Errorf("session %d: sequence %d, want %d", i, s.Sequence, want[i])
		}
	}
}
