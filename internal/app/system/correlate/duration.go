// internal/app/system/correlate/duration.go
package correlate

import "math"

// DefaultDurationMinutes is the terminal fallback when no duration or
// size information is available for a recording.
const DefaultDurationMinutes = 30

const bytesPerMB = 1 << 20

// An Estimator produces a duration estimate in minutes, reporting ok
// when it has enough information. Estimators are composed in priority
// order with first-success-wins.
type Estimator func() (minutes int, ok bool)

// FromRecord uses the explicit duration of a matched session record.
func FromRecord(durationMinutes int) Estimator {
	return func() (int, bool) {
		if durationMinutes <= 0 {
			return 0, false
		}
		return durationMinutes, true
	}
}

// FromProviderSize converts a provider-reported artifact size at the
// provider's observed cloud-recording rate of ~1.5 MB/min.
func FromProviderSize(sizeBytes int64) Estimator {
	return func() (int, bool) {
		if sizeBytes <= 0 {
			return 0, false
		}
		mb := float64(sizeBytes) / bytesPerMB
		return roundMinutes(mb / 1.5), true
	}
}

// FromObjectSize converts a storage object's byte size with a tiered
// heuristic: large files compress better per minute than small ones.
//
//	> 100 MB  → 0.5 min/MB
//	10–100 MB → 0.7 min/MB
//	< 10 MB   → 1.0 min/MB
func FromObjectSize(sizeBytes int64) Estimator {
	return func() (int, bool) {
		if sizeBytes <= 0 {
			return 0, false
		}
		mb := float64(sizeBytes) / bytesPerMB
		var perMB float64
		switch {
		case mb > 100:
			perMB = 0.5
		case mb >= 10:
			perMB = 0.7
		default:
			perMB = 1.0
		}
		return roundMinutes(mb * perMB), true
	}
}

// EstimateDuration runs the estimators in order and returns the first
// successful estimate, falling back to DefaultDurationMinutes.
func EstimateDuration(estimators ...Estimator) int {
	for _, est := range estimators {
		if minutes, ok := est(); ok {
			return minutes
		}
	}
	return DefaultDurationMinutes
}

func roundMinutes(m float64) int {
	n := int(math.Round(m))
	if n < 1 {
		return 1
	}
	return n
}
