// internal/app/system/correlate/keys.go

// Package correlate reconciles recordings discovered in object storage
// with session metadata tracked in the database. Storage keys and
// session records are written independently and drift; everything here
// is best-effort enrichment via pure functions, never a source of truth
// for session identity.
package correlate

import (
	"regexp"
	"strconv"
)

var (
	batchIDPattern = regexp.MustCompile(`(?:^|/)([0-9a-fA-F]{24})(?:/|$)`)
	sessionPattern = regexp.MustCompile(`(?i)session[-_ ](\d+)`)
)

// KeyRef is the batch/session reference extracted from a storage key.
type KeyRef struct {
	BatchID  string
	Sequence int
}

// ParseObjectKey extracts a batch id (a 24-hex path segment) and a
// session sequence number (a `session-N`, `session_N`, or `Session N`
// token) from a storage key. The sequence defaults to 1 when the key
// carries no session token. ok is false when no batch id is present,
// which marks the object as personal rather than batch-attributable.
func ParseObjectKey(key string) (KeyRef, bool) {
	m := batchIDPattern.FindStringSubmatch(key)
	if m == nil {
		return KeyRef{}, false
	}
	ref := KeyRef{BatchID: m[1], Sequence: 1}

	if sm := sessionPattern.FindStringSubmatch(key); sm != nil {
		if n, err := strconv.Atoi(sm[1]); err == nil && n > 0 {
			ref.Sequence = n
		}
	}
	return ref, true
}

// SessionKey builds the lookup key joining storage-side references to
// database-side session records.
func SessionKey(batchID string, sequence int) string {
	return batchID + "_" + strconv.Itoa(sequence)
}
