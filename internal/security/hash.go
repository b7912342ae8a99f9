package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// HashIdentifier produces the salted one-way hash under which a subject
// identifier (matricula or email) is persisted. Input is lower-cased first so
// the same identifier always lands on the same row regardless of how it was
// typed. The raw identifier must never be stored.
func HashIdentifier(identifier, salt string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(identifier) + salt))
	return hex.EncodeToString(sum[:])
}

// ConstantTimeEquals compares two secrets without leaking a timing signal.
// Used for the dispatch trigger's cron key.
func ConstantTimeEquals(a, b string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
