package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// SnapshotKey is the single key under which the cleaned board snapshot is
// cached.
const SnapshotKey = "boards:all"

var stripPattern = regexp.MustCompile(`[^a-z0-9 ]+`)

// NormalizeQuestion produces a stable fingerprint source from a user
// question: lowercased, punctuation stripped, whitespace collapsed, so
// "What's our pipeline?" and "whats our pipeline" map to the same key.
func NormalizeQuestion(question string) string {
	q := strings.ToLower(strings.TrimSpace(question))
	q = stripPattern.ReplaceAllString(q, "")
	return strings.Join(strings.Fields(q), " ")
}

// ResponseKey builds the response-cache key for a question: a truncated
// SHA-256 digest of the normalized form.
func ResponseKey(question string) string {
	digest := sha256.Sum256([]byte(NormalizeQuestion(question)))
	return "resp:" + hex.EncodeToString(digest[:])[:16]
}
