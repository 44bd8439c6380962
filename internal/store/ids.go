package store

import (
	"crypto/rand"
	"encoding/base32"
	"strings"

	"github.com/google/uuid"
)

// newRandomID returns prefix-<suffix> where suffix is 8 chars of base32 (lowercase, no padding).
// 8 chars base32 ~= 40 bits of space.
func newRandomID(prefix string) (string, error) {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	enc := base32.StdEncoding.WithPadding(base32.NoPadding)
	suffix := strings.ToLower(enc.EncodeToString(b[:]))
	return prefix + "-" + suffix, nil
}

// newEventID returns a time-ordered UUIDv7 so events written in the same millisecond still
// sort in creation order.
func newEventID() string { return uuid.Must(uuid.NewV7()).String() }

// LooksLikeTaskID reports whether s has the shape of a generated task id.
func LooksLikeTaskID(s string) bool {
	s = strings.TrimSpace(s)
	rest, ok := strings.CutPrefix(s, "task-")
	if !ok || len(rest) < 3 {
		return false
	}
	for _, r := range rest {
		if (r < 'a' || r > 'z') && (r < '2' || r > '7') {
			return false
		}
	}
	return true
}
