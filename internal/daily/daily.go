// Package daily derives the shared "board of the day".
//
// Every player who starts a daily game on the same UTC date gets the same
// seed, and therefore the same starting board and refill stream.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic engine seed for a date using HMAC(salt, YYYY-MM-DD).
func Seed(date time.Time, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes; the sign bit is cleared so seeds print as positive numbers
	return int64(binary.BigEndian.Uint64(sum[:8]) &^ (1 << 63))
}
