package daily

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDateKey(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*60*60)
	// 2026-03-02 05:00 at UTC+10 is still 2026-03-01 in UTC.
	assert.Equal(t, "2026-03-01", DateKey(time.Date(2026, 3, 2, 5, 0, 0, 0, loc)))
	assert.Equal(t, "2026-03-02", DateKey(time.Date(2026, 3, 2, 23, 59, 0, 0, time.UTC)))
}

func TestSeed(t *testing.T) {
	morning := time.Date(2026, 10, 15, 1, 0, 0, 0, time.UTC)
	evening := time.Date(2026, 10, 15, 22, 0, 0, 0, time.UTC)
	tomorrow := morning.Add(24 * time.Hour)

	assert.Equal(t, Seed(morning, "salt"), Seed(evening, "salt"), "same day, same seed")
	assert.NotEqual(t, Seed(morning, "salt"), Seed(tomorrow, "salt"))
	assert.NotEqual(t, Seed(morning, "salt"), Seed(morning, "other"))
	assert.GreaterOrEqual(t, Seed(morning, "salt"), int64(0))
}
