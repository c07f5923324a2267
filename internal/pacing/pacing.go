// Package pacing computes the scheduled send time for each recipient of
// a campaign. It is pure: callers thread the cursor through the fan-out
// loop explicitly, so a crashed preparation run can resume from any index.
package pacing

import (
	"math/rand"
	"time"
)

// jitterSpread is the fraction of the interval randomized in each
// direction. Identical spacing between sends is a throttling signature,
// so every interval is stretched or shrunk by up to 30%.
const jitterSpread = 0.3

// Settings is the effective pacing configuration for one campaign:
// tenant-level intervals plus campaign-level pause overrides.
type Settings struct {
	// BaseInterval separates consecutive sends up to and including
	// recipient LongerIntervalAfter; after that LongInterval applies.
	BaseInterval        time.Duration
	LongInterval        time.Duration
	LongerIntervalAfter int

	// PauseEvery > 0 inserts an extra PauseFor cooldown before every
	// PauseEvery-th recipient.
	PauseEvery int
	PauseFor   time.Duration
}

// Next advances the cursor past recipient i (0-based) and returns the
// time at which that recipient's dispatch should fire. The expected
// cursor is non-decreasing in i; jitter can make individual intervals
// shorter but never negative.
func Next(i int, cursor time.Time, s Settings, rnd *rand.Rand) time.Time {
	interval := s.BaseInterval
	if i > s.LongerIntervalAfter {
		interval = s.LongInterval
	}

	factor := 1 - jitterSpread + rnd.Float64()*2*jitterSpread
	next := cursor.Add(time.Duration(float64(interval) * factor))

	if s.PauseEvery > 0 && i > 0 && i%s.PauseEvery == 0 {
		next = next.Add(s.PauseFor)
	}
	return next
}

// Delay converts a cursor position into a queue delay relative to now,
// floored at zero so overdue recipients dispatch immediately.
func Delay(cursor, now time.Time) time.Duration {
	d := cursor.Sub(now)
	if d < 0 {
		return 0
	}
	return d
}
