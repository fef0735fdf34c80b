package control

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is the time source for default date ranges; tests freeze it via
// SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// DefaultDateRange returns yesterday's UTC day as [start, end).
func DefaultDateRange() (start, end time.Time) {
	today := clock.Now().UTC().Truncate(24 * time.Hour)
	return today.Add(-24 * time.Hour), today
}
