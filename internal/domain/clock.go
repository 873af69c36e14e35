package domain

import "github.com/jonboulle/clockwork"

// clock is the package-level time source used to resolve the current month.
// Tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// CurrentMonth returns the month containing the clock's current time.
func CurrentMonth() Month {
	return MonthOf(clock.Now())
}
