// Package hours implements the business-hours gate: campaigns flagged
// business_hours_only may only dispatch inside a configured local
// time-of-day window.
package hours

import "time"

// Window is a [Start, End) hour-of-day range, e.g. 8..20 for 08:00-20:00.
// Start == End disables the gate (always open).
type Window struct {
	Start int
	End   int
}

// Open reports whether t falls inside the window.
func (w Window) Open(t time.Time) bool {
	if w.Start == w.End {
		return true
	}
	h := t.Hour()
	if w.Start < w.End {
		return h >= w.Start && h < w.End
	}
	// Overnight window, e.g. 22..6.
	return h >= w.Start || h < w.End
}

// NextOpen returns the earliest instant at or after t inside the window.
// For an instant already inside, t itself is returned.
func (w Window) NextOpen(t time.Time) time.Time {
	if w.Open(t) {
		return t
	}
	next := time.Date(t.Year(), t.Month(), t.Day(), w.Start, 0, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// UntilOpen is the delay from t to the next window start, zero when the
// window is already open.
func (w Window) UntilOpen(t time.Time) time.Duration {
	return w.NextOpen(t).Sub(t)
}
