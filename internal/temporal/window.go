package temporal

import "time"

// Window is an inclusive date range. A zero End leaves the window open.
type Window struct {
	Start time.Time
	End   time.Time
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Contains reports whether the calendar date of at falls inside the window,
// comparing dates only so time-of-day and storage timezone do not matter.
func (w Window) Contains(at time.Time) bool {
	day := Day(at)
	if !w.Start.IsZero() && day.Before(Day(w.Start)) {
		return false
	}
	if !w.End.IsZero() && day.After(Day(w.End)) {
		return false
	}
	return true
}

// Select returns the row effective at the given date. When several rows
// qualify, better(a, b) reports whether a should win over b. The boolean is
// false when no row qualifies.
func Select[T any](rows []T, at time.Time, window func(T) Window, better func(a, b T) bool) (T, bool) {
	var (
		best  T
		found bool
	)
	for _, row := range rows {
		if !window(row).Contains(at) {
			continue
		}
		if !found || (better != nil && better(row, best)) {
			best = row
			found = true
		}
	}
	return best, found
}
