package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type row struct {
	id    int
	start time.Time
	end   time.Time
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rowWindow(r row) Window { return Window{Start: r.start, End: r.end} }

func TestWindowContainsIsInclusive(t *testing.T) {
	w := Window{Start: date(2024, 1, 1), End: date(2024, 1, 31)}

	assert.True(t, w.Contains(date(2024, 1, 1)))
	assert.True(t, w.Contains(date(2024, 1, 31).Add(23*time.Hour)))
	assert.False(t, w.Contains(date(2023, 12, 31)))
	assert.False(t, w.Contains(date(2024, 2, 1)))
}

func TestWindowOpenEnded(t *testing.T) {
	w := Window{Start: date(2024, 1, 1)}
	assert.True(t, w.Contains(date(2099, 1, 1)))
	assert.False(t, w.Contains(date(2023, 6, 1)))
}

func TestSelectAppliesTieBreak(t *testing.T) {
	rows := []row{
		{id: 1, start: date(2024, 1, 1), end: date(2024, 12, 31)},
		{id: 3, start: date(2024, 1, 1), end: date(2024, 12, 31)},
		{id: 2, start: date(2024, 1, 1), end: date(2024, 12, 31)},
		{id: 9, start: date(2025, 1, 1), end: date(2025, 12, 31)},
	}

	got, ok := Select(rows, date(2024, 6, 1), rowWindow, func(a, b row) bool { return a.id > b.id })
	assert.True(t, ok)
	assert.Equal(t, 3, got.id)
}

func TestSelectNoMatch(t *testing.T) {
	rows := []row{{id: 1, start: date(2024, 1, 1), end: date(2024, 1, 31)}}

	_, ok := Select(rows, date(2024, 3, 1), rowWindow, nil)
	assert.False(t, ok)
}
