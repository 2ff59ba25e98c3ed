package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Sheet accumulates the charge lines and warnings of one quote computation.
// It is owned by a single computation and is not safe for concurrent use.
type Sheet struct {
	lines    []ChargeLine
	warnings []string
}

func NewSheet() *Sheet {
	return &Sheet{}
}

// Add appends a charge line with its amount rounded to Scale places.
func (s *Sheet) Add(line ChargeLine) {
	line.Amount = Round(line.Amount)
	s.lines = append(s.lines, line)
}

func (s *Sheet) Warn(msg string) {
	s.warnings = append(s.warnings, msg)
}

func (s *Sheet) Warnf(format string, args ...any) {
	s.Warn(fmt.Sprintf(format, args...))
}

// Subtotal is the sum of every line added so far.
func (s *Sheet) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range s.lines {
		total = total.Add(line.Amount)
	}
	return Round(total)
}

func (s *Sheet) Lines() []ChargeLine {
	out := make([]ChargeLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *Sheet) Warnings() []string {
	out := make([]string, len(s.warnings))
	copy(out, s.warnings)
	return out
}
