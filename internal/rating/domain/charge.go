package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// Scale is the number of decimal places every amount is rounded to.
const Scale = 6

var hundred = decimal.NewFromInt(100)

// Round rounds an amount to Scale places.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Scale)
}

// PercentOf returns basis × pct / 100 rounded to Scale places.
func PercentOf(basis, pct decimal.Decimal) decimal.Decimal {
	return Round(basis.Mul(pct).Div(hundred))
}

// Clamp bounds v by the optional min and max.
func Clamp(v decimal.Decimal, min, max decimal.NullDecimal) decimal.Decimal {
	if min.Valid && v.LessThan(min.Decimal) {
		v = min.Decimal
	}
	if max.Valid && v.GreaterThan(max.Decimal) {
		v = max.Decimal
	}
	return v
}

// ApplyTo selects the basis a percentage charge is computed on.
type ApplyTo string

const (
	ApplyToLinehaul ApplyTo = "Linehaul"
	ApplyToTotal    ApplyTo = "Total"
)

// ParseApplyTo maps stored values to a basis; anything but Total means linehaul.
func ParseApplyTo(raw string) ApplyTo {
	if strings.EqualFold(strings.TrimSpace(raw), string(ApplyToTotal)) {
		return ApplyToTotal
	}
	return ApplyToLinehaul
}

// Basis carries the two amounts a percentage can be applied to.
type Basis struct {
	Linehaul decimal.Decimal
	Subtotal decimal.Decimal
}

func (b Basis) For(applyTo ApplyTo) decimal.Decimal {
	if applyTo == ApplyToTotal {
		return b.Subtotal
	}
	return b.Linehaul
}

// CalcKind is the stored discriminator of a Calculation.
type CalcKind string

const (
	CalcFlat    CalcKind = "Flat"
	CalcPercent CalcKind = "Percent"
)

// ParseCalcKind normalizes a stored calc type. The boolean is false for
// values outside the closed set.
func ParseCalcKind(raw string) (CalcKind, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "flat":
		return CalcFlat, true
	case "percent", "percentage", "pct":
		return CalcPercent, true
	default:
		return "", false
	}
}

// Calculation prices a charge against a basis.
type Calculation interface {
	Kind() CalcKind
	Amount(Basis) decimal.Decimal
	AppliesTo() ApplyTo
}

type FlatCalculation struct {
	Value decimal.Decimal
}

func (FlatCalculation) Kind() CalcKind { return CalcFlat }

func (c FlatCalculation) Amount(Basis) decimal.Decimal { return Round(c.Value) }

func (FlatCalculation) AppliesTo() ApplyTo { return "" }

type PercentCalculation struct {
	Percent decimal.Decimal
	ApplyTo ApplyTo
}

func (PercentCalculation) Kind() CalcKind { return CalcPercent }

func (c PercentCalculation) Amount(b Basis) decimal.Decimal {
	return PercentOf(b.For(c.ApplyTo), c.Percent)
}

func (c PercentCalculation) AppliesTo() ApplyTo { return c.ApplyTo }

var (
	ErrUnsupportedCalc = errors.New("unsupported_calc_type")
	ErrIncompleteCalc  = errors.New("incomplete_calc")
)

// CalcSpec is the stored, loosely typed form of a Calculation.
type CalcSpec struct {
	Type    string
	Flat    decimal.NullDecimal
	Percent decimal.NullDecimal
	ApplyTo string
}

// Build converts a stored definition into a Calculation. A type outside the closed
// set is priced flat only under CalcFallbackFlat with a flat value present, and
// fellBack reports that path so the caller can log it.
func (s CalcSpec) Build(fallback CalcFallback) (calc Calculation, fellBack bool, err error) {
	kind, ok := ParseCalcKind(s.Type)
	if !ok {
		if fallback == CalcFallbackFlat && s.Flat.Valid {
			return FlatCalculation{Value: s.Flat.Decimal}, true, nil
		}
		return nil, false, ErrUnsupportedCalc
	}

	switch kind {
	case CalcFlat:
		if !s.Flat.Valid {
			return nil, false, ErrIncompleteCalc
		}
		return FlatCalculation{Value: s.Flat.Decimal}, false, nil
	default:
		if !s.Percent.Valid {
			return nil, false, ErrIncompleteCalc
		}
		return PercentCalculation{Percent: s.Percent.Decimal, ApplyTo: ParseApplyTo(s.ApplyTo)}, false, nil
	}
}
