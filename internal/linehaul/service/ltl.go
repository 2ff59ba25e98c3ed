package service

import (
	"context"
	"strconv"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/freightrate/internal/discount/domain"
	discountsvc "github.com/smallbiznis/freightrate/internal/discount/service"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"go.uber.org/zap"
)

var hundredweight = decimal.NewFromInt(100)

// LTL prices by hundredweight on the zone pair, then applies the contract
// discount and minimum.
type LTL struct {
	base
	discounts    discountdomain.Service
	defaultClass int
}

func (c *LTL) Mode() ratingdomain.Mode { return ratingdomain.ModeLTL }

func (c *LTL) Rate(ctx context.Context, in linehauldomain.Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error) {
	if in.OriginZoneID == nil || in.DestZoneID == nil {
		sheet.Warn("LTL requires origin/destination zone ids to look up base rates.")
		return decimal.Zero, nil
	}

	class := freightClass(in.Lines, c.defaultClass)
	weight := in.TotalWeight()

	rate, err := c.repo.FindLtlBaseRate(ctx, c.db, linehauldomain.LtlRateKey{
		VersionID:    in.VersionID,
		OriginZoneID: *in.OriginZoneID,
		DestZoneID:   *in.DestZoneID,
		NmfcClass:    class,
		Weight:       weight,
	}, in.ShipDate)
	if err != nil {
		return decimal.Zero, err
	}
	if rate == nil {
		sheet.Warnf("No LTL base rate found for class %d, weight %s lb, zones %d->%d.",
			class, weight.Round(2).String(), *in.OriginZoneID, *in.DestZoneID)
		return decimal.Zero, nil
	}

	rule, err := c.discounts.SelectRule(ctx, in.VersionID, class, in.ShipDate)
	if err != nil {
		return decimal.Zero, err
	}

	gross := ratingdomain.Round(weight.Div(hundredweight).Mul(rate.RatePerCwt))
	sheet.Add(ratingdomain.ChargeLine{
		Code:        ratingdomain.CodeLinehaul,
		Description: "LTL Linehaul",
		Amount:      gross,
		Kind:        ratingdomain.ChargeKindLinehaul,
		Detail: map[string]any{
			"rate_id":      rate.ID.String(),
			"nmfc_class":   class,
			"weight_lbs":   weight.String(),
			"rate_per_cwt": rate.RatePerCwt.String(),
		},
	})

	effective := discountsvc.Apply(sheet, gross, rule)
	effective = discountsvc.EnforceMinimum(sheet, effective, discountsvc.MinimumFor(rule, rate.MinimumCharge))

	c.log.Debug("rated ltl linehaul",
		zap.String("version_id", in.VersionID.String()),
		zap.Int("class", class),
		zap.String("linehaul", effective.String()),
	)
	return effective, nil
}

// freightClass takes the first non-blank class across lines and keeps its
// digits, so "92.5" becomes 925. Anything unparseable falls back to def.
func freightClass(lines []ratingdomain.ShipmentLine, def int) int {
	for _, line := range lines {
		raw := strings.TrimSpace(line.FreightClass)
		if raw == "" {
			continue
		}
		digits := strings.Map(func(r rune) rune {
			if unicode.IsDigit(r) {
				return r
			}
			return -1
		}, raw)
		class, err := strconv.Atoi(digits)
		if err != nil {
			return def
		}
		return class
	}
	return def
}
