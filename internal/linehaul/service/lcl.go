package service

import (
	"context"

	"github.com/shopspring/decimal"
	discountsvc "github.com/smallbiznis/freightrate/internal/discount/service"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
)

var (
	kgPerLb          = decimal.RequireFromString("0.45359237")
	kgPerMetricTon   = decimal.NewFromInt(1000)
	cubicMetersPerIn = decimal.RequireFromString("0.000016387064")
)

// LCL prices consolidated ocean freight on the port pair by the row's basis,
// floored at the row minimum.
type LCL struct {
	base
}

func (c *LCL) Mode() ratingdomain.Mode { return ratingdomain.ModeLCL }

func (c *LCL) Rate(ctx context.Context, in linehauldomain.Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error) {
	origin, dest := normalizeCode(in.OriginPort), normalizeCode(in.DestPort)
	if origin == "" || dest == "" {
		sheet.Warn("LCL requires origin/destination port codes.")
		return decimal.Zero, nil
	}

	weight := in.TotalWeight()
	rate, err := c.repo.FindLclRate(ctx, c.db, linehauldomain.PortRateKey{
		VersionID:  in.VersionID,
		OriginPort: origin,
		DestPort:   dest,
		Weight:     weight,
	}, in.ShipDate)
	if err != nil {
		return decimal.Zero, err
	}
	if rate == nil {
		sheet.Warnf("No LCL rate found for %s->%s, weight %s lb.", origin, dest, weight.Round(2).String())
		return decimal.Zero, nil
	}

	gross, basis := c.price(*rate, in.Lines, weight, sheet)
	gross = ratingdomain.Round(gross)
	sheet.Add(ratingdomain.ChargeLine{
		Code:        ratingdomain.CodeLinehaul,
		Description: "LCL Linehaul",
		Amount:      gross,
		Kind:        ratingdomain.ChargeKindLinehaul,
		Detail: map[string]any{
			"rate_id":    rate.ID.String(),
			"rate_basis": string(basis),
			"weight_lbs": weight.String(),
		},
	})

	minimum := decimal.NullDecimal{Decimal: rate.MinimumCharge, Valid: true}
	return discountsvc.EnforceMinimum(sheet, gross, minimum), nil
}

func (c *LCL) price(rate linehauldomain.LclRate, lines []ratingdomain.ShipmentLine, weight decimal.Decimal, sheet *ratingdomain.Sheet) (decimal.Decimal, linehauldomain.LclRateBasis) {
	basis, ok := parseLclBasis(rate.RateBasis)
	if !ok {
		sheet.Warnf("LCL rate basis '%s' is not supported; pricing at the minimum charge.", rate.RateBasis)
		return decimal.Zero, linehauldomain.LclRateBasis(rate.RateBasis)
	}

	var value decimal.NullDecimal
	switch basis {
	case linehauldomain.LclPerLb:
		value = rate.RatePerLb
	case linehauldomain.LclPerCwt:
		value = rate.RatePerCwt
	case linehauldomain.LclPerWm:
		value = rate.RatePerWm
	}
	if !value.Valid {
		sheet.Warnf("LCL rate has no %s value; pricing at the minimum charge.", basis)
		return decimal.Zero, basis
	}

	switch basis {
	case linehauldomain.LclPerCwt:
		return weight.Div(hundredweight).Mul(value.Decimal), basis
	case linehauldomain.LclPerWm:
		return revenueTons(lines, weight, sheet).Mul(value.Decimal), basis
	default:
		return weight.Mul(value.Decimal), basis
	}
}

// revenueTons is the greater of metric tons and cubic meters. Lines without
// dimensions add no volume.
func revenueTons(lines []ratingdomain.ShipmentLine, weight decimal.Decimal, sheet *ratingdomain.Sheet) decimal.Decimal {
	tons := weight.Mul(kgPerLb).Div(kgPerMetricTon)

	volume := decimal.Zero
	missing := false
	for _, line := range lines {
		if !line.HasDimensions() {
			missing = true
			continue
		}
		cubicInches := line.LengthIn.Mul(*line.WidthIn).Mul(*line.HeightIn).Mul(decimal.NewFromInt(int64(line.Pieces)))
		volume = volume.Add(cubicInches.Mul(cubicMetersPerIn))
	}
	if missing {
		sheet.Warn("LCL W/M rating used weight only for lines without dimensions.")
	}

	if volume.GreaterThan(tons) {
		return volume
	}
	return tons
}

func parseLclBasis(raw string) (linehauldomain.LclRateBasis, bool) {
	switch normalizeCode(raw) {
	case "PERLB", "LB":
		return linehauldomain.LclPerLb, true
	case "PERCWT", "CWT":
		return linehauldomain.LclPerCwt, true
	case "PERWM", "WM", "W/M":
		return linehauldomain.LclPerWm, true
	default:
		return "", false
	}
}
