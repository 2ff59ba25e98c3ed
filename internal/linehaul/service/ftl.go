package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	discountsvc "github.com/smallbiznis/freightrate/internal/discount/service"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
)

// FTL prices a flat lane rate on the region pair.
type FTL struct {
	base
	defaultEquipment string
}

func (c *FTL) Mode() ratingdomain.Mode { return ratingdomain.ModeFTL }

func (c *FTL) Rate(ctx context.Context, in linehauldomain.Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error) {
	if in.OriginRegionID == nil || in.DestRegionID == nil {
		sheet.Warn("FTL requires origin/destination region ids to look up lane rates.")
		return decimal.Zero, nil
	}

	equipment := normalizeCode(in.EquipmentType)
	if equipment == "" {
		equipment = c.defaultEquipment
	}

	rate, err := c.repo.FindFtlLaneRate(ctx, c.db, linehauldomain.FtlRateKey{
		VersionID:      in.VersionID,
		OriginRegionID: *in.OriginRegionID,
		DestRegionID:   *in.DestRegionID,
		EquipmentType:  equipment,
	}, in.ShipDate)
	if err != nil {
		return decimal.Zero, err
	}
	if rate == nil {
		sheet.Warnf("No FTL lane rate found for regions %d->%d.", *in.OriginRegionID, *in.DestRegionID)
		return decimal.Zero, nil
	}

	rated := normalizeCode(rate.EquipmentType)
	if !strings.EqualFold(rated, equipment) {
		sheet.Warnf("No FTL rate for equipment %s; using %s rate.", equipment, rated)
	}

	gross := ratingdomain.Round(rate.RateValue)
	sheet.Add(ratingdomain.ChargeLine{
		Code:        ratingdomain.CodeLinehaul,
		Description: "FTL Linehaul",
		Amount:      gross,
		Kind:        ratingdomain.ChargeKindLinehaul,
		Detail: map[string]any{
			"rate_id":   rate.ID.String(),
			"equipment": rated,
		},
	})

	return discountsvc.EnforceMinimum(sheet, gross, rate.MinimumCharge), nil
}
