package service

import (
	"context"

	"github.com/shopspring/decimal"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
)

// FCL prices a container on the port pair. There is no discount or minimum.
type FCL struct {
	base
}

func (c *FCL) Mode() ratingdomain.Mode { return ratingdomain.ModeFCL }

func (c *FCL) Rate(ctx context.Context, in linehauldomain.Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error) {
	origin, dest, container := normalizeCode(in.OriginPort), normalizeCode(in.DestPort), normalizeCode(in.ContainerType)
	if origin == "" || dest == "" || container == "" {
		sheet.Warn("FCL requires origin/destination port codes and a container type.")
		return decimal.Zero, nil
	}

	rate, err := c.repo.FindFclContainerRate(ctx, c.db, linehauldomain.PortRateKey{
		VersionID:     in.VersionID,
		OriginPort:    origin,
		DestPort:      dest,
		ContainerType: container,
	}, in.ShipDate)
	if err != nil {
		return decimal.Zero, err
	}
	if rate == nil {
		sheet.Warnf("No FCL container rate found for %s->%s, container %s.", origin, dest, container)
		return decimal.Zero, nil
	}

	detail := map[string]any{
		"rate_id":        rate.ID.String(),
		"container_type": container,
		"wildcard":       rate.IsWildcard(),
	}
	if rate.FreeDays != nil {
		detail["free_days"] = *rate.FreeDays
	}

	linehaul := ratingdomain.Round(rate.BaseRate)
	sheet.Add(ratingdomain.ChargeLine{
		Code:        ratingdomain.CodeLinehaul,
		Description: "FCL Base Rate",
		Amount:      linehaul,
		Kind:        ratingdomain.ChargeKindLinehaul,
		Detail:      detail,
	})
	return linehaul, nil
}
