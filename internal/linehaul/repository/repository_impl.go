package repository

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() linehauldomain.Repository {
	return &repo{}
}

// FindLtlBaseRate matches the weight band against the weight rounded up to
// the next pound. Ties go to the narrowest band, then the latest effective
// date, then the newest row.
func (r *repo) FindLtlBaseRate(ctx context.Context, db *gorm.DB, key linehauldomain.LtlRateKey, at time.Time) (*linehauldomain.LtlBaseRate, error) {
	weight := key.Weight.Ceil()

	var rows []linehauldomain.LtlBaseRate
	err := db.WithContext(ctx).
		Where("contract_version_id = ? AND origin_zone_id = ? AND dest_zone_id = ? AND nmfc_class = ?",
			key.VersionID, key.OriginZoneID, key.DestZoneID, key.NmfcClass).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	inBand := rows[:0]
	for _, row := range rows {
		if weight.GreaterThanOrEqual(row.WeightMinLbs) && weight.LessThanOrEqual(row.WeightMaxLbs) {
			inBand = append(inBand, row)
		}
	}

	rate, ok := temporal.Select(inBand, at, linehauldomain.LtlBaseRate.Window, func(a, b linehauldomain.LtlBaseRate) bool {
		aWidth := a.WeightMaxLbs.Sub(a.WeightMinLbs)
		bWidth := b.WeightMaxLbs.Sub(b.WeightMinLbs)
		if !aWidth.Equal(bWidth) {
			return aWidth.LessThan(bWidth)
		}
		if !a.EffectiveDate.Equal(b.EffectiveDate) {
			return a.EffectiveDate.After(b.EffectiveDate)
		}
		return a.ID > b.ID
	})
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

// FindFtlLaneRate prefers the requested equipment and falls back to any
// equipment on the lane, newest row first.
func (r *repo) FindFtlLaneRate(ctx context.Context, db *gorm.DB, key linehauldomain.FtlRateKey, at time.Time) (*linehauldomain.FtlLaneRate, error) {
	var rows []linehauldomain.FtlLaneRate
	err := db.WithContext(ctx).
		Where("contract_version_id = ? AND origin_region_id = ? AND dest_region_id = ?",
			key.VersionID, key.OriginRegionID, key.DestRegionID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	exact := func(row linehauldomain.FtlLaneRate) bool {
		return strings.EqualFold(strings.TrimSpace(row.EquipmentType), key.EquipmentType)
	}
	rate, ok := temporal.Select(rows, at, linehauldomain.FtlLaneRate.Window, func(a, b linehauldomain.FtlLaneRate) bool {
		if exact(a) != exact(b) {
			return exact(a)
		}
		return a.ID > b.ID
	})
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

// FindFclContainerRate prefers an exact container match over a wildcard row.
func (r *repo) FindFclContainerRate(ctx context.Context, db *gorm.DB, key linehauldomain.PortRateKey, at time.Time) (*linehauldomain.FclContainerRate, error) {
	var rows []linehauldomain.FclContainerRate
	err := db.WithContext(ctx).
		Where("contract_version_id = ? AND UPPER(origin_port) = ? AND UPPER(dest_port) = ?",
			key.VersionID, strings.ToUpper(key.OriginPort), strings.ToUpper(key.DestPort)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := rows[:0]
	for _, row := range rows {
		if row.IsWildcard() || strings.EqualFold(strings.TrimSpace(row.ContainerType), key.ContainerType) {
			candidates = append(candidates, row)
		}
	}

	rate, ok := temporal.Select(candidates, at, linehauldomain.FclContainerRate.Window, func(a, b linehauldomain.FclContainerRate) bool {
		if a.IsWildcard() != b.IsWildcard() {
			return !a.IsWildcard()
		}
		return a.ID > b.ID
	})
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

// FindLclRate prefers a weight band containing the weight over an unbanded
// row, and the narrowest band among banded rows.
func (r *repo) FindLclRate(ctx context.Context, db *gorm.DB, key linehauldomain.PortRateKey, at time.Time) (*linehauldomain.LclRate, error) {
	var rows []linehauldomain.LclRate
	err := db.WithContext(ctx).
		Where("contract_version_id = ? AND UPPER(origin_port) = ? AND UPPER(dest_port) = ?",
			key.VersionID, strings.ToUpper(key.OriginPort), strings.ToUpper(key.DestPort)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	candidates := rows[:0]
	for _, row := range rows {
		if row.InBand(key.Weight) {
			candidates = append(candidates, row)
		}
	}

	rate, ok := temporal.Select(candidates, at, linehauldomain.LclRate.Window, func(a, b linehauldomain.LclRate) bool {
		if a.Banded() != b.Banded() {
			return a.Banded()
		}
		if a.Banded() {
			aWidth, aOpen := bandWidth(a)
			bWidth, bOpen := bandWidth(b)
			if aOpen != bOpen {
				return !aOpen
			}
			if !aOpen && !aWidth.Equal(bWidth) {
				return aWidth.LessThan(bWidth)
			}
		}
		return a.ID > b.ID
	})
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func bandWidth(r linehauldomain.LclRate) (width decimal.Decimal, open bool) {
	if !r.WeightMinLbs.Valid || !r.WeightMaxLbs.Valid {
		return decimal.Zero, true
	}
	return r.WeightMaxLbs.Decimal.Sub(r.WeightMinLbs.Decimal), false
}
