package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"gorm.io/gorm"
)

// Input is everything a mode calculator needs, already resolved.
type Input struct {
	VersionID      snowflake.ID
	ShipDate       time.Time
	OriginZoneID   *int64
	DestZoneID     *int64
	OriginRegionID *int64
	DestRegionID   *int64
	OriginPort     string
	DestPort       string
	EquipmentType  string
	ContainerType  string
	Lines          []ratingdomain.ShipmentLine
}

func (in Input) TotalWeight() decimal.Decimal {
	total := decimal.Zero
	for _, line := range in.Lines {
		total = total.Add(line.Weight)
	}
	return total
}

// Calculator prices linehaul for one mode. It records its lines and warnings
// on the sheet and returns the effective linehaul after discount and minimum.
// Missing reference data is a warning with a zero result, never an error.
type Calculator interface {
	Mode() ratingdomain.Mode
	Rate(ctx context.Context, in Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error)
}

// Registry routes a mode to its calculator.
type Registry interface {
	For(mode ratingdomain.Mode) (Calculator, bool)
}

type LtlRateKey struct {
	VersionID    snowflake.ID
	OriginZoneID int64
	DestZoneID   int64
	NmfcClass    int
	Weight       decimal.Decimal
}

type FtlRateKey struct {
	VersionID      snowflake.ID
	OriginRegionID int64
	DestRegionID   int64
	EquipmentType  string
}

type PortRateKey struct {
	VersionID     snowflake.ID
	OriginPort    string
	DestPort      string
	ContainerType string
	Weight        decimal.Decimal
}

// Repository performs the natural-key, as-of-date lookups for every rate table.
// Each method returns nil, nil when no row applies.
type Repository interface {
	FindLtlBaseRate(ctx context.Context, db *gorm.DB, key LtlRateKey, at time.Time) (*LtlBaseRate, error)
	FindFtlLaneRate(ctx context.Context, db *gorm.DB, key FtlRateKey, at time.Time) (*FtlLaneRate, error)
	FindFclContainerRate(ctx context.Context, db *gorm.DB, key PortRateKey, at time.Time) (*FclContainerRate, error)
	FindLclRate(ctx context.Context, db *gorm.DB, key PortRateKey, at time.Time) (*LclRate, error)
}
