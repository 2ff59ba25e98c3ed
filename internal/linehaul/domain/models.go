package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freightrate/internal/temporal"
)

// Effective is the shared effective window of every rate row.
type Effective struct {
	EffectiveDate  time.Time  `gorm:"type:date;not null"`
	ExpirationDate *time.Time `gorm:"type:date"`
}

func (e Effective) Window() temporal.Window {
	w := temporal.Window{Start: e.EffectiveDate}
	if e.ExpirationDate != nil {
		w.End = *e.ExpirationDate
	}
	return w
}

// LtlBaseRate prices LTL per hundredweight for a zone pair, class and weight band.
type LtlBaseRate struct {
	ID                snowflake.ID        `gorm:"primaryKey"`
	ContractVersionID snowflake.ID        `gorm:"not null;index:idx_ltl_base_rates_lane"`
	OriginZoneID      int64               `gorm:"not null;index:idx_ltl_base_rates_lane"`
	DestZoneID        int64               `gorm:"not null;index:idx_ltl_base_rates_lane"`
	NmfcClass         int                 `gorm:"not null;index:idx_ltl_base_rates_lane"`
	WeightMinLbs      decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	WeightMaxLbs      decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	RatePerCwt        decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	MinimumCharge     decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	Effective         `gorm:"embedded"`
}

func (LtlBaseRate) TableName() string { return "ltl_base_rates" }

// FtlLaneRate prices a full truckload for a region pair and equipment type.
type FtlLaneRate struct {
	ID                snowflake.ID        `gorm:"primaryKey"`
	ContractVersionID snowflake.ID        `gorm:"not null;index:idx_ftl_lane_rates_lane"`
	OriginRegionID    int64               `gorm:"not null;index:idx_ftl_lane_rates_lane"`
	DestRegionID      int64               `gorm:"not null;index:idx_ftl_lane_rates_lane"`
	EquipmentType     string              `gorm:"type:text;not null"`
	RateValue         decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	MinimumCharge     decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	Effective         `gorm:"embedded"`
}

func (FtlLaneRate) TableName() string { return "ftl_lane_rates" }

// WildcardContainer matches any container type on an FCL rate row.
const WildcardContainer = "*"

type FclContainerRate struct {
	ID                snowflake.ID    `gorm:"primaryKey"`
	ContractVersionID snowflake.ID    `gorm:"not null;index:idx_fcl_container_rates_lane"`
	OriginPort        string          `gorm:"type:text;not null;index:idx_fcl_container_rates_lane"`
	DestPort          string          `gorm:"type:text;not null;index:idx_fcl_container_rates_lane"`
	ContainerType     string          `gorm:"type:text"`
	BaseRate          decimal.Decimal `gorm:"type:decimal(18,6);not null"`
	FreeDays          *int
	Effective         `gorm:"embedded"`
}

func (FclContainerRate) TableName() string { return "fcl_container_rates" }

// IsWildcard reports whether the row applies to any container type.
func (r FclContainerRate) IsWildcard() bool {
	return r.ContainerType == "" || r.ContainerType == WildcardContainer
}

// LclRateBasis selects how LCL weight is priced.
type LclRateBasis string

const (
	LclPerLb  LclRateBasis = "PerLb"
	LclPerCwt LclRateBasis = "PerCwt"
	LclPerWm  LclRateBasis = "PerWm"
)

type LclRate struct {
	ID                snowflake.ID        `gorm:"primaryKey"`
	ContractVersionID snowflake.ID        `gorm:"not null;index:idx_lcl_rates_lane"`
	OriginPort        string              `gorm:"type:text;not null;index:idx_lcl_rates_lane"`
	DestPort          string              `gorm:"type:text;not null;index:idx_lcl_rates_lane"`
	RateBasis         string              `gorm:"type:text;not null"`
	RatePerLb         decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	RatePerCwt        decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	RatePerWm         decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	WeightMinLbs      decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	WeightMaxLbs      decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	MinimumCharge     decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	Effective         `gorm:"embedded"`
}

func (LclRate) TableName() string { return "lcl_rates" }

// Banded reports whether the row carries a weight band.
func (r LclRate) Banded() bool {
	return r.WeightMinLbs.Valid || r.WeightMaxLbs.Valid
}

// InBand reports whether weight falls inside the row's band. Unbanded rows
// accept any weight.
func (r LclRate) InBand(weight decimal.Decimal) bool {
	if r.WeightMinLbs.Valid && weight.LessThan(r.WeightMinLbs.Decimal) {
		return false
	}
	if r.WeightMaxLbs.Valid && weight.GreaterThan(r.WeightMaxLbs.Decimal) {
		return false
	}
	return true
}
