package domain

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CodeHazmat is added to every hazmat shipment.
const CodeHazmat = "HAZMAT"

// Accessorial is a catalog entry. An empty ModeApplicability applies to every mode.
type Accessorial struct {
	ID                snowflake.ID                `gorm:"primaryKey"`
	Code              string                      `gorm:"type:text;not null;uniqueIndex"`
	Description       string                      `gorm:"type:text"`
	ModeApplicability datatypes.JSONSlice[string] `gorm:"type:json"`
}

func (Accessorial) TableName() string { return "accessorials" }

func (a Accessorial) AppliesTo(mode ratingdomain.Mode) bool {
	if len(a.ModeApplicability) == 0 {
		return true
	}
	for _, m := range a.ModeApplicability {
		if strings.EqualFold(strings.TrimSpace(m), string(mode)) {
			return true
		}
	}
	return false
}

// ContractAccessorialCharge prices one accessorial under a contract version.
type ContractAccessorialCharge struct {
	ID                snowflake.ID        `gorm:"primaryKey"`
	ContractVersionID snowflake.ID        `gorm:"not null;index:idx_contract_accessorial_charges_lookup"`
	AccessorialID     snowflake.ID        `gorm:"not null;index:idx_contract_accessorial_charges_lookup"`
	CalcType          string              `gorm:"type:text;not null"`
	FlatAmount        decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	PercentValue      decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	MinAmount         decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	MaxAmount         decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	ApplyTo           string              `gorm:"type:text"`
	EffectiveDate     time.Time           `gorm:"type:date;not null"`
	ExpirationDate    *time.Time          `gorm:"type:date"`
}

func (ContractAccessorialCharge) TableName() string { return "contract_accessorial_charges" }

func (c ContractAccessorialCharge) Window() temporal.Window {
	w := temporal.Window{Start: c.EffectiveDate}
	if c.ExpirationDate != nil {
		w.End = *c.ExpirationDate
	}
	return w
}

func (c ContractAccessorialCharge) Spec() ratingdomain.CalcSpec {
	return ratingdomain.CalcSpec{
		Type:    c.CalcType,
		Flat:    c.FlatAmount,
		Percent: c.PercentValue,
		ApplyTo: c.ApplyTo,
	}
}

type Repository interface {
	ListByCodes(ctx context.Context, db *gorm.DB, codes []string) ([]Accessorial, error)
	FindCharge(ctx context.Context, db *gorm.DB, versionID, accessorialID snowflake.ID, at time.Time) (*ContractAccessorialCharge, error)
}

type Input struct {
	VersionID snowflake.ID
	Mode      ratingdomain.Mode
	ShipDate  time.Time
	Codes     []string
	Hazmat    bool
	Basis     ratingdomain.Basis
}

type Service interface {
	Apply(ctx context.Context, in Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error)
}
