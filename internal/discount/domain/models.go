package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"gorm.io/gorm"
)

// LtlDiscountRule reduces LTL linehaul by a percentage. A nil NmfcClass
// applies to every class.
type LtlDiscountRule struct {
	ID                snowflake.ID        `gorm:"primaryKey"`
	ContractVersionID snowflake.ID        `gorm:"not null;index"`
	NmfcClass         *int                `gorm:"index"`
	DiscountPercent   decimal.Decimal     `gorm:"type:decimal(18,6);not null"`
	MinChargeOverride decimal.NullDecimal `gorm:"type:decimal(18,6)"`
	EffectiveDate     time.Time           `gorm:"type:date;not null"`
	ExpirationDate    *time.Time          `gorm:"type:date"`
}

func (LtlDiscountRule) TableName() string { return "ltl_discount_rules" }

func (r LtlDiscountRule) Window() temporal.Window {
	w := temporal.Window{Start: r.EffectiveDate}
	if r.ExpirationDate != nil {
		w.End = *r.ExpirationDate
	}
	return w
}

type Repository interface {
	FindRule(ctx context.Context, db *gorm.DB, versionID snowflake.ID, class int, at time.Time) (*LtlDiscountRule, error)
}

type Service interface {
	SelectRule(ctx context.Context, versionID snowflake.ID, class int, at time.Time) (*LtlDiscountRule, error)
}
