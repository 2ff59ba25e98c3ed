package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/freightrate/internal/discount/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo discountdomain.Repository
}

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo discountdomain.Repository
}

func New(p Params) discountdomain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("discount.service"),
		repo: p.Repo,
	}
}

func (s *Service) SelectRule(ctx context.Context, versionID snowflake.ID, class int, at time.Time) (*discountdomain.LtlDiscountRule, error) {
	return s.repo.FindRule(ctx, s.db, versionID, class, at)
}

// Apply records the discount on the sheet and returns the discounted linehaul.
// A nil rule or a zero percentage leaves linehaul untouched.
func Apply(sheet *ratingdomain.Sheet, linehaul decimal.Decimal, rule *discountdomain.LtlDiscountRule) decimal.Decimal {
	if rule == nil || rule.DiscountPercent.IsZero() {
		return linehaul
	}
	discount := ratingdomain.PercentOf(linehaul, rule.DiscountPercent)
	sheet.Add(ratingdomain.ChargeLine{
		Code:        ratingdomain.CodeDiscount,
		Description: "LTL Discount " + rule.DiscountPercent.String() + "%",
		Amount:      discount.Neg(),
		Kind:        ratingdomain.ChargeKindDiscount,
		Detail: map[string]any{
			"rule_id": rule.ID.String(),
			"percent": rule.DiscountPercent.String(),
		},
	})
	return ratingdomain.Round(linehaul.Sub(discount))
}

// EnforceMinimum raises linehaul to the minimum, recording the delta as a
// MINIMUM line, and returns the floored amount.
func EnforceMinimum(sheet *ratingdomain.Sheet, linehaul decimal.Decimal, minimum decimal.NullDecimal) decimal.Decimal {
	if !minimum.Valid || !linehaul.LessThan(minimum.Decimal) {
		return linehaul
	}
	sheet.Add(ratingdomain.ChargeLine{
		Code:        ratingdomain.CodeMinimum,
		Description: "Minimum charge adjustment",
		Amount:      minimum.Decimal.Sub(linehaul),
		Kind:        ratingdomain.ChargeKindMinimum,
		Detail: map[string]any{
			"minimum":  minimum.Decimal.String(),
			"computed": linehaul.String(),
		},
	})
	return ratingdomain.Round(minimum.Decimal)
}

// MinimumFor picks the discount rule's override when present, else the rate's own minimum.
func MinimumFor(rule *discountdomain.LtlDiscountRule, rateMinimum decimal.NullDecimal) decimal.NullDecimal {
	if rule != nil && rule.MinChargeOverride.Valid {
		return rule.MinChargeOverride
	}
	return rateMinimum
}
