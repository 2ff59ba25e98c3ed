package service

import (
	"context"

	"github.com/shopspring/decimal"
	fueldomain "github.com/smallbiznis/freightrate/internal/fuel/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   fueldomain.Repository
	policy ratingdomain.PolicySource
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   fueldomain.Repository
	Policy ratingdomain.PolicySource
}

func New(p Params) fueldomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("fuel.service"),
		repo:   p.Repo,
		policy: p.Policy,
	}
}

// Apply adds a FUEL line when the contract carries a fuel rule with a schedule
// row on the ship date. No rule means no fuel and no warning.
func (s *Service) Apply(ctx context.Context, in fueldomain.Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error) {
	rule, err := s.repo.FindRule(ctx, s.db, in.VersionID, in.ShipDate)
	if err != nil {
		return decimal.Zero, err
	}
	if rule == nil {
		return decimal.Zero, nil
	}

	row, err := s.repo.FindScheduleRow(ctx, s.db, rule.FuelScheduleID, in.ShipDate)
	if err != nil {
		return decimal.Zero, err
	}
	if row == nil {
		sheet.Warn("Fuel rule exists but no fuel schedule row matched the ship date.")
		return decimal.Zero, nil
	}

	calc, fellBack, err := rule.Spec(*row).Build(s.policy.Current().CalcFallback)
	if err != nil {
		s.log.Warn("unsupported fuel calc method skipped",
			zap.String("rule_id", rule.ID.String()),
			zap.String("calc_method", rule.CalcMethod),
		)
		sheet.Warnf("Fuel calc method '%s' is not supported.", rule.CalcMethod)
		return decimal.Zero, nil
	}
	if fellBack {
		s.log.Warn("fuel calc method priced as flat",
			zap.String("rule_id", rule.ID.String()),
			zap.String("calc_method", rule.CalcMethod),
		)
		sheet.Warnf("Fuel calc method '%s' is not supported; priced as flat.", rule.CalcMethod)
	}

	amount := calc.Amount(in.Basis)
	if amount.IsZero() {
		return decimal.Zero, nil
	}
	sheet.Add(ratingdomain.ChargeLine{
		Code:        ratingdomain.CodeFuel,
		Description: "Fuel surcharge",
		Amount:      amount,
		Kind:        ratingdomain.ChargeKindFuel,
		ApplyTo:     calc.AppliesTo(),
		Detail: map[string]any{
			"rule_id":     rule.ID.String(),
			"schedule_id": rule.FuelScheduleID.String(),
			"row_id":      row.ID.String(),
			"fuel_value":  row.FuelValue.String(),
		},
	})
	return ratingdomain.Round(amount), nil
}
