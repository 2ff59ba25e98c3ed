package service

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
	accessorialdomain "github.com/smallbiznis/freightrate/internal/accessorial/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	repo   accessorialdomain.Repository
	policy ratingdomain.PolicySource
}

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	Repo   accessorialdomain.Repository
	Policy ratingdomain.PolicySource
}

func New(p Params) accessorialdomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("accessorial.service"),
		repo:   p.Repo,
		policy: p.Policy,
	}
}

// Apply prices every requested accessorial in request order and returns their
// sum. Codes that cannot be priced are skipped with a warning.
func (s *Service) Apply(ctx context.Context, in accessorialdomain.Input, sheet *ratingdomain.Sheet) (decimal.Decimal, error) {
	codes := NormalizeCodes(in.Codes, in.Hazmat)
	if len(codes) == 0 {
		return decimal.Zero, nil
	}

	catalog, err := s.repo.ListByCodes(ctx, s.db, codes)
	if err != nil {
		return decimal.Zero, err
	}
	byCode := make(map[string]accessorialdomain.Accessorial, len(catalog))
	for _, item := range catalog {
		byCode[strings.ToUpper(item.Code)] = item
	}

	fallback := s.policy.Current().CalcFallback
	added := decimal.Zero
	for _, code := range codes {
		item, ok := byCode[code]
		if !ok {
			sheet.Warnf("Unknown accessorial code '%s'.", code)
			continue
		}
		if !item.AppliesTo(in.Mode) {
			sheet.Warnf("Accessorial '%s' does not apply to %s shipments.", code, in.Mode)
			continue
		}

		charge, err := s.repo.FindCharge(ctx, s.db, in.VersionID, item.ID, in.ShipDate)
		if err != nil {
			return decimal.Zero, err
		}
		if charge == nil {
			sheet.Warnf("No contract accessorial charge found for '%s'.", code)
			continue
		}

		calc, fellBack, err := charge.Spec().Build(fallback)
		if err != nil {
			if errors.Is(err, ratingdomain.ErrUnsupportedCalc) {
				s.log.Warn("unsupported accessorial calc type skipped",
					zap.String("code", code),
					zap.String("calc_type", charge.CalcType),
					zap.String("charge_id", charge.ID.String()),
				)
			}
			sheet.Warnf("Accessorial '%s' calc type '%s' is not supported.", code, charge.CalcType)
			continue
		}
		if fellBack {
			s.log.Warn("accessorial calc type priced as flat",
				zap.String("code", code),
				zap.String("calc_type", charge.CalcType),
				zap.String("charge_id", charge.ID.String()),
			)
			sheet.Warnf("Accessorial '%s' calc type '%s' is not supported; priced as flat.", code, charge.CalcType)
		}

		amount := ratingdomain.Round(ratingdomain.Clamp(calc.Amount(in.Basis), charge.MinAmount, charge.MaxAmount))
		description := strings.TrimSpace(item.Description)
		if description == "" {
			description = code
		}
		sheet.Add(ratingdomain.ChargeLine{
			Code:        code,
			Description: description,
			Amount:      amount,
			Kind:        ratingdomain.ChargeKindAccessorial,
			ApplyTo:     calc.AppliesTo(),
			Detail: map[string]any{
				"charge_id": charge.ID.String(),
				"calc_type": string(calc.Kind()),
			},
		})
		added = added.Add(amount)
	}

	return ratingdomain.Round(added), nil
}

// NormalizeCodes trims, upper-cases and de-duplicates codes in order. Hazmat
// shipments always carry HAZMAT.
func NormalizeCodes(codes []string, hazmat bool) []string {
	seen := make(map[string]struct{}, len(codes)+1)
	out := make([]string, 0, len(codes)+1)
	add := func(raw string) {
		code := strings.ToUpper(strings.TrimSpace(raw))
		if code == "" {
			return
		}
		if _, ok := seen[code]; ok {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	for _, code := range codes {
		add(code)
	}
	if hazmat {
		add(accessorialdomain.CodeHazmat)
	}
	return out
}
