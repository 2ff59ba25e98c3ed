package service

import (
	"strings"

	"github.com/smallbiznis/freightrate/internal/config"
	discountdomain "github.com/smallbiznis/freightrate/internal/discount/domain"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// base carries the collaborators every mode calculator shares.
type base struct {
	db   *gorm.DB
	log  *zap.Logger
	repo linehauldomain.Repository
}

type Registry struct {
	calculators map[ratingdomain.Mode]linehauldomain.Calculator
}

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Cfg       config.Config
	Repo      linehauldomain.Repository
	Discounts discountdomain.Service
}

func New(p Params) linehauldomain.Registry {
	b := base{
		db:   p.DB,
		log:  p.Log.Named("linehaul.service"),
		repo: p.Repo,
	}

	defaultClass := p.Cfg.Rating.DefaultFreightClass
	if defaultClass <= 0 {
		defaultClass = 55
	}
	defaultEquipment := p.Cfg.Rating.Equipment("")

	return NewRegistry(
		&LTL{base: b, discounts: p.Discounts, defaultClass: defaultClass},
		&FTL{base: b, defaultEquipment: defaultEquipment},
		&FCL{base: b},
		&LCL{base: b},
	)
}

func NewRegistry(calculators ...linehauldomain.Calculator) *Registry {
	r := &Registry{calculators: make(map[ratingdomain.Mode]linehauldomain.Calculator, len(calculators))}
	for _, c := range calculators {
		r.calculators[c.Mode()] = c
	}
	return r
}

func (r *Registry) For(mode ratingdomain.Mode) (linehauldomain.Calculator, bool) {
	c, ok := r.calculators[mode]
	return c, ok
}

func normalizeCode(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
