package service

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freightrate/internal/cache"
	"github.com/smallbiznis/freightrate/internal/clock"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	"github.com/smallbiznis/freightrate/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	cache cache.ReferenceCache

	repo        contractdomain.Repository
	accountRepo repository.Repository[contractdomain.Account]
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Cache cache.ReferenceCache
	Repo  contractdomain.Repository
}

func New(p Params) contractdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("contract.service"),
		genID: p.GenID,
		clock: p.Clock,
		cache: p.Cache,

		repo:        p.Repo,
		accountRepo: repository.ProvideStore[contractdomain.Account](p.DB),
	}
}
