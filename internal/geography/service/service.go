package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/freightrate/internal/cache"
	geographydomain "github.com/smallbiznis/freightrate/internal/geography/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	cache cache.ReferenceCache
	repo  geographydomain.Repository
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Cache cache.ReferenceCache
	Repo  geographydomain.Repository
}

func New(p Params) geographydomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("geography.service"),
		cache: p.Cache,
		repo:  p.Repo,
	}
}

// Resolve maps an address to zone and region ids. An address without a
// postal code or without a mapping resolves to an empty Location.
func (s *Service) Resolve(ctx context.Context, addr ratingdomain.Address) (geographydomain.Location, error) {
	country := normalizeCountry(addr.Country)
	postal := strings.ToUpper(strings.TrimSpace(addr.PostalCode))
	if postal == "" {
		return geographydomain.Location{}, nil
	}

	key := "geo:" + country + ":" + postal
	var cached geographydomain.Location
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		s.log.Warn("geography cache read failed", zap.Error(err))
	} else if hit {
		return cached, nil
	}

	row, err := s.repo.FindByPostalCode(ctx, s.db, country, postal)
	if err != nil {
		return geographydomain.Location{}, err
	}

	var loc geographydomain.Location
	if row != nil {
		loc = geographydomain.Location{ZoneID: row.ZoneID, RegionID: row.RegionID}
	}
	if err := s.cache.Set(ctx, key, loc); err != nil {
		s.log.Warn("geography cache write failed", zap.Error(err))
	}
	return loc, nil
}

// ResolvePair resolves both ends concurrently and records a warning for every
// id that could not be resolved.
func (s *Service) ResolvePair(ctx context.Context, origin, destination ratingdomain.Address, sheet *ratingdomain.Sheet) (geographydomain.Pair, error) {
	var pair geographydomain.Pair

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		loc, err := s.Resolve(gctx, origin)
		pair.Origin = loc
		return err
	})
	g.Go(func() error {
		loc, err := s.Resolve(gctx, destination)
		pair.Destination = loc
		return err
	})
	if err := g.Wait(); err != nil {
		return geographydomain.Pair{}, err
	}

	warnUnresolved(sheet, "Origin", pair.Origin)
	warnUnresolved(sheet, "Destination", pair.Destination)
	return pair, nil
}

func warnUnresolved(sheet *ratingdomain.Sheet, side string, loc geographydomain.Location) {
	if loc.ZoneID == nil {
		sheet.Warnf("%s zone could not be resolved (postal code not mapped).", side)
	}
	if loc.RegionID == nil {
		sheet.Warnf("%s region could not be resolved (postal code not mapped).", side)
	}
}

func normalizeCountry(raw string) string {
	country := strings.ToUpper(strings.TrimSpace(raw))
	if len(country) > 2 {
		country = country[:2]
	}
	return country
}
