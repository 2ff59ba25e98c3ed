package service

import (
	"context"
	"errors"
	"testing"

	"github.com/smallbiznis/freightrate/internal/cache"
	geographydomain "github.com/smallbiznis/freightrate/internal/geography/domain"
	"github.com/smallbiznis/freightrate/internal/geography/repository"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/ratingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapCache struct {
	cache.Noop
	rows map[string]geographydomain.Location
	err  error
}

func (c *mapCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	loc, ok := c.rows[key]
	if ok {
		*dest.(*geographydomain.Location) = loc
	}
	return ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value any) error {
	c.rows[key] = value.(geographydomain.Location)
	return nil
}

func newService(t *testing.T, refCache cache.ReferenceCache) *Service {
	t.Helper()
	db := ratingtest.NewDB(t)
	node := ratingtest.Node(t)
	ratingtest.SeedZip(t, db, node, "US", "94105", 1, 10)
	return New(Params{DB: db, Log: zap.NewNop(), Cache: refCache, Repo: repository.Provide()}).(*Service)
}

func TestResolveMapsPostalCode(t *testing.T) {
	svc := newService(t, cache.Noop{})

	loc, err := svc.Resolve(context.Background(), ratingdomain.Address{Country: "usa", PostalCode: " 94105 "})
	require.NoError(t, err)
	require.NotNil(t, loc.ZoneID)
	require.NotNil(t, loc.RegionID)
	assert.Equal(t, int64(1), *loc.ZoneID)
	assert.Equal(t, int64(10), *loc.RegionID)

	loc, err = svc.Resolve(context.Background(), ratingdomain.Address{Country: "US"})
	require.NoError(t, err)
	assert.Nil(t, loc.ZoneID)
}

func TestResolveUsesCache(t *testing.T) {
	refCache := &mapCache{rows: map[string]geographydomain.Location{}}
	svc := newService(t, refCache)

	_, err := svc.Resolve(context.Background(), ratingdomain.Address{Country: "US", PostalCode: "94105"})
	require.NoError(t, err)
	require.Contains(t, refCache.rows, "geo:US:94105")

	zone := int64(99)
	refCache.rows["geo:US:94105"] = geographydomain.Location{ZoneID: &zone}
	loc, err := svc.Resolve(context.Background(), ratingdomain.Address{Country: "US", PostalCode: "94105"})
	require.NoError(t, err)
	assert.Equal(t, int64(99), *loc.ZoneID)
}

func TestResolveIgnoresCacheFailures(t *testing.T) {
	refCache := &mapCache{rows: map[string]geographydomain.Location{}, err: errors.New("redis down")}
	svc := newService(t, refCache)

	loc, err := svc.Resolve(context.Background(), ratingdomain.Address{Country: "US", PostalCode: "94105"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), *loc.ZoneID)
}

func TestResolvePairWarnsForUnmappedSides(t *testing.T) {
	svc := newService(t, cache.Noop{})
	sheet := ratingdomain.NewSheet()

	pair, err := svc.ResolvePair(context.Background(),
		ratingdomain.Address{Country: "US", PostalCode: "94105"},
		ratingdomain.Address{Country: "US", PostalCode: "00000"},
		sheet,
	)
	require.NoError(t, err)
	assert.NotNil(t, pair.Origin.ZoneID)
	assert.Nil(t, pair.Destination.ZoneID)
	assert.Equal(t, []string{
		"Destination zone could not be resolved (postal code not mapped).",
		"Destination region could not be resolved (postal code not mapped).",
	}, sheet.Warnings())
}

func TestResolvePostalCodeCaseDoesNotSplitCache(t *testing.T) {
	db := ratingtest.NewDB(t)
	node := ratingtest.Node(t)
	ratingtest.SeedZip(t, db, node, "GB", "SW1A 1AA", 5, 50)

	refCache := &mapCache{rows: map[string]geographydomain.Location{}}
	svc := New(Params{DB: db, Log: zap.NewNop(), Cache: refCache, Repo: repository.Provide()})

	lower, err := svc.Resolve(context.Background(), ratingdomain.Address{Country: "gb", PostalCode: "sw1a 1aa"})
	require.NoError(t, err)
	require.NotNil(t, lower.ZoneID)
	assert.Equal(t, int64(5), *lower.ZoneID)
	assert.Contains(t, refCache.rows, "geo:GB:SW1A 1AA")

	upper, err := svc.Resolve(context.Background(), ratingdomain.Address{Country: "GB", PostalCode: "SW1A 1AA"})
	require.NoError(t, err)
	require.NotNil(t, upper.ZoneID)
	assert.Equal(t, int64(5), *upper.ZoneID)
}
