package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	lanedomain "github.com/smallbiznis/freightrate/internal/lane/domain"
	"github.com/smallbiznis/freightrate/internal/lane/repository"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/ratingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newService(t *testing.T) (lanedomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db := ratingtest.NewDB(t)
	node := ratingtest.Node(t)
	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})
	return svc, db, node
}

func TestCheckMatchesZonePair(t *testing.T) {
	svc, db, node := newService(t)
	versionID := node.Generate()
	ratingtest.Create(t, db, &lanedomain.ContractLaneEligibility{
		ID:                node.Generate(),
		ContractVersionID: versionID,
		Mode:              "LTL",
		OriginZoneID:      ratingtest.Ptr(int64(1)),
		DestZoneID:        ratingtest.Ptr(int64(2)),
	})

	ok, err := svc.Check(context.Background(), lanedomain.Query{
		VersionID:    versionID,
		Mode:         ratingdomain.ModeLTL,
		OriginZoneID: ratingtest.Ptr(int64(1)),
		DestZoneID:   ratingtest.Ptr(int64(2)),
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Check(context.Background(), lanedomain.Query{
		VersionID:    versionID,
		Mode:         ratingdomain.ModeLTL,
		OriginZoneID: ratingtest.Ptr(int64(1)),
		DestZoneID:   ratingtest.Ptr(int64(3)),
	})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckWildcardRowOnlyCoversItsMode(t *testing.T) {
	svc, db, node := newService(t)
	versionID := node.Generate()
	ratingtest.Create(t, db, &lanedomain.ContractLaneEligibility{
		ID:                node.Generate(),
		ContractVersionID: versionID,
		Mode:              "FCL",
	})

	ok, err := svc.Check(context.Background(), lanedomain.Query{
		VersionID:     versionID,
		Mode:          ratingdomain.ModeFCL,
		OriginPort:    "USLAX",
		DestPort:      "CNSHA",
		ContainerType: "40HC",
	})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Check(context.Background(), lanedomain.Query{VersionID: versionID, Mode: ratingdomain.ModeLCL})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCheckWithoutRowsIsIneligible(t *testing.T) {
	svc, _, node := newService(t)

	ok, err := svc.Check(context.Background(), lanedomain.Query{VersionID: node.Generate(), Mode: ratingdomain.ModeFTL})
	require.NoError(t, err)
	assert.False(t, ok)
}
