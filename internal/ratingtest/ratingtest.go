// Package ratingtest provides an in-memory database and reference data
// builders for rating tests.
package ratingtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	geographydomain "github.com/smallbiznis/freightrate/internal/geography/domain"
	"github.com/smallbiznis/freightrate/internal/migration"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// NewDB opens a shared-cache in-memory database private to the test and
// migrates every rating table.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	require.NoError(t, db.Exec("PRAGMA busy_timeout = 5000").Error)

	require.NoError(t, db.AutoMigrate(migration.Models()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func Node(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return node
}

// Create inserts every row or fails the test.
func Create(t *testing.T, db *gorm.DB, rows ...any) {
	t.Helper()
	for _, row := range rows {
		require.NoError(t, db.Create(row).Error)
	}
}

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func Dec(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func NullDec(v string) decimal.NullDecimal {
	return decimal.NewNullDecimal(Dec(v))
}

func Ptr[T any](v T) *T {
	return &v
}

// Fixture is one account with an active, published contract.
type Fixture struct {
	Account  contractdomain.Account
	Provider contractdomain.Provider
	Contract contractdomain.Contract
	Version  contractdomain.ContractVersion
}

// SeedContract creates an account, a provider and a published contract for
// mode whose single version starts at start and never ends.
func SeedContract(t *testing.T, db *gorm.DB, node *snowflake.Node, accountCode string, mode ratingdomain.Mode, start time.Time) Fixture {
	t.Helper()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := Fixture{
		Account: contractdomain.Account{
			ID:        node.Generate(),
			Code:      accountCode,
			Name:      accountCode,
			Status:    "Active",
			CreatedAt: now,
		},
		Provider: contractdomain.Provider{
			ID:        node.Generate(),
			Code:      "CARRIER-" + accountCode,
			Name:      "Carrier " + accountCode,
			CreatedAt: now,
		},
	}
	f.Contract = contractdomain.Contract{
		ID:         node.Generate(),
		AccountID:  &f.Account.ID,
		ProviderID: &f.Provider.ID,
		Mode:       mode.String(),
		Name:       fmt.Sprintf("%s %s", accountCode, mode),
		IsActive:   true,
		Status:     contractdomain.StatusPublished,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	f.Version = contractdomain.ContractVersion{
		ID:             node.Generate(),
		ContractID:     f.Contract.ID,
		VersionNo:      1,
		EffectiveStart: start,
		Status:         contractdomain.StatusPublished,
		PublishedAt:    &now,
		CreatedAt:      now,
	}
	Create(t, db, &f.Account, &f.Provider, &f.Contract, &f.Version)
	return f
}

// SeedZip maps a postal code to a zone and region.
func SeedZip(t *testing.T, db *gorm.DB, node *snowflake.Node, country, postal string, zone, region int64) {
	t.Helper()
	Create(t, db, &geographydomain.GeoZipZone{
		ID:          node.Generate(),
		CountryCode: country,
		PostalCode:  postal,
		ZoneID:      &zone,
		RegionID:    &region,
		UpdatedAt:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}
