package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	fueldomain "github.com/smallbiznis/freightrate/internal/fuel/domain"
	"github.com/smallbiznis/freightrate/internal/fuel/repository"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/ratingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (fueldomain.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()
	db := ratingtest.NewDB(t)
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Policy: ratingdomain.StaticPolicy(ratingdomain.DefaultPolicy()),
	})
	return svc, db, ratingtest.Node(t)
}

func seedSchedule(t *testing.T, db *gorm.DB, node *snowflake.Node, version snowflake.ID, method, applyTo, value string) {
	t.Helper()
	schedule := fueldomain.FuelSchedule{ID: node.Generate(), Name: "Diesel", IndexType: "DOE", Unit: "USD/gal"}
	ratingtest.Create(t, db, &schedule,
		&fueldomain.FuelScheduleRow{ID: node.Generate(), FuelScheduleID: schedule.ID,
			EffectiveStart: ratingtest.Date(2024, 1, 1), EffectiveEnd: ratingtest.Ptr(ratingtest.Date(2024, 3, 31)), FuelValue: ratingtest.Dec("99")},
		&fueldomain.FuelScheduleRow{ID: node.Generate(), FuelScheduleID: schedule.ID,
			EffectiveStart: ratingtest.Date(2024, 4, 1), FuelValue: ratingtest.Dec(value)},
		&fueldomain.ContractFuelRule{ID: node.Generate(), ContractVersionID: version, FuelScheduleID: schedule.ID,
			ApplyTo: applyTo, CalcMethod: method, EffectiveDate: ratingtest.Date(2024, 1, 1)},
	)
}

func input(version snowflake.ID) fueldomain.Input {
	return fueldomain.Input{
		VersionID: version,
		ShipDate:  ratingtest.Date(2024, 6, 1),
		Basis:     ratingdomain.Basis{Linehaul: ratingtest.Dec("400"), Subtotal: ratingtest.Dec("500")},
	}
}

func TestFuelPercentOfTotal(t *testing.T) {
	svc, db, node := setup(t)
	version := node.Generate()
	seedSchedule(t, db, node, version, "Percent", "Total", "12.5")

	sheet := ratingdomain.NewSheet()
	amount, err := svc.Apply(context.Background(), input(version), sheet)
	require.NoError(t, err)
	assert.True(t, amount.Equal(ratingtest.Dec("62.5")))
	require.Len(t, sheet.Lines(), 1)
	assert.Equal(t, ratingdomain.CodeFuel, sheet.Lines()[0].Code)
	assert.Equal(t, ratingdomain.ApplyToTotal, sheet.Lines()[0].ApplyTo)
}

func TestFuelFlat(t *testing.T) {
	svc, db, node := setup(t)
	version := node.Generate()
	seedSchedule(t, db, node, version, "Flat", "Linehaul", "35")

	sheet := ratingdomain.NewSheet()
	amount, err := svc.Apply(context.Background(), input(version), sheet)
	require.NoError(t, err)
	assert.True(t, amount.Equal(ratingtest.Dec("35")))
}

func TestFuelWithoutRuleIsSilent(t *testing.T) {
	svc, _, node := setup(t)

	sheet := ratingdomain.NewSheet()
	amount, err := svc.Apply(context.Background(), input(node.Generate()), sheet)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Empty(t, sheet.Lines())
	assert.Empty(t, sheet.Warnings())
}

func TestFuelRuleWithoutRowWarns(t *testing.T) {
	svc, db, node := setup(t)
	version := node.Generate()
	schedule := fueldomain.FuelSchedule{ID: node.Generate(), Name: "Diesel", IndexType: "DOE", Unit: "USD/gal"}
	ratingtest.Create(t, db, &schedule,
		&fueldomain.FuelScheduleRow{ID: node.Generate(), FuelScheduleID: schedule.ID,
			EffectiveStart: ratingtest.Date(2024, 1, 1), EffectiveEnd: ratingtest.Ptr(ratingtest.Date(2024, 3, 31)), FuelValue: ratingtest.Dec("9")},
		&fueldomain.ContractFuelRule{ID: node.Generate(), ContractVersionID: version, FuelScheduleID: schedule.ID,
			ApplyTo: "Linehaul", CalcMethod: "Percent", EffectiveDate: ratingtest.Date(2024, 1, 1)},
	)

	sheet := ratingdomain.NewSheet()
	amount, err := svc.Apply(context.Background(), input(version), sheet)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Empty(t, sheet.Lines())
	assert.Equal(t, []string{"Fuel rule exists but no fuel schedule row matched the ship date."}, sheet.Warnings())
}

func TestFuelUnsupportedMethodWarns(t *testing.T) {
	svc, db, node := setup(t)
	version := node.Generate()
	seedSchedule(t, db, node, version, "PerGallon", "Linehaul", "10")

	sheet := ratingdomain.NewSheet()
	amount, err := svc.Apply(context.Background(), input(version), sheet)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Equal(t, []string{"Fuel calc method 'PerGallon' is not supported."}, sheet.Warnings())
}

func TestFuelUnsupportedMethodPricedFlatWarns(t *testing.T) {
	db := ratingtest.NewDB(t)
	node := ratingtest.Node(t)
	policy := ratingdomain.DefaultPolicy()
	policy.CalcFallback = ratingdomain.CalcFallbackFlat
	svc := New(Params{
		DB:     db,
		Log:    zap.NewNop(),
		Repo:   repository.Provide(),
		Policy: ratingdomain.StaticPolicy(policy),
	})
	version := node.Generate()
	seedSchedule(t, db, node, version, "PerGallon", "Linehaul", "10")

	sheet := ratingdomain.NewSheet()
	amount, err := svc.Apply(context.Background(), input(version), sheet)
	require.NoError(t, err)
	assert.True(t, amount.Equal(ratingtest.Dec("10")))
	require.Len(t, sheet.Lines(), 1)
	assert.Equal(t, []string{"Fuel calc method 'PerGallon' is not supported; priced as flat."}, sheet.Warnings())
}
