package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	discountdomain "github.com/smallbiznis/freightrate/internal/discount/domain"
	"github.com/smallbiznis/freightrate/internal/discount/repository"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/ratingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSelectRuleSpecificity(t *testing.T) {
	db := ratingtest.NewDB(t)
	node := ratingtest.Node(t)
	seed := ratingtest.SeedContract(t, db, node, "ACME", ratingdomain.ModeLTL, ratingtest.Date(2024, 1, 1))
	svc := New(Params{DB: db, Log: zap.NewNop(), Repo: repository.Provide()})

	rule := func(class *int, pct string, start int) *discountdomain.LtlDiscountRule {
		return &discountdomain.LtlDiscountRule{
			ID:                node.Generate(),
			ContractVersionID: seed.Version.ID,
			NmfcClass:         class,
			DiscountPercent:   ratingtest.Dec(pct),
			EffectiveDate:     ratingtest.Date(2024, 1, start),
		}
	}
	wildcardOld := rule(nil, "10", 1)
	specific := rule(ratingtest.Ptr(55), "20", 1)
	wildcardNew := rule(nil, "15", 2)
	ratingtest.Create(t, db, wildcardOld, specific, wildcardNew)

	at := ratingtest.Date(2024, 6, 1)
	got, err := svc.SelectRule(context.Background(), seed.Version.ID, 55, at)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, specific.ID, got.ID)

	got, err = svc.SelectRule(context.Background(), seed.Version.ID, 70, at)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, wildcardNew.ID, got.ID)

	got, err = svc.SelectRule(context.Background(), snowflake.ID(1), 55, at)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestApply(t *testing.T) {
	sheet := ratingdomain.NewSheet()
	rule := &discountdomain.LtlDiscountRule{ID: 7, DiscountPercent: decimal.RequireFromString("12.5")}

	out := Apply(sheet, decimal.NewFromInt(200), rule)
	assert.True(t, out.Equal(decimal.NewFromInt(175)), out.String())

	lines := sheet.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, ratingdomain.CodeDiscount, lines[0].Code)
	assert.True(t, lines[0].Amount.Equal(decimal.NewFromInt(-25)))

	zero := &discountdomain.LtlDiscountRule{DiscountPercent: decimal.Zero}
	assert.True(t, Apply(sheet, decimal.NewFromInt(200), zero).Equal(decimal.NewFromInt(200)))
	assert.True(t, Apply(sheet, decimal.NewFromInt(200), nil).Equal(decimal.NewFromInt(200)))
	assert.Len(t, sheet.Lines(), 1)
}

func TestEnforceMinimum(t *testing.T) {
	sheet := ratingdomain.NewSheet()

	out := EnforceMinimum(sheet, decimal.NewFromInt(80), decimal.NewNullDecimal(decimal.NewFromInt(120)))
	assert.True(t, out.Equal(decimal.NewFromInt(120)))
	require.Len(t, sheet.Lines(), 1)
	assert.True(t, sheet.Lines()[0].Amount.Equal(decimal.NewFromInt(40)))

	// at or above the floor and without a floor nothing is added
	EnforceMinimum(sheet, decimal.NewFromInt(120), decimal.NewNullDecimal(decimal.NewFromInt(120)))
	EnforceMinimum(sheet, decimal.NewFromInt(5), decimal.NullDecimal{})
	assert.Len(t, sheet.Lines(), 1)
}

func TestMinimumFor(t *testing.T) {
	rateMin := decimal.NewNullDecimal(decimal.NewFromInt(90))

	assert.Equal(t, rateMin, MinimumFor(nil, rateMin))
	assert.Equal(t, rateMin, MinimumFor(&discountdomain.LtlDiscountRule{}, rateMin))

	override := decimal.NewNullDecimal(decimal.NewFromInt(150))
	assert.Equal(t, override, MinimumFor(&discountdomain.LtlDiscountRule{MinChargeOverride: override}, rateMin))
}
