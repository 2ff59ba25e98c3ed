package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	accessorialdomain "github.com/smallbiznis/freightrate/internal/accessorial/domain"
	accessorialrepo "github.com/smallbiznis/freightrate/internal/accessorial/repository"
	accessorialsvc "github.com/smallbiznis/freightrate/internal/accessorial/service"
	"github.com/smallbiznis/freightrate/internal/cache"
	"github.com/smallbiznis/freightrate/internal/clock"
	"github.com/smallbiznis/freightrate/internal/config"
	contractrepo "github.com/smallbiznis/freightrate/internal/contract/repository"
	contractsvc "github.com/smallbiznis/freightrate/internal/contract/service"
	discountdomain "github.com/smallbiznis/freightrate/internal/discount/domain"
	discountrepo "github.com/smallbiznis/freightrate/internal/discount/repository"
	discountsvc "github.com/smallbiznis/freightrate/internal/discount/service"
	fueldomain "github.com/smallbiznis/freightrate/internal/fuel/domain"
	fuelrepo "github.com/smallbiznis/freightrate/internal/fuel/repository"
	fuelsvc "github.com/smallbiznis/freightrate/internal/fuel/service"
	geographyrepo "github.com/smallbiznis/freightrate/internal/geography/repository"
	geographysvc "github.com/smallbiznis/freightrate/internal/geography/service"
	lanedomain "github.com/smallbiznis/freightrate/internal/lane/domain"
	lanerepo "github.com/smallbiznis/freightrate/internal/lane/repository"
	lanesvc "github.com/smallbiznis/freightrate/internal/lane/service"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	linehaulrepo "github.com/smallbiznis/freightrate/internal/linehaul/repository"
	linehaulsvc "github.com/smallbiznis/freightrate/internal/linehaul/service"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/rating/service"
	"github.com/smallbiznis/freightrate/internal/ratingtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type harness struct {
	db     *gorm.DB
	node   *snowflake.Node
	seed   ratingtest.Fixture
	policy ratingdomain.Policy
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := ratingtest.NewDB(t)
	node := ratingtest.Node(t)
	h := &harness{
		db:     db,
		node:   node,
		seed:   ratingtest.SeedContract(t, db, node, "ACME", ratingdomain.ModeLTL, ratingtest.Date(2024, 1, 1)),
		policy: ratingdomain.DefaultPolicy(),
	}
	ratingtest.SeedZip(t, db, node, "US", "94105", 1, 10)
	ratingtest.SeedZip(t, db, node, "US", "10001", 2, 20)
	return h
}

func (h *harness) engine(t *testing.T) ratingdomain.Service {
	t.Helper()
	log := zap.NewNop()
	policy := ratingdomain.StaticPolicy(h.policy)

	contracts := contractsvc.New(contractsvc.Params{
		DB:    h.db,
		Log:   log,
		GenID: h.node,
		Clock: clock.New(),
		Cache: cache.Noop{},
		Repo:  contractrepo.Provide(),
	})
	geography := geographysvc.New(geographysvc.Params{DB: h.db, Log: log, Cache: cache.Noop{}, Repo: geographyrepo.Provide()})
	lanes := lanesvc.New(lanesvc.Params{DB: h.db, Log: log, Repo: lanerepo.Provide()})
	discounts := discountsvc.New(discountsvc.Params{DB: h.db, Log: log, Repo: discountrepo.Provide()})
	linehaul := linehaulsvc.New(linehaulsvc.Params{
		DB:        h.db,
		Log:       log,
		Cfg:       config.Config{},
		Repo:      linehaulrepo.Provide(),
		Discounts: discounts,
	})
	accessorials := accessorialsvc.New(accessorialsvc.Params{DB: h.db, Log: log, Repo: accessorialrepo.Provide(), Policy: policy})
	fuel := fuelsvc.New(fuelsvc.Params{DB: h.db, Log: log, Repo: fuelrepo.Provide(), Policy: policy})

	return service.New(service.Params{
		Log:          log,
		Contracts:    contracts,
		Geography:    geography,
		Lanes:        lanes,
		Linehaul:     linehaul,
		Accessorials: accessorials,
		Fuel:         fuel,
		Policy:       policy,
	})
}

func (h *harness) seedOpenLane(t *testing.T) {
	ratingtest.Create(t, h.db, &lanedomain.ContractLaneEligibility{
		ID:                h.node.Generate(),
		ContractVersionID: h.seed.Version.ID,
		Mode:              "LTL",
	})
}

func (h *harness) seedBaseRate(t *testing.T, minimum decimal.NullDecimal) {
	ratingtest.Create(t, h.db, &linehauldomain.LtlBaseRate{
		ID:                h.node.Generate(),
		ContractVersionID: h.seed.Version.ID,
		OriginZoneID:      1,
		DestZoneID:        2,
		NmfcClass:         55,
		WeightMinLbs:      ratingtest.Dec("0"),
		WeightMaxLbs:      ratingtest.Dec("1999"),
		RatePerCwt:        ratingtest.Dec("10"),
		MinimumCharge:     minimum,
		Effective:         linehauldomain.Effective{EffectiveDate: ratingtest.Date(2024, 1, 1)},
	})
}

func (h *harness) seedDiscount(t *testing.T, class *int, percent string, override decimal.NullDecimal) {
	ratingtest.Create(t, h.db, &discountdomain.LtlDiscountRule{
		ID:                h.node.Generate(),
		ContractVersionID: h.seed.Version.ID,
		NmfcClass:         class,
		DiscountPercent:   ratingtest.Dec(percent),
		MinChargeOverride: override,
		EffectiveDate:     ratingtest.Date(2024, 1, 1),
	})
}

func ltlRequest() ratingdomain.Request {
	return ratingdomain.Request{
		Mode:        ratingdomain.ModeLTL,
		CustomerID:  "ACME",
		Origin:      ratingdomain.Address{Country: "US", PostalCode: "94105"},
		Destination: ratingdomain.Address{Country: "US", PostalCode: "10001"},
		ShipDate:    ratingtest.Date(2024, 6, 1),
		Lines: []ratingdomain.ShipmentLine{
			{Weight: ratingtest.Dec("1000"), Pieces: 2, FreightClass: "55"},
		},
	}
}

// requireBalanced checks the total equals the rounded sum of the lines.
func requireBalanced(t *testing.T, resp ratingdomain.Response) {
	t.Helper()
	sum := decimal.Zero
	for _, line := range resp.Charges {
		sum = sum.Add(line.Amount)
	}
	require.True(t, resp.Total.Equal(sum.Round(ratingdomain.Scale)), "total %s, lines %s", resp.Total, sum)
}

func codes(resp ratingdomain.Response) []string {
	out := make([]string, 0, len(resp.Charges))
	for _, line := range resp.Charges {
		out = append(out, line.Code)
	}
	return out
}

func TestQuoteLtlLinehaul(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, decimal.NullDecimal{})

	comp, err := h.engine(t).Compute(context.Background(), ltlRequest())
	require.NoError(t, err)
	requireBalanced(t, comp.Response)

	assert.True(t, comp.Resolved())
	assert.Equal(t, h.seed.Version.ID, *comp.ContractVersionID)
	assert.Equal(t, []string{"LINEHAUL"}, codes(comp.Response))
	assert.True(t, comp.Response.Total.Equal(ratingtest.Dec("100")))
	assert.Empty(t, comp.Response.Warnings)
	assert.Len(t, comp.Response.QuoteID, 32)
}

func TestQuoteLtlClassSpecificDiscountWins(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, decimal.NullDecimal{})
	h.seedDiscount(t, nil, "5", decimal.NullDecimal{})
	h.seedDiscount(t, ratingtest.Ptr(55), "20", decimal.NullDecimal{})

	resp, err := h.engine(t).Quote(context.Background(), ltlRequest())
	require.NoError(t, err)
	requireBalanced(t, resp)

	assert.Equal(t, []string{"LINEHAUL", "DISCOUNT"}, codes(resp))
	assert.True(t, resp.Charges[0].Amount.Equal(ratingtest.Dec("100")))
	assert.True(t, resp.Charges[1].Amount.Equal(ratingtest.Dec("-20")))
	assert.True(t, resp.Total.Equal(ratingtest.Dec("80")))
}

func TestQuoteLtlMinimumFloor(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, ratingtest.NullDec("90"))
	h.seedDiscount(t, ratingtest.Ptr(55), "20", ratingtest.NullDec("150"))

	resp, err := h.engine(t).Quote(context.Background(), ltlRequest())
	require.NoError(t, err)
	requireBalanced(t, resp)

	assert.Equal(t, []string{"LINEHAUL", "DISCOUNT", "MINIMUM"}, codes(resp))
	// the rule's override outranks the rate's own minimum
	assert.True(t, resp.Charges[2].Amount.Equal(ratingtest.Dec("70")), resp.Charges[2].Amount.String())
	assert.True(t, resp.Total.Equal(ratingtest.Dec("150")))
}

func TestQuoteAccessorialsThenFuel(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, decimal.NullDecimal{})

	liftgate := accessorialdomain.Accessorial{ID: h.node.Generate(), Code: "LIFTGATE", Description: "Liftgate delivery"}
	residential := accessorialdomain.Accessorial{ID: h.node.Generate(), Code: "RESI", Description: "Residential delivery"}
	schedule := fueldomain.FuelSchedule{ID: h.node.Generate(), Name: "DOE", IndexType: "DOE", Unit: "USD/gal"}
	ratingtest.Create(t, h.db, &liftgate, &residential, &schedule,
		&accessorialdomain.ContractAccessorialCharge{
			ID:                h.node.Generate(),
			ContractVersionID: h.seed.Version.ID,
			AccessorialID:     liftgate.ID,
			CalcType:          "Flat",
			FlatAmount:        ratingtest.NullDec("25"),
			EffectiveDate:     ratingtest.Date(2024, 1, 1),
		},
		&accessorialdomain.ContractAccessorialCharge{
			ID:                h.node.Generate(),
			ContractVersionID: h.seed.Version.ID,
			AccessorialID:     residential.ID,
			CalcType:          "Percent",
			PercentValue:      ratingtest.NullDec("10"),
			ApplyTo:           "Total",
			MaxAmount:         ratingtest.NullDec("8"),
			EffectiveDate:     ratingtest.Date(2024, 1, 1),
		},
		&fueldomain.FuelScheduleRow{
			ID:             h.node.Generate(),
			FuelScheduleID: schedule.ID,
			EffectiveStart: ratingtest.Date(2024, 5, 1),
			FuelValue:      ratingtest.Dec("10"),
		},
		&fueldomain.ContractFuelRule{
			ID:                h.node.Generate(),
			ContractVersionID: h.seed.Version.ID,
			FuelScheduleID:    schedule.ID,
			ApplyTo:           "Linehaul",
			CalcMethod:        "Percent",
			EffectiveDate:     ratingtest.Date(2024, 1, 1),
		},
	)

	req := ltlRequest()
	req.AccessorialCodes = []string{" liftgate", "RESI", "LIFTGATE"}
	resp, err := h.engine(t).Quote(context.Background(), req)
	require.NoError(t, err)
	requireBalanced(t, resp)

	assert.Equal(t, []string{"LINEHAUL", "LIFTGATE", "RESI", "FUEL"}, codes(resp))
	assert.True(t, resp.Charges[1].Amount.Equal(ratingtest.Dec("25")))
	// 10% of the pre-accessorial subtotal is clamped to the maximum
	assert.True(t, resp.Charges[2].Amount.Equal(ratingtest.Dec("8")))
	assert.True(t, resp.Charges[3].Amount.Equal(ratingtest.Dec("10")))
	assert.True(t, resp.Total.Equal(ratingtest.Dec("143")))
}

func TestQuoteUnknownAccessorialWarns(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, decimal.NullDecimal{})

	req := ltlRequest()
	req.AccessorialCodes = []string{"teleport"}
	resp, err := h.engine(t).Quote(context.Background(), req)
	require.NoError(t, err)
	requireBalanced(t, resp)

	assert.Equal(t, []string{"LINEHAUL"}, codes(resp))
	assert.True(t, resp.Total.Equal(ratingtest.Dec("100")))
	assert.Contains(t, resp.Warnings, "Unknown accessorial code 'TELEPORT'.")
}

func TestQuoteLaneIneligiblePolicy(t *testing.T) {
	h := newHarness(t)
	h.seedBaseRate(t, decimal.NullDecimal{})
	ratingtest.Create(t, h.db, &lanedomain.ContractLaneEligibility{
		ID:                h.node.Generate(),
		ContractVersionID: h.seed.Version.ID,
		Mode:              "LTL",
		OriginZoneID:      ratingtest.Ptr(int64(7)),
	})

	resp, err := h.engine(t).Quote(context.Background(), ltlRequest())
	require.NoError(t, err)
	requireBalanced(t, resp)
	assert.True(t, resp.Total.Equal(ratingtest.Dec("100")))
	assert.Contains(t, resp.Warnings, "No lane eligibility match found for origin/destination. Rating may be incomplete.")

	h.policy.LaneIneligible = ratingdomain.LanePolicyReject
	_, err = h.engine(t).Quote(context.Background(), ltlRequest())
	assert.ErrorIs(t, err, ratingdomain.ErrLaneNotEligible)
}

func TestQuoteFtlLaneSeesDefaultEquipment(t *testing.T) {
	h := newHarness(t)
	h.policy.LaneIneligible = ratingdomain.LanePolicyReject
	ftl := ratingtest.SeedContract(t, h.db, h.node, "HAUL", ratingdomain.ModeFTL, ratingtest.Date(2024, 1, 1))
	ratingtest.Create(t, h.db,
		&lanedomain.ContractLaneEligibility{
			ID:                h.node.Generate(),
			ContractVersionID: ftl.Version.ID,
			Mode:              "FTL",
			OriginRegionID:    ratingtest.Ptr(int64(10)),
			DestRegionID:      ratingtest.Ptr(int64(20)),
			EquipmentType:     ratingtest.Ptr("VAN"),
		},
		&linehauldomain.FtlLaneRate{
			ID:                h.node.Generate(),
			ContractVersionID: ftl.Version.ID,
			OriginRegionID:    10,
			DestRegionID:      20,
			EquipmentType:     "VAN",
			RateValue:         ratingtest.Dec("1500"),
			Effective:         linehauldomain.Effective{EffectiveDate: ratingtest.Date(2024, 1, 1)},
		},
	)

	req := ltlRequest()
	req.Mode = ratingdomain.ModeFTL
	req.CustomerID = "HAUL"

	resp, err := h.engine(t).Quote(context.Background(), req)
	require.NoError(t, err)
	requireBalanced(t, resp)
	assert.True(t, resp.Total.Equal(ratingtest.Dec("1500")))
	assert.Empty(t, resp.Warnings)
}

func TestQuotePortLaneIgnoresUnresolvedZones(t *testing.T) {
	h := newHarness(t)
	h.policy.LaneIneligible = ratingdomain.LanePolicyReject
	fcl := ratingtest.SeedContract(t, h.db, h.node, "PORT", ratingdomain.ModeFCL, ratingtest.Date(2024, 1, 1))
	ratingtest.Create(t, h.db,
		&lanedomain.ContractLaneEligibility{
			ID:                h.node.Generate(),
			ContractVersionID: fcl.Version.ID,
			Mode:              "FCL",
			OriginZoneID:      ratingtest.Ptr(int64(1)),
			OriginPort:        ratingtest.Ptr("CNSHA"),
			DestPort:          ratingtest.Ptr("USLAX"),
		},
		&linehauldomain.FclContainerRate{
			ID:                h.node.Generate(),
			ContractVersionID: fcl.Version.ID,
			OriginPort:        "CNSHA",
			DestPort:          "USLAX",
			ContainerType:     "40HC",
			BaseRate:          ratingtest.Dec("2400"),
			Effective:         linehauldomain.Effective{EffectiveDate: ratingtest.Date(2024, 1, 1)},
		},
	)

	req := ltlRequest()
	req.Mode = ratingdomain.ModeFCL
	req.CustomerID = "PORT"
	req.Origin = ratingdomain.Address{Country: "CN"}
	req.OriginPort = "CNSHA"
	req.DestinationPort = "USLAX"
	req.ContainerType = "40HC"

	resp, err := h.engine(t).Quote(context.Background(), req)
	require.NoError(t, err)
	requireBalanced(t, resp)
	assert.True(t, resp.Total.Equal(ratingtest.Dec("2400")))
	assert.NotContains(t, resp.Warnings, "No lane eligibility match found for origin/destination. Rating may be incomplete.")
}

func TestQuoteWithoutContractDegrades(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, decimal.NullDecimal{})

	req := ltlRequest()
	req.CustomerID = "NOPE"
	comp, err := h.engine(t).Compute(context.Background(), req)
	require.NoError(t, err)
	requireBalanced(t, comp.Response)

	assert.False(t, comp.Resolved())
	assert.Empty(t, comp.Response.Charges)
	assert.True(t, comp.Response.Total.IsZero())
	assert.Equal(t, []string{"Account 'NOPE' not found."}, comp.Response.Warnings)
}

func TestQuoteUnmappedGeographyDegrades(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, decimal.NullDecimal{})

	req := ltlRequest()
	req.Destination.PostalCode = "99999"
	resp, err := h.engine(t).Quote(context.Background(), req)
	require.NoError(t, err)
	requireBalanced(t, resp)

	assert.Empty(t, resp.Charges)
	assert.Contains(t, resp.Warnings, "Destination zone could not be resolved (postal code not mapped).")
	assert.Contains(t, resp.Warnings, "LTL requires origin/destination zone ids to look up base rates.")
}

func TestQuoteUsesRequestIDAsQuoteID(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, decimal.NullDecimal{})

	req := ltlRequest()
	req.RequestID = "5f0c6c9e-1f0e-4a53-9d8f-0c4f8f3f7a11"
	resp, err := h.engine(t).Quote(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "5f0c6c9e1f0e4a539d8f0c4f8f3f7a11", resp.QuoteID)
}

func TestComputeRejectsInvalidRequests(t *testing.T) {
	h := newHarness(t)
	engine := h.engine(t)

	req := ltlRequest()
	req.Mode = "AIR"
	_, err := engine.Compute(context.Background(), req)
	assert.ErrorIs(t, err, ratingdomain.ErrInvalidMode)

	req = ltlRequest()
	req.Lines = nil
	_, err = engine.Compute(context.Background(), req)
	assert.ErrorIs(t, err, ratingdomain.ErrMissingLines)

	req = ltlRequest()
	req.ShipDate = time.Time{}
	_, err = engine.Compute(context.Background(), req)
	assert.ErrorIs(t, err, ratingdomain.ErrInvalidShipDate)
}

func TestComputeHonoursCancellation(t *testing.T) {
	h := newHarness(t)
	h.seedOpenLane(t)
	h.seedBaseRate(t, decimal.NullDecimal{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := h.engine(t).Compute(ctx, ltlRequest())
	assert.ErrorIs(t, err, context.Canceled)
}
