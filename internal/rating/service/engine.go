package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	accessorialdomain "github.com/smallbiznis/freightrate/internal/accessorial/domain"
	"github.com/smallbiznis/freightrate/internal/config"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	fueldomain "github.com/smallbiznis/freightrate/internal/fuel/domain"
	geographydomain "github.com/smallbiznis/freightrate/internal/geography/domain"
	lanedomain "github.com/smallbiznis/freightrate/internal/lane/domain"
	linehauldomain "github.com/smallbiznis/freightrate/internal/linehaul/domain"
	"github.com/smallbiznis/freightrate/internal/observability/metrics"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/temporal"
	"github.com/smallbiznis/freightrate/pkg/telemetry"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Service struct {
	log    *zap.Logger
	rating config.RatingConfig

	contracts    contractdomain.Service
	geography    geographydomain.Service
	lanes        lanedomain.Service
	linehaul     linehauldomain.Registry
	accessorials accessorialdomain.Service
	fuel         fueldomain.Service
	policy       ratingdomain.PolicySource

	metrics   *metrics.Metrics
	telemetry *telemetry.Metrics
}

type Params struct {
	fx.In

	Log          *zap.Logger
	Cfg          config.Config `optional:"true"`
	Contracts    contractdomain.Service
	Geography    geographydomain.Service
	Lanes        lanedomain.Service
	Linehaul     linehauldomain.Registry
	Accessorials accessorialdomain.Service
	Fuel         fueldomain.Service
	Policy       ratingdomain.PolicySource
	Metrics      *metrics.Metrics   `optional:"true"`
	Telemetry    *telemetry.Metrics `optional:"true"`
}

func New(p Params) ratingdomain.Service {
	return &Service{
		log:          p.Log.Named("rating.engine"),
		rating:       p.Cfg.Rating,
		contracts:    p.Contracts,
		geography:    p.Geography,
		lanes:        p.Lanes,
		linehaul:     p.Linehaul,
		accessorials: p.Accessorials,
		fuel:         p.Fuel,
		policy:       p.Policy,
		metrics:      p.Metrics,
		telemetry:    p.Telemetry,
	}
}

func (s *Service) Quote(ctx context.Context, req ratingdomain.Request) (ratingdomain.Response, error) {
	comp, err := s.Compute(ctx, req)
	if err != nil {
		return ratingdomain.Response{}, err
	}
	return comp.Response, nil
}

// Compute prices a request and reports the contract references it was
// priced against. Incomplete reference data degrades to warnings; only an
// invalid request, a rejected lane or a cancelled context fail it.
func (s *Service) Compute(ctx context.Context, req ratingdomain.Request) (ratingdomain.Computation, error) {
	mode, ok := ratingdomain.ParseMode(string(req.Mode))
	if !ok {
		return ratingdomain.Computation{}, ratingdomain.ErrInvalidMode
	}
	if req.ShipDate.IsZero() {
		return ratingdomain.Computation{}, ratingdomain.ErrInvalidShipDate
	}
	if len(req.Lines) == 0 {
		return ratingdomain.Computation{}, ratingdomain.ErrMissingLines
	}

	shipDate := temporal.Day(req.ShipDate)
	policy := s.policy.Current()
	sheet := ratingdomain.NewSheet()
	comp := ratingdomain.Computation{Mode: mode, ShipDate: shipDate}

	res, err := s.contracts.Resolve(ctx, contractdomain.ResolveRequest{
		CustomerID: req.CustomerID,
		ContractID: req.ContractID,
		Mode:       mode,
		ShipDate:   shipDate,
	}, sheet)
	if err := s.degrade(ctx, sheet, "Contract", err); err != nil {
		return comp, err
	}
	if res.Account != nil {
		id := res.Account.ID
		comp.AccountID = &id
	}
	if res.Contract != nil {
		id := res.Contract.ID
		comp.ContractID = &id
		comp.ProviderID = res.Contract.ProviderID
	}

	pair, err := s.geography.ResolvePair(ctx, req.Origin, req.Destination, sheet)
	if err := s.degrade(ctx, sheet, "Geography", err); err != nil {
		return comp, err
	}

	if res.Version != nil {
		versionID := res.Version.ID
		comp.ContractVersionID = &versionID
		if err := s.price(ctx, req, mode, shipDate, res.Version, pair, policy, sheet); err != nil {
			return comp, err
		}
	}

	comp.Response = assemble(sheet, req.RequestID)
	s.metrics.RecordQuote(ctx, mode.String(), len(comp.Response.Warnings))
	s.telemetry.ObserveQuoteTotal(mode.String(), comp.Response.Total.InexactFloat64())

	s.log.Debug("quote computed",
		zap.String("quote_id", comp.Response.QuoteID),
		zap.String("mode", mode.String()),
		zap.String("total", comp.Response.Total.String()),
		zap.Int("lines", len(comp.Response.Charges)),
		zap.Int("warnings", len(comp.Response.Warnings)),
	)
	return comp, nil
}

// price runs lane eligibility, linehaul, accessorials and fuel against a
// resolved contract version.
func (s *Service) price(
	ctx context.Context,
	req ratingdomain.Request,
	mode ratingdomain.Mode,
	shipDate time.Time,
	version *contractdomain.ContractVersion,
	pair geographydomain.Pair,
	policy ratingdomain.Policy,
	sheet *ratingdomain.Sheet,
) error {
	originPort := strings.ToUpper(strings.TrimSpace(req.OriginPort))
	destPort := strings.ToUpper(strings.TrimSpace(req.DestinationPort))
	equipment := strings.ToUpper(strings.TrimSpace(req.EquipmentType))
	if mode == ratingdomain.ModeFTL {
		// Lane eligibility must see the equipment the lane rate is priced for.
		equipment = s.rating.Equipment(equipment)
	}
	container := strings.ToUpper(strings.TrimSpace(req.ContainerType))

	eligible, err := s.lanes.Check(ctx, lanedomain.Query{
		VersionID:      version.ID,
		Mode:           mode,
		OriginZoneID:   pair.Origin.ZoneID,
		DestZoneID:     pair.Destination.ZoneID,
		OriginRegionID: pair.Origin.RegionID,
		DestRegionID:   pair.Destination.RegionID,
		OriginPort:     originPort,
		DestPort:       destPort,
		EquipmentType:  equipment,
		ContainerType:  container,
	})
	if err != nil {
		if err := s.degrade(ctx, sheet, "Lane eligibility", err); err != nil {
			return err
		}
	} else if !eligible {
		if policy.LaneIneligible == ratingdomain.LanePolicyReject {
			return ratingdomain.ErrLaneNotEligible
		}
		sheet.Warn("No lane eligibility match found for origin/destination. Rating may be incomplete.")
	}

	linehaul := decimal.Zero
	if calc, ok := s.linehaul.For(mode); ok {
		amount, err := calc.Rate(ctx, linehauldomain.Input{
			VersionID:      version.ID,
			ShipDate:       shipDate,
			OriginZoneID:   pair.Origin.ZoneID,
			DestZoneID:     pair.Destination.ZoneID,
			OriginRegionID: pair.Origin.RegionID,
			DestRegionID:   pair.Destination.RegionID,
			OriginPort:     originPort,
			DestPort:       destPort,
			EquipmentType:  equipment,
			ContainerType:  container,
			Lines:          req.Lines,
		}, sheet)
		if err := s.degrade(ctx, sheet, "Linehaul", err); err != nil {
			return err
		}
		linehaul = amount
	} else {
		sheet.Warnf("Unsupported mode: %s", mode)
	}

	_, err = s.accessorials.Apply(ctx, accessorialdomain.Input{
		VersionID: version.ID,
		Mode:      mode,
		ShipDate:  shipDate,
		Codes:     req.AccessorialCodes,
		Hazmat:    req.Hazmat,
		Basis:     ratingdomain.Basis{Linehaul: linehaul, Subtotal: sheet.Subtotal()},
	}, sheet)
	if err := s.degrade(ctx, sheet, "Accessorial", err); err != nil {
		return err
	}

	_, err = s.fuel.Apply(ctx, fueldomain.Input{
		VersionID: version.ID,
		ShipDate:  shipDate,
		Basis:     ratingdomain.Basis{Linehaul: linehaul, Subtotal: sheet.Subtotal()},
	}, sheet)
	return s.degrade(ctx, sheet, "Fuel", err)
}

// degrade turns a store failure into a warning. Cancellation is returned.
func (s *Service) degrade(ctx context.Context, sheet *ratingdomain.Sheet, step string, err error) error {
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.log.Error("rating step failed", zap.String("step", step), zap.Error(err))
	sheet.Warnf("%s lookup failed; the quote may be incomplete.", step)
	return nil
}
