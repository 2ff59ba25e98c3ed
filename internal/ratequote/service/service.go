package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/smallbiznis/freightrate/internal/clock"
	"github.com/smallbiznis/freightrate/internal/config"
	contractdomain "github.com/smallbiznis/freightrate/internal/contract/domain"
	"github.com/smallbiznis/freightrate/internal/observability/metrics"
	"github.com/smallbiznis/freightrate/internal/observability/scope"
	ratequotedomain "github.com/smallbiznis/freightrate/internal/ratequote/domain"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	ratingservice "github.com/smallbiznis/freightrate/internal/rating/service"
	"github.com/smallbiznis/freightrate/pkg/db/option"
	"github.com/smallbiznis/freightrate/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	outcomeCreated  = "created"
	outcomeReplayed = "replayed"
)

// errQuoteExists aborts the commit transaction when another writer won the
// insert for the same request id.
var errQuoteExists = errors.New("rate_quote_exists")

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	engine   ratingdomain.Service
	metrics  *metrics.Metrics
	currency string
	standard string

	repo         ratequotedomain.Repository
	contractRepo repository.Repository[contractdomain.Contract]
	resultRepo   repository.Repository[ratequotedomain.RateQuoteResult]
	lineRepo     repository.Repository[ratequotedomain.RateQuoteChargeLine]
	ediRepo      repository.Repository[ratequotedomain.EdiChargeCode]
}

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Cfg     config.Config
	Engine  ratingdomain.Service
	Repo    ratequotedomain.Repository
	Metrics *metrics.Metrics `optional:"true"`
}

func New(p Params) ratequotedomain.Service {
	currency := strings.ToUpper(strings.TrimSpace(p.Cfg.Rating.Currency))
	if currency == "" {
		currency = "USD"
	}
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("ratequote.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		engine:   p.Engine,
		metrics:  p.Metrics,
		currency: currency,
		standard: strings.ToUpper(strings.TrimSpace(p.Cfg.Rating.EdiStandard)),

		repo:         p.Repo,
		contractRepo: repository.ProvideStore[contractdomain.Contract](p.DB),
		resultRepo:   repository.ProvideStore[ratequotedomain.RateQuoteResult](p.DB),
		lineRepo:     repository.ProvideStore[ratequotedomain.RateQuoteChargeLine](p.DB),
		ediRepo:      repository.ProvideStore[ratequotedomain.EdiChargeCode](p.DB),
	}
}

// Commit prices the request and persists it under its request id. A request
// id seen before returns the stored quote without re-pricing.
func (s *Service) Commit(ctx context.Context, req ratingdomain.Request) (ratequotedomain.CommitResponse, error) {
	requestID, err := normalizeRequestID(req.RequestID)
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}
	req.RequestID = requestID
	scope.From(ctx).SetQuote(requestID, req.Mode.String())

	existing, err := s.repo.FindByRequestID(ctx, s.db, requestID)
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}
	if existing != nil {
		resp, err := s.load(ctx, s.db, existing)
		if err != nil {
			return ratequotedomain.CommitResponse{}, err
		}
		s.metrics.RecordCommit(ctx, existing.Mode, outcomeReplayed)
		return resp, nil
	}

	comp, err := s.engine.Compute(ctx, req)
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}
	if !comp.Resolved() {
		return ratequotedomain.CommitResponse{}, ratequotedomain.ErrContractNotResolved
	}

	codes, err := s.loadEdiCodes(ctx)
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}

	var resp ratequotedomain.CommitResponse
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		count, err := s.contractRepo.WithTrx(tx).Count(ctx, &contractdomain.Contract{ID: *comp.ContractID})
		if err != nil {
			return err
		}
		if count == 0 {
			return ratequotedomain.ErrInconsistentState
		}

		now := s.clock.Now()
		quote := &ratequotedomain.RateQuote{
			ID:           s.genID.Generate(),
			RequestID:    requestID,
			AccountID:    comp.AccountID,
			Mode:         comp.Mode.String(),
			CurrencyCode: s.currency,
			RateDate:     comp.ShipDate,
			CreatedAt:    now,
		}
		inserted, err := s.repo.InsertIfAbsent(ctx, tx, quote)
		if err != nil {
			return err
		}
		if !inserted {
			return errQuoteExists
		}

		result := &ratequotedomain.RateQuoteResult{
			ID:                s.genID.Generate(),
			RateQuoteID:       quote.ID,
			ProviderID:        comp.ProviderID,
			ContractID:        *comp.ContractID,
			ContractVersionID: *comp.ContractVersionID,
			Rank:              1,
			TotalAmount:       comp.Response.Total,
			Warnings:          datatypes.JSONSlice[string](nonNil(comp.Response.Warnings)),
			CreatedAt:         now,
		}
		if err := s.resultRepo.WithTrx(tx).Create(ctx, result); err != nil {
			return err
		}

		lines, err := s.buildLines(result.ID, comp.Response.Charges, codes)
		if err != nil {
			return err
		}
		if err := s.lineRepo.WithTrx(tx).BatchCreate(ctx, lines); err != nil {
			return err
		}

		resp = ratequotedomain.CommitResponse{
			RateQuoteID:       quote.ID,
			RateQuoteResultID: result.ID,
			RequestID:         quote.RequestID,
			Mode:              quote.Mode,
			CurrencyCode:      quote.CurrencyCode,
			RateDate:          quote.RateDate,
			Quote:             comp.Response,
		}
		return nil
	})
	if errors.Is(err, errQuoteExists) {
		existing, err := s.repo.FindByRequestID(ctx, s.db, requestID)
		if err != nil {
			return ratequotedomain.CommitResponse{}, err
		}
		if existing == nil {
			return ratequotedomain.CommitResponse{}, ratequotedomain.ErrInconsistentState
		}
		resp, err := s.load(ctx, s.db, existing)
		if err != nil {
			return ratequotedomain.CommitResponse{}, err
		}
		s.log.Info("rate quote commit lost insert race", zap.String("request_id", requestID))
		s.metrics.RecordCommit(ctx, existing.Mode, outcomeReplayed)
		return resp, nil
	}
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}

	s.log.Info("rate quote committed",
		zap.String("request_id", requestID),
		zap.String("rate_quote_id", resp.RateQuoteID.String()),
		zap.String("total", resp.Quote.Total.String()),
		zap.Int("charges", len(resp.Quote.Charges)),
		zap.Int("warnings", len(resp.Quote.Warnings)),
	)
	s.metrics.RecordCommit(ctx, comp.Mode.String(), outcomeCreated)
	return resp, nil
}

// Get returns a committed quote by request id.
func (s *Service) Get(ctx context.Context, requestID string) (ratequotedomain.CommitResponse, error) {
	id, err := uuid.Parse(strings.TrimSpace(requestID))
	if err != nil {
		return ratequotedomain.CommitResponse{}, ratequotedomain.ErrInvalidRequestID
	}
	quote, err := s.repo.FindByRequestID(ctx, s.db, id.String())
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}
	if quote == nil {
		return ratequotedomain.CommitResponse{}, ratequotedomain.ErrQuoteNotFound
	}
	resp, err := s.load(ctx, s.db, quote)
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}
	resp.Replayed = false
	return resp, nil
}

// load rebuilds the response from stored rows only. Reference data may have
// changed since the commit and is never consulted.
func (s *Service) load(ctx context.Context, db *gorm.DB, quote *ratequotedomain.RateQuote) (ratequotedomain.CommitResponse, error) {
	result, err := s.repo.FindResult(ctx, db, quote.ID)
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}
	if result == nil {
		return ratequotedomain.CommitResponse{}, ratequotedomain.ErrInconsistentState
	}
	lines, err := s.repo.ListLines(ctx, db, result.ID)
	if err != nil {
		return ratequotedomain.CommitResponse{}, err
	}

	charges := make([]ratingdomain.ChargeLine, 0, len(lines))
	for _, line := range lines {
		charge := ratingdomain.ChargeLine{
			Code:        line.Code(),
			Description: line.Description,
			Amount:      line.Amount,
			Kind:        kindFor(line.CanonicalChargeType),
		}
		if line.ApplyTo != nil {
			charge.ApplyTo = ratingdomain.ParseApplyTo(*line.ApplyTo)
		}
		if len(line.DetailJSON) > 0 {
			var detail map[string]any
			if err := json.Unmarshal(line.DetailJSON, &detail); err == nil {
				charge.Detail = detail
			}
		}
		charges = append(charges, charge)
	}

	return ratequotedomain.CommitResponse{
		RateQuoteID:       quote.ID,
		RateQuoteResultID: result.ID,
		RequestID:         quote.RequestID,
		Mode:              quote.Mode,
		CurrencyCode:      quote.CurrencyCode,
		RateDate:          quote.RateDate,
		Quote: ratingdomain.Response{
			QuoteID:  ratingservice.QuoteID(quote.RequestID),
			Total:    result.TotalAmount,
			Charges:  charges,
			Warnings: nonNil([]string(result.Warnings)),
		},
		Replayed: true,
	}, nil
}

type ediIndex struct {
	byAccessorial map[string]ratequotedomain.EdiChargeCode
	byCanonical   map[string]ratequotedomain.EdiChargeCode
}

func (s *Service) loadEdiCodes(ctx context.Context) (ediIndex, error) {
	index := ediIndex{
		byAccessorial: map[string]ratequotedomain.EdiChargeCode{},
		byCanonical:   map[string]ratequotedomain.EdiChargeCode{},
	}
	if s.standard == "" {
		return index, nil
	}
	rows, err := s.ediRepo.Find(ctx, &ratequotedomain.EdiChargeCode{Standard: s.standard},
		option.WithSortBy(option.QuerySortBy{Field: "id"}),
	)
	if err != nil {
		return index, err
	}
	// first row wins on duplicates
	for _, row := range rows {
		if row.DefaultAccessorialCode != nil {
			code := strings.ToUpper(strings.TrimSpace(*row.DefaultAccessorialCode))
			if _, ok := index.byAccessorial[code]; !ok {
				index.byAccessorial[code] = *row
			}
			continue
		}
		canonical := strings.ToUpper(strings.TrimSpace(row.CanonicalChargeType))
		if _, ok := index.byCanonical[canonical]; !ok {
			index.byCanonical[canonical] = *row
		}
	}
	return index, nil
}

func (s *Service) buildLines(resultID snowflake.ID, charges []ratingdomain.ChargeLine, codes ediIndex) ([]*ratequotedomain.RateQuoteChargeLine, error) {
	lines := make([]*ratequotedomain.RateQuoteChargeLine, 0, len(charges))
	for i, charge := range charges {
		line := &ratequotedomain.RateQuoteChargeLine{
			ID:                  s.genID.Generate(),
			RateQuoteResultID:   resultID,
			SequenceNo:          i + 1,
			CanonicalChargeType: canonicalFor(charge),
			Description:         charge.Description,
			Amount:              charge.Amount,
		}
		if charge.Kind == ratingdomain.ChargeKindAccessorial {
			code := charge.Code
			line.AccessorialCode = &code
		}
		if charge.ApplyTo != "" {
			applyTo := string(charge.ApplyTo)
			line.ApplyTo = &applyTo
		}
		if len(charge.Detail) > 0 {
			raw, err := json.Marshal(charge.Detail)
			if err != nil {
				return nil, err
			}
			line.DetailJSON = datatypes.JSON(raw)
		}

		edi, ok := codes.byAccessorial[strings.ToUpper(charge.Code)]
		if !ok || charge.Kind != ratingdomain.ChargeKindAccessorial {
			edi, ok = codes.byCanonical[line.CanonicalChargeType]
		}
		if ok {
			standard, code := edi.Standard, edi.Code
			line.EdiStandard = &standard
			line.EdiChargeCode = &code
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func normalizeRequestID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.NewString(), nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", ratequotedomain.ErrInvalidRequestID
	}
	return id.String(), nil
}

func canonicalFor(charge ratingdomain.ChargeLine) string {
	switch charge.Kind {
	case ratingdomain.ChargeKindLinehaul:
		return ratingdomain.CodeLinehaul
	case ratingdomain.ChargeKindDiscount:
		return ratingdomain.CodeDiscount
	case ratingdomain.ChargeKindMinimum:
		return ratingdomain.CodeMinimum
	case ratingdomain.ChargeKindAccessorial:
		return ratequotedomain.CanonicalAccessorial
	case ratingdomain.ChargeKindFuel:
		return ratingdomain.CodeFuel
	default:
		return strings.ToUpper(charge.Code)
	}
}

func kindFor(canonical string) ratingdomain.ChargeKind {
	switch canonical {
	case ratingdomain.CodeLinehaul:
		return ratingdomain.ChargeKindLinehaul
	case ratingdomain.CodeDiscount:
		return ratingdomain.ChargeKindDiscount
	case ratingdomain.CodeMinimum:
		return ratingdomain.ChargeKindMinimum
	case ratequotedomain.CanonicalAccessorial:
		return ratingdomain.ChargeKindAccessorial
	case ratingdomain.CodeFuel:
		return ratingdomain.ChargeKindFuel
	default:
		return ""
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
