package domain

import (
	"context"
	"errors"
)

//go:generate mockgen -source=service.go -destination=mock/mock_service.go -package=mock

type Service interface {
	Quote(context.Context, Request) (Response, error)
	Compute(context.Context, Request) (Computation, error)
}

var (
	ErrInvalidMode     = errors.New("invalid_mode")
	ErrInvalidShipDate = errors.New("invalid_ship_date")
	ErrMissingLines    = errors.New("missing_lines")
	ErrLaneNotEligible = errors.New("lane_not_eligible")
)

// LanePolicy decides what an ineligible lane does to a quote.
type LanePolicy string

const (
	LanePolicyWarn   LanePolicy = "warn"
	LanePolicyReject LanePolicy = "reject"
)

// CalcFallback decides how a stored calc type outside the known set is priced.
type CalcFallback string

const (
	CalcFallbackSkip CalcFallback = "skip"
	CalcFallbackFlat CalcFallback = "flat"
)

type Policy struct {
	LaneIneligible LanePolicy
	CalcFallback   CalcFallback
}

func DefaultPolicy() Policy {
	return Policy{LaneIneligible: LanePolicyWarn, CalcFallback: CalcFallbackSkip}
}

// PolicySource yields the rating policy in force for a computation.
type PolicySource interface {
	Current() Policy
}

// StaticPolicy is a PolicySource that never changes.
type StaticPolicy Policy

func (p StaticPolicy) Current() Policy { return Policy(p) }
