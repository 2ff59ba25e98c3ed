package service

import (
	"github.com/smallbiznis/freightrate/internal/config"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
)

type holderPolicy struct {
	holder *config.PolicyHolder
}

// NewPolicySource exposes the hot-reloaded policy file to the rating steps.
func NewPolicySource(holder *config.PolicyHolder) ratingdomain.PolicySource {
	if holder == nil {
		return ratingdomain.StaticPolicy(ratingdomain.DefaultPolicy())
	}
	return holderPolicy{holder: holder}
}

func (p holderPolicy) Current() ratingdomain.Policy {
	current := p.holder.Get()
	policy := ratingdomain.DefaultPolicy()
	if current.LaneIneligible == config.LaneIneligibleReject {
		policy.LaneIneligible = ratingdomain.LanePolicyReject
	}
	if current.CalcFallback == config.CalcFallbackFlat {
		policy.CalcFallback = ratingdomain.CalcFallbackFlat
	}
	return policy
}
