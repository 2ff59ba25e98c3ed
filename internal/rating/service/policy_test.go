package service_test

import (
	"testing"

	"github.com/smallbiznis/freightrate/internal/config"
	ratingdomain "github.com/smallbiznis/freightrate/internal/rating/domain"
	"github.com/smallbiznis/freightrate/internal/rating/service"
	"github.com/stretchr/testify/assert"
)

func TestNewPolicySource(t *testing.T) {
	assert.Equal(t, ratingdomain.DefaultPolicy(), service.NewPolicySource(nil).Current())

	holder := config.NewStaticPolicyHolder(config.RatingPolicy{
		LaneIneligible: config.LaneIneligibleReject,
		CalcFallback:   config.CalcFallbackFlat,
	})
	assert.Equal(t, ratingdomain.Policy{
		LaneIneligible: ratingdomain.LanePolicyReject,
		CalcFallback:   ratingdomain.CalcFallbackFlat,
	}, service.NewPolicySource(holder).Current())

	holder = config.NewStaticPolicyHolder(config.DefaultRatingPolicy())
	assert.Equal(t, ratingdomain.DefaultPolicy(), service.NewPolicySource(holder).Current())
}
