package rating

import (
	"github.com/smallbiznis/freightrate/internal/rating/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rating.service",
	fx.Provide(service.NewPolicySource),
	fx.Provide(service.New),
)
