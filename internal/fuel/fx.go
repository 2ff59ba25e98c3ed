package fuel

import (
	"github.com/smallbiznis/freightrate/internal/fuel/repository"
	"github.com/smallbiznis/freightrate/internal/fuel/service"
	"go.uber.org/fx"
)

var Module = fx.Module("fuel.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
