package lane

import (
	"github.com/smallbiznis/freightrate/internal/lane/repository"
	"github.com/smallbiznis/freightrate/internal/lane/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lane.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
