package linehaul

import (
	"github.com/smallbiznis/freightrate/internal/linehaul/repository"
	"github.com/smallbiznis/freightrate/internal/linehaul/service"
	"go.uber.org/fx"
)

var Module = fx.Module("linehaul.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
