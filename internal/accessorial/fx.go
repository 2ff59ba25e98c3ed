package accessorial

import (
	"github.com/smallbiznis/freightrate/internal/accessorial/repository"
	"github.com/smallbiznis/freightrate/internal/accessorial/service"
	"go.uber.org/fx"
)

var Module = fx.Module("accessorial.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
