package geography

import (
	"github.com/smallbiznis/freightrate/internal/geography/repository"
	"github.com/smallbiznis/freightrate/internal/geography/service"
	"go.uber.org/fx"
)

var Module = fx.Module("geography.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
