package ratequote

import (
	"github.com/smallbiznis/freightrate/internal/ratequote/repository"
	"github.com/smallbiznis/freightrate/internal/ratequote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ratequote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
