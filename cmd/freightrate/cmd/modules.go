package cmd

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/freightrate/internal/accessorial"
	"github.com/smallbiznis/freightrate/internal/cache"
	"github.com/smallbiznis/freightrate/internal/clock"
	"github.com/smallbiznis/freightrate/internal/config"
	"github.com/smallbiznis/freightrate/internal/contract"
	"github.com/smallbiznis/freightrate/internal/discount"
	"github.com/smallbiznis/freightrate/internal/fuel"
	"github.com/smallbiznis/freightrate/internal/geography"
	"github.com/smallbiznis/freightrate/internal/lane"
	"github.com/smallbiznis/freightrate/internal/linehaul"
	"github.com/smallbiznis/freightrate/internal/observability"
	"github.com/smallbiznis/freightrate/internal/quotedoc"
	"github.com/smallbiznis/freightrate/internal/ratequote"
	"github.com/smallbiznis/freightrate/internal/rating"
	"github.com/smallbiznis/freightrate/pkg/db"
	"go.uber.org/fx"
)

// infrastructure is shared by every command that touches the database.
func infrastructure() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		cache.Module,
	)
}

// domains wires the rating pipeline and the commit store.
func domains() fx.Option {
	return fx.Options(
		contract.Module,
		geography.Module,
		lane.Module,
		discount.Module,
		linehaul.Module,
		accessorial.Module,
		fuel.Module,
		rating.Module,
		ratequote.Module,
		quotedoc.Module,
	)
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
