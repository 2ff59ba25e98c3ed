package migration

import (
	"github.com/smallbiznis/freightrate/internal/config"
	"github.com/smallbiznis/freightrate/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(Apply),
)

// Apply brings the schema up to date. Postgres uses the versioned SQL
// migrations; other dialects fall back to AutoMigrate when enabled.
func Apply(conn *gorm.DB, cfg config.Config, log *zap.Logger) error {
	if db.NormalizeDialect(cfg.DBType) == db.DialectPostgres {
		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}
		if err := RunMigrations(sqlDB); err != nil {
			return err
		}
		log.Info("schema migrations applied", zap.String("dialect", db.DialectPostgres))
		return nil
	}

	if !cfg.DBAutoMigrate {
		log.Warn("auto migrate disabled; schema left unchanged", zap.String("dialect", cfg.DBType))
		return nil
	}
	if err := conn.AutoMigrate(Models()...); err != nil {
		return err
	}
	log.Info("schema auto-migrated", zap.String("dialect", cfg.DBType))
	return nil
}
