package migration

import (
	"github.com/colorworks/lackwerk/internal/config"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Module applies the embedded schema migrations. Only the postgres driver
// is wired; sqlite is a test-and-development convenience whose tables are
// created by the test setup itself.
var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if cfg.DBType != "postgres" {
			return nil
		}

		sqlDB, err := conn.DB()
		if err != nil {
			return err
		}

		return RunMigrations(sqlDB)
	}),
)
