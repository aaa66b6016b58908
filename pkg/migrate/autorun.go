package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"

	"github.com/indianleto/storefront-backend/pkg/config"
	"github.com/indianleto/storefront-backend/pkg/db"
	"github.com/indianleto/storefront-backend/pkg/logger"
)

// autoApplyReason returns why the api should migrate on boot, or "" when it
// should leave the schema to cmd/migrate.
func autoApplyReason(cfg *config.Config) string {
	switch {
	case cfg.DB.Driver == config.DriverSQLite:
		return "sqlite"
	case cfg.App.IsDev() && cfg.FeatureFlags.AutoMigrate:
		return "dev_auto_migrate"
	default:
		return ""
	}
}

// AutoApply brings a local or dev database up to the embedded schema on boot.
// Production postgres is migrated out of band.
func AutoApply(ctx context.Context, cfg *config.Config, logg *logger.Logger, client *db.Client) error {
	if client == nil {
		return nil
	}
	reason := autoApplyReason(cfg)
	if reason == "" {
		return nil
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}

	ctx = logg.WithFields(ctx, map[string]any{"driver": cfg.DB.Driver, "reason": reason})
	version, applied, err := applyEmbedded(ctx, sqlDB, cfg.DB.Driver)
	if err != nil {
		return err
	}
	for _, res := range applied {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"migration":   res.Source.Path,
			"duration_ms": res.Duration.Milliseconds(),
		}), "migrate.applied")
	}
	logg.Info(logg.WithFields(ctx, map[string]any{"version": version, "applied": len(applied)}), "migrate.schema_ready")
	return nil
}

func applyEmbedded(ctx context.Context, sqlDB *sql.DB, driver string) (int64, []*goose.MigrationResult, error) {
	provider, err := newProvider(sqlDB, driver, "")
	if err != nil {
		return 0, nil, err
	}
	applied, err := provider.Up(ctx)
	if err != nil {
		return 0, applied, fmt.Errorf("goose up: %w", err)
	}
	version, err := provider.GetDBVersion(ctx)
	if err != nil {
		return 0, applied, fmt.Errorf("goose version: %w", err)
	}
	return version, applied, nil
}
