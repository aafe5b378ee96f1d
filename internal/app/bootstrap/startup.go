// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"fmt"
	"os"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs after DB connections and schema setup, before the HTTP
// handler is built. media_dir is created by the media store; sources_dir
// is created here so /sources serves an empty tree rather than failing.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if err := os.MkdirAll(appCfg.SourcesDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", appCfg.SourcesDir, err)
	}

	logger.Info("bolola services",
		zap.Bool("push", deps.Notify.Configured()),
		zap.Bool("migration", deps.Migrator != nil),
		zap.String("media_dir", appCfg.MediaDir),
		zap.String("sources_dir", appCfg.SourcesDir))
	if deps.Migrator != nil {
		logger.Info("migration configured", zap.String("direction", deps.Migrator.Config().Direction()))
	}
	return nil
}
