// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/bolola/internal/app/system/dbmigrate"
	"github.com/dalemusser/bolola/internal/app/system/indexes"
	"github.com/dalemusser/bolola/internal/app/system/notify"
	"github.com/dalemusser/bolola/internal/app/system/ratelimit"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"github.com/dalemusser/bolola/internal/app/system/validators"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// ConnectDB opens the primary MongoDB client (ConnectWithPool pings it) and
// builds the services that hang off it. A failure here aborts startup.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	timeouts.Configure(timeouts.Config{
		Short:  appCfg.TimeoutShort,
		Medium: appCfg.TimeoutMedium,
		Long:   appCfg.TimeoutLong,
		Batch:  appCfg.TimeoutBatch,
	})

	pool := wafflemongo.DefaultPoolConfig()
	if appCfg.MongoMaxPoolSize > 0 {
		pool.MaxPoolSize = appCfg.MongoMaxPoolSize
	}
	if appCfg.MongoMinPoolSize > 0 {
		pool.MinPoolSize = appCfg.MongoMinPoolSize
	}

	client, err := wafflemongo.ConnectWithPool(ctx, appCfg.MongoURI, appCfg.MongoDatabase, pool)
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	media, err := storage.NewLocal(storage.LocalConfig{BasePath: appCfg.MediaDir, BaseURL: "/media"})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("media storage: %w", err)
	}

	deps := DBDeps{
		MongoClient:      client,
		MongoDatabase:    client.Database(appCfg.MongoDatabase),
		MediaStorage:     media,
		Notify:           newDispatcher(ctx, appCfg, logger),
		FavoritesLimiter: ratelimit.New(appCfg.FavoritesRatePerMinute, appCfg.FavoritesRateBurst, favoritesIdle),
	}
	if appCfg.MigrationEnabled() {
		deps.Migrator = dbmigrate.New(appCfg.migrateConfig(), dbmigrate.MongoDial, logger)
	}
	return deps, nil
}

// favoritesIdle is how long an idle client's bucket is kept.
const favoritesIdle = 10 * time.Minute

// newDispatcher returns a Dispatcher backed by FCM when a credentials file
// is configured and loads. Otherwise push is disabled and /send-notification
// answers "Firebase Admin not initialized"; the rest of the API still starts.
func newDispatcher(ctx context.Context, appCfg AppConfig, logger *zap.Logger) *notify.Dispatcher {
	if appCfg.FCMCredentialsFile == "" {
		logger.Warn("fcm_credentials_file not set; push notifications disabled")
		return notify.New(nil, logger)
	}
	client, err := notify.NewFCMClient(ctx, appCfg.FCMCredentialsFile)
	if err != nil {
		logger.Error("Firebase messaging init failed; push notifications disabled", zap.Error(err))
		return notify.New(nil, logger)
	}
	logger.Info("Firebase messaging ready")
	return notify.New(client, logger)
}

// EnsureSchema applies collection validators and reconciles indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	sctx, cancel := context.WithTimeout(ctx, timeouts.Batch())
	defer cancel()

	err := errors.Join(
		validators.EnsureAll(sctx, deps.MongoDatabase),
		indexes.EnsureAll(sctx, deps.MongoDatabase),
	)
	if err != nil {
		logger.Error("schema setup failed", zap.Error(err))
		return err
	}
	logger.Info("schema ready")
	return nil
}
