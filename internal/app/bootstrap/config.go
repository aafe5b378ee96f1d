// internal/app/bootstrap/config.go
package bootstrap

import (
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/bolola/internal/app/system/dbmigrate"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for bolola.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, api_key, etc.
//   - Environment variables: BOLOLA_MONGO_URI, BOLOLA_API_KEY, etc.
//   - Command-line flags: --mongo_uri, --api_key, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "bolola", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "api_key", Default: "", Desc: "Shared API key required by write endpoints"},

	{Name: "media_dir", Default: "./media", Desc: "Directory served at /media and written by /upload"},
	{Name: "sources_dir", Default: "./sources", Desc: "Directory served at /sources"},

	{Name: "fcm_credentials_file", Default: "", Desc: "Firebase service account JSON (blank disables push)"},

	// Cross-environment migration
	{Name: "migrate_source_uri", Default: "", Desc: "MongoDB URI migrated from"},
	{Name: "migrate_source_database", Default: "", Desc: "Database migrated from"},
	{Name: "migrate_target_uri", Default: "", Desc: "MongoDB URI migrated into (contents are replaced)"},
	{Name: "migrate_target_database", Default: "", Desc: "Database migrated into"},
	{Name: "migrate_batch_size", Default: dbmigrate.DefaultBatchSize, Desc: "Documents per insert batch during migration"},

	// Favorites rate limiting
	{Name: "favorites_rate_per_minute", Default: 60, Desc: "Favorites requests allowed per client per minute"},
	{Name: "favorites_rate_burst", Default: 10, Desc: "Favorites burst allowance per client"},
	{Name: "trust_proxy", Default: false, Desc: "Read the client address from X-Forwarded-For (only behind a proxy that overwrites it)"},

	// Store call budgets
	{Name: "timeout_short", Default: "5s", Desc: "Budget for single-document store calls"},
	{Name: "timeout_medium", Default: "15s", Desc: "Budget for list and multi-document store calls"},
	{Name: "timeout_long", Default: "30s", Desc: "Budget for catalog aggregation and bulk writes"},
	{Name: "timeout_batch", Default: "2m", Desc: "Budget for index and validator setup at startup"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE merges .env files, config files, BOLOLA_* environment variables
// and command-line flags with precedence flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "BOLOLA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		APIKey: appValues.String("api_key"),

		MediaDir:   appValues.String("media_dir"),
		SourcesDir: appValues.String("sources_dir"),

		FCMCredentialsFile: appValues.String("fcm_credentials_file"),

		MigrateSource: dbmigrate.Target{
			URI:      appValues.String("migrate_source_uri"),
			Database: appValues.String("migrate_source_database"),
		},
		MigrateTarget: dbmigrate.Target{
			URI:      appValues.String("migrate_target_uri"),
			Database: appValues.String("migrate_target_database"),
		},
		MigrateBatchSize: appValues.Int("migrate_batch_size"),

		FavoritesRatePerMinute: appValues.Int("favorites_rate_per_minute"),
		FavoritesRateBurst:     appValues.Int("favorites_rate_burst"),
		TrustProxy:             appValues.Bool("trust_proxy"),

		TimeoutShort:  appValues.Duration("timeout_short", 5*time.Second),
		TimeoutMedium: appValues.Duration("timeout_medium", 15*time.Second),
		TimeoutLong:   appValues.Duration("timeout_long", 30*time.Second),
		TimeoutBatch:  appValues.Duration("timeout_batch", 2*time.Minute),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The MongoDB URIs are checked for format before any connection is made.
// Migration settings are optional, but a half-configured pair is an error.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	if appCfg.APIKey == "" {
		return errors.New("api_key must be set")
	}
	if appCfg.FavoritesRatePerMinute <= 0 {
		return errors.New("favorites_rate_per_minute must be positive")
	}

	if appCfg.MigrationEnabled() {
		for _, t := range []dbmigrate.Target{appCfg.MigrateSource, appCfg.MigrateTarget} {
			if err := wafflemongo.ValidateURI(t.URI); err != nil {
				return fmt.Errorf("invalid migration URI for %s: %w", t.Database, err)
			}
		}
		if err := appCfg.migrateConfig().Validate(); err != nil {
			return fmt.Errorf("migration config: %w", err)
		}
	} else if appCfg.MigrateSource != (dbmigrate.Target{}) || appCfg.MigrateTarget != (dbmigrate.Target{}) {
		return errors.New("migration requires migrate_source_uri, migrate_source_database, migrate_target_uri and migrate_target_database")
	}

	return nil
}
