// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/bolola/internal/app/system/dbmigrate"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (BOLOLA_*), configuration
// files, or command-line flags, loaded in LoadConfig. Framework settings
// such as ports, TLS and log level live in WAFFLE's CoreConfig.
type AppConfig struct {
	// MongoDB connection configuration
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Shared secret for write endpoints (X-API-Key header or apikey query)
	APIKey string

	// Static trees served under /media and /sources
	MediaDir   string
	SourcesDir string

	// Service account JSON for Firebase Cloud Messaging. Empty disables push.
	FCMCredentialsFile string

	// Cross-environment migration. Both ends must be set for /migrate-db.
	MigrateSource    dbmigrate.Target
	MigrateTarget    dbmigrate.Target
	MigrateBatchSize int

	// Per-client limits on the favorites endpoints
	FavoritesRatePerMinute int
	FavoritesRateBurst     int

	// Take the client address from X-Forwarded-For/X-Real-IP. Only enable
	// behind a proxy that overwrites those headers.
	TrustProxy bool

	// Store call budgets
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
	TimeoutBatch  time.Duration
}

// MigrationEnabled reports whether both migration endpoints are configured.
func (c AppConfig) MigrationEnabled() bool {
	return c.MigrateSource.URI != "" && c.MigrateSource.Database != "" &&
		c.MigrateTarget.URI != "" && c.MigrateTarget.Database != ""
}

func (c AppConfig) migrateConfig() dbmigrate.Config {
	return dbmigrate.Config{
		Source:    c.MigrateSource,
		Target:    c.MigrateTarget,
		BatchSize: c.MigrateBatchSize,
	}
}
