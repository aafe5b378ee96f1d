// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/bolola/internal/app/system/dbmigrate"
	"github.com/dalemusser/bolola/internal/app/system/notify"
	"github.com/dalemusser/bolola/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the back-end dependencies built once at startup and handed
// to handlers.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// MediaStorage is rooted at media_dir; /upload writes through it.
	MediaStorage storage.Store

	// Notify is always non-nil; it reports unconfigured when no FCM
	// credentials were given.
	Notify *notify.Dispatcher

	// Migrator is nil unless both migration endpoints are configured.
	Migrator *dbmigrate.Migrator

	FavoritesLimiter *ratelimit.Limiter
}
