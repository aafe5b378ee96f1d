// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	catalogfeature "github.com/dalemusser/bolola/internal/app/features/catalog"
	chartfeature "github.com/dalemusser/bolola/internal/app/features/chart"
	healthfeature "github.com/dalemusser/bolola/internal/app/features/health"
	mediafeature "github.com/dalemusser/bolola/internal/app/features/media"
	migratefeature "github.com/dalemusser/bolola/internal/app/features/migrate"
	notificationsfeature "github.com/dalemusser/bolola/internal/app/features/notifications"
	usersfeature "github.com/dalemusser/bolola/internal/app/features/users"
	"github.com/dalemusser/bolola/internal/app/system/apikey"
	"github.com/dalemusser/bolola/internal/app/system/inputval"
	"github.com/dalemusser/bolola/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. All routes are flat JSON endpoints; the
// write endpoints share one API key guard and the favorites endpoints share
// one per-client limiter.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	val := inputval.New()
	guard := apikey.New(appCfg.APIKey, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if appCfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	}))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, deps.Notify.Configured(), logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static media and source trees
	r.Handle("/media/*", fileserver.Handler("/media", appCfg.MediaDir))
	r.Handle("/sources/*", fileserver.Handler("/sources", appCfg.SourcesDir))

	// Catalog and media editing
	catalogfeature.Mount(r, catalogfeature.NewHandler(db, val, logger), guard)
	mediafeature.Mount(r, mediafeature.NewHandler(deps.MediaStorage, val, logger), guard)

	// Top chart
	chartfeature.Mount(r, chartfeature.NewHandler(db, val, logger), guard)

	// Users and favorites
	favoritesLimit := ratelimit.Middleware(deps.FavoritesLimiter, logger)
	usersfeature.Mount(r, usersfeature.NewHandler(db, val, logger), guard, favoritesLimit)

	// Push notifications
	notificationsfeature.Mount(r, notificationsfeature.NewHandler(deps.Notify, logger), guard)

	// Cross-environment migration
	var runner migratefeature.Runner
	if deps.Migrator != nil {
		runner = deps.Migrator
	}
	migratefeature.Mount(r, migratefeature.NewHandler(db, runner, logger), guard)

	return r, nil
}
