// internal/app/features/catalog/routes.go
package catalog

import (
	"github.com/dalemusser/bolola/internal/app/system/apikey"
	"github.com/go-chi/chi/v5"
)

// Mount registers the catalog endpoints on r.
func Mount(r chi.Router, h *Handler, guard *apikey.Guard) {
	r.Get("/categories", h.ServeCategories)

	r.Group(func(pr chi.Router) {
		pr.Use(guard.Require)
		pr.Post("/update-media", h.HandleUpdateMedia)
	})
}
