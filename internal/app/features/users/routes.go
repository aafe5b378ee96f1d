// internal/app/features/users/routes.go
package users

import (
	"net/http"

	"github.com/dalemusser/bolola/internal/app/system/apikey"
	"github.com/go-chi/chi/v5"
)

// Mount registers the user directory and favorites endpoints on r.
// favoritesLimit wraps the favorites write endpoints, which do not take
// the API key.
func Mount(r chi.Router, h *Handler, guard *apikey.Guard, favoritesLimit func(http.Handler) http.Handler) {
	r.Get("/users", h.ServeUsers)
	// static segment wins over {firebaseUid} in chi
	r.Get("/user/favorites", h.ServeFavorites)
	r.Get("/user/{firebaseUid}", h.ServeUser)

	r.Group(func(pr chi.Router) {
		pr.Use(favoritesLimit)
		pr.Post("/user/{firebaseUid}/favorites/add", h.HandleAddFavorite)
		pr.Post("/user/{firebaseUid}/favorites/remove", h.HandleRemoveFavorite)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(guard.Require)
		pr.Post("/create-user", h.HandleCreateUser)
		pr.Post("/update-user", h.HandleUpdateUser)
	})
}
