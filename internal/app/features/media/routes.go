package media

import (
	"github.com/dalemusser/bolola/internal/app/system/apikey"
	"github.com/go-chi/chi/v5"
)

// Mount registers POST /upload on r behind the API key.
func Mount(r chi.Router, h *Handler, guard *apikey.Guard) {
	r.With(guard.Require).Post("/upload", h.HandleUpload)
}
