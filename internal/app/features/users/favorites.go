package users

import (
	"net/http"

	itemstore "github.com/dalemusser/bolola/internal/app/store/items"
	userstore "github.com/dalemusser/bolola/internal/app/store/users"
	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"github.com/dalemusser/bolola/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// favoriteRequest is the media item being (un)favorited; only its alias
// is used.
type favoriteRequest struct {
	Alias string `json:"alias" validate:"required"`
}

type favoriteAddedResponse struct {
	Message   string       `json:"message"`
	User      *models.User `json:"user"`
	AddedItem string       `json:"addedItem"`
}

type favoriteRemovedResponse struct {
	Message     string       `json:"message"`
	User        *models.User `json:"user"`
	RemovedItem string       `json:"removedItem"`
}

type favoritesResponse struct {
	Favorites []string      `json:"favorites"`
	Items     []models.Item `json:"items"`
}

const errFavoriteInput = "Firebase UID and MediaItem with alias are required"

func (h *Handler) decodeFavorite(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	uid := chi.URLParam(r, "firebaseUid")
	var req favoriteRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		jsonio.Error(w, err, h.Log)
		return "", "", false
	}
	if uid == "" {
		jsonio.Error(w, apperr.Validation(errFavoriteInput), h.Log)
		return "", "", false
	}
	if err := h.Val.StructMessage(req, errFavoriteInput); err != nil {
		jsonio.Error(w, err, h.Log)
		return "", "", false
	}
	return uid, req.Alias, true
}

// HandleAddFavorite handles POST /user/{firebaseUid}/favorites/add. The
// item must exist; adding an alias twice keeps one occurrence.
func (h *Handler) HandleAddFavorite(w http.ResponseWriter, r *http.Request) {
	uid, alias, ok := h.decodeFavorite(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "add favorite")
	defer cancel()

	exists, err := itemstore.New(h.DB).Exists(ctx, alias)
	if err != nil {
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}
	if !exists {
		jsonio.Error(w, apperr.NotFound("Item not found"), h.Log)
		return
	}

	u, err := userstore.New(h.DB).AddFavorite(ctx, uid, alias)
	if err != nil {
		h.writeUserErr(w, err)
		return
	}

	h.Log.Debug("favorite added", zap.String("firebase_uid", uid), zap.String("alias", alias))
	jsonio.OK(w, favoriteAddedResponse{Message: "Item added to favorites", User: u, AddedItem: alias}, h.Log)
}

// HandleRemoveFavorite handles POST /user/{firebaseUid}/favorites/remove.
// Removing an alias that was never added succeeds.
func (h *Handler) HandleRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	uid, alias, ok := h.decodeFavorite(w, r)
	if !ok {
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "remove favorite")
	defer cancel()

	u, err := userstore.New(h.DB).RemoveFavorite(ctx, uid, alias)
	if err != nil {
		h.writeUserErr(w, err)
		return
	}

	h.Log.Debug("favorite removed", zap.String("firebase_uid", uid), zap.String("alias", alias))
	jsonio.OK(w, favoriteRemovedResponse{Message: "Item removed from favorites", User: u, RemovedItem: alias}, h.Log)
}

// ServeFavorites handles GET /user/favorites?firebaseUid=. Favorites whose
// item no longer exists are left out of items.
func (h *Handler) ServeFavorites(w http.ResponseWriter, r *http.Request) {
	uid := r.URL.Query().Get("firebaseUid")
	if uid == "" {
		jsonio.Error(w, apperr.Validation("Firebase UID is required"), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "get favorites")
	defer cancel()

	u, err := userstore.New(h.DB).GetByUID(ctx, uid)
	if err != nil {
		h.writeUserErr(w, err)
		return
	}

	favorites := u.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	items, err := itemstore.New(h.DB).ByAliases(ctx, favorites)
	if err != nil {
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}
	jsonio.OK(w, favoritesResponse{Favorites: favorites, Items: items}, h.Log)
}
