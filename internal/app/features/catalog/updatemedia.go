package catalog

import (
	"errors"
	"net/http"

	itemstore "github.com/dalemusser/bolola/internal/app/store/items"
	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"github.com/dalemusser/bolola/internal/domain/models"
	"go.uber.org/zap"
)

// updateMediaRequest is an Item keyed by alias. Absent fields are left as
// they are.
type updateMediaRequest struct {
	Alias           string    `json:"alias" validate:"required"`
	Name            *string   `json:"name"`
	Ordering        *int      `json:"ordering"`
	ShareCount      *int      `json:"shareCount"`
	AudioURL        *string   `json:"audioUrl"`
	VideoURL        *string   `json:"videoUrl"`
	SourceURL       *string   `json:"sourceUrl"`
	ImageURL        *string   `json:"imageUrl"`
	IsFavorite      *bool     `json:"isFavorite"`
	Keywords        *[]string `json:"keywords"`
	RelatedKeywords *[]string `json:"relatedKeywords"`
	GroupAlias      *string   `json:"groupAlias"`
	CategoryAlias   *string   `json:"categoryAlias"`
}

func (req updateMediaRequest) patch() itemstore.Patch {
	return itemstore.Patch{
		Name:            req.Name,
		Ordering:        req.Ordering,
		ShareCount:      req.ShareCount,
		AudioURL:        req.AudioURL,
		VideoURL:        req.VideoURL,
		SourceURL:       req.SourceURL,
		ImageURL:        req.ImageURL,
		IsFavorite:      req.IsFavorite,
		Keywords:        req.Keywords,
		RelatedKeywords: req.RelatedKeywords,
		GroupAlias:      req.GroupAlias,
		CategoryAlias:   req.CategoryAlias,
	}
}

type updateMediaResponse struct {
	Message string       `json:"message"`
	Item    *models.Item `json:"item"`
}

// HandleUpdateMedia handles POST /update-media.
func (h *Handler) HandleUpdateMedia(w http.ResponseWriter, r *http.Request) {
	var req updateMediaRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}
	if err := h.Val.StructMessage(req, "Missing item or item.alias"); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update media")
	defer cancel()

	item, err := itemstore.New(h.DB).Update(ctx, req.Alias, req.patch())
	if err != nil {
		if errors.Is(err, itemstore.ErrNotFound) {
			jsonio.Error(w, apperr.NotFound("Item not found"), h.Log)
			return
		}
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}

	h.Log.Info("media item updated", zap.String("alias", req.Alias))
	jsonio.OK(w, updateMediaResponse{Message: "Item updated successfully", Item: item}, h.Log)
}
