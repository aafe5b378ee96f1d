package catalog

import (
	"net/http"

	"github.com/dalemusser/bolola/internal/app/store/queries/catalogtree"
	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type categoriesResponse struct {
	Categories []catalogtree.Category `json:"categories"`
}

// ServeCategories handles GET /categories.
func (h *Handler) ServeCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.Log, "catalog aggregation")
	defer cancel()

	tree, err := catalogtree.Build(ctx, catalogtree.NewMongoSource(h.DB), 0)
	if err != nil {
		h.Log.Error("catalog aggregation failed", zap.Error(err))
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}
	jsonio.OK(w, categoriesResponse{Categories: tree}, h.Log)
}
