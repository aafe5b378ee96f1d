package chart

import (
	"net/http"

	chartstore "github.com/dalemusser/bolola/internal/app/store/chartitems"
	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"github.com/dalemusser/bolola/internal/domain/models"
	"go.uber.org/zap"
)

// chartItemPayload is one entry as clients send it.
type chartItemPayload struct {
	Alias           string   `json:"alias" validate:"required"`
	Name            string   `json:"name" validate:"required"`
	Ordering        int      `json:"ordering"`
	ShareCount      int      `json:"shareCount"`
	AudioURL        string   `json:"audioUrl"`
	VideoURL        string   `json:"videoUrl"`
	SourceURL       string   `json:"sourceUrl"`
	ImageURL        string   `json:"imageUrl"`
	IsFavorite      bool     `json:"isFavorite"`
	Keywords        []string `json:"keywords"`
	RelatedKeywords []string `json:"relatedKeywords"`
	GroupAlias      string   `json:"groupAlias"`
	CategoryAlias   string   `json:"categoryAlias"`
}

func (p chartItemPayload) model() models.ChartItem {
	return models.ChartItem{
		Alias:           p.Alias,
		Name:            p.Name,
		Ordering:        p.Ordering,
		ShareCount:      p.ShareCount,
		AudioURL:        p.AudioURL,
		VideoURL:        p.VideoURL,
		SourceURL:       p.SourceURL,
		ImageURL:        p.ImageURL,
		IsFavorite:      p.IsFavorite,
		Keywords:        p.Keywords,
		RelatedKeywords: p.RelatedKeywords,
		GroupAlias:      p.GroupAlias,
		CategoryAlias:   p.CategoryAlias,
	}
}

type saveChartRequest struct {
	Items []chartItemPayload `json:"items" validate:"required,dive"`
}

type updateChartItemRequest struct {
	Item *chartItemPayload `json:"item" validate:"required"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type chartItemResponse struct {
	Message string           `json:"message"`
	Item    models.ChartItem `json:"item"`
}

type topChartResponse struct {
	Items []models.ChartItem `json:"items"`
}

// HandleSaveChart handles POST /save-chart. Every entry is validated before
// anything is written. Entries are upserted by alias in order; chart items
// not named in the request are kept.
func (h *Handler) HandleSaveChart(w http.ResponseWriter, r *http.Request) {
	var req saveChartRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}
	if err := h.Val.StructMessage(req, "Request body must have an items array"); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}

	items := make([]models.ChartItem, 0, len(req.Items))
	for _, p := range req.Items {
		items = append(items, p.model())
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "save chart")
	defer cancel()

	n, err := chartstore.New(h.DB).UpsertMany(ctx, items)
	if err != nil {
		h.Log.Error("save chart failed", zap.Int("written", n), zap.Int("requested", len(items)), zap.Error(err))
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}

	h.Log.Info("top chart saved", zap.Int("items", n))
	jsonio.OK(w, messageResponse{Message: "Top chart items saved successfully"}, h.Log)
}

// HandleUpdateChartItem handles POST /update-chart-item.
func (h *Handler) HandleUpdateChartItem(w http.ResponseWriter, r *http.Request) {
	var req updateChartItemRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}
	if err := h.Val.StructMessage(req, "Request body must have an item with alias"); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "update chart item")
	defer cancel()

	stored, err := chartstore.New(h.DB).Upsert(ctx, req.Item.model())
	if err != nil {
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}

	jsonio.OK(w, chartItemResponse{Message: "Top chart item updated/added successfully", Item: stored}, h.Log)
}

// ServeTopChart handles GET /top-chart.
func (h *Handler) ServeTopChart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "top chart")
	defer cancel()

	items, err := chartstore.New(h.DB).List(ctx)
	if err != nil {
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}
	jsonio.OK(w, topChartResponse{Items: items}, h.Log)
}
