package chart

import (
	"github.com/dalemusser/bolola/internal/app/system/apikey"
	"github.com/go-chi/chi/v5"
)

// Mount registers the chart endpoints on r.
func Mount(r chi.Router, h *Handler, guard *apikey.Guard) {
	r.Get("/top-chart", h.ServeTopChart)

	r.Group(func(pr chi.Router) {
		pr.Use(guard.Require)
		pr.Post("/save-chart", h.HandleSaveChart)
		pr.Post("/update-chart-item", h.HandleUpdateChartItem)
	})
}
