package chart_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/bolola/internal/app/features/chart"
	"github.com/dalemusser/bolola/internal/app/system/apikey"
	"github.com/dalemusser/bolola/internal/app/system/inputval"
	"github.com/dalemusser/bolola/internal/domain/models"
	"github.com/dalemusser/bolola/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	r := chi.NewRouter()
	chart.Mount(r, chart.NewHandler(db, inputval.New(), logger), apikey.New(testutil.TestAPIKey, logger))
	return r, testutil.NewFixtures(t, db)
}

type topChart struct {
	Items []models.ChartItem `json:"items"`
}

func getTopChart(t *testing.T, router http.Handler) []models.ChartItem {
	t.Helper()
	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/top-chart"))
	rec.AssertStatus(t, http.StatusOK)
	var body topChart
	rec.DecodeJSON(t, &body)
	return body.Items
}

func aliases(items []models.ChartItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Alias)
	}
	return out
}

func TestSaveChart_MergesWithExisting(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// An alias absent from the request survives the save.
	fixtures.CreateChartItem(ctx, "stale", 10)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/save-chart", map[string]any{
		"items": []map[string]any{
			{"alias": "two", "name": "Two", "ordering": 2},
			{"alias": "one", "name": "One", "ordering": 1},
		},
	})))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, "Top chart items saved successfully")

	assert.Equal(t, []string{"one", "two", "stale"}, aliases(getTopChart(t, router)))
}

func TestSaveChart_ValidatesBeforeWriting(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/save-chart", map[string]any{
		"items": []map[string]any{
			{"alias": "ok", "name": "Fine"},
			{"name": "No alias"},
		},
	})))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "items[1].alias")

	n, err := fixtures.DB().Collection(models.ChartItemsCollection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n, "nothing should be written when any entry is invalid")
}

func TestSaveChart_RequiresItemsArray(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/save-chart", map[string]any{})))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertContains(t, "Request body must have an items array")
}

func TestUpdateChartItem_UpsertTwice(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	for _, name := range []string{"First", "Second"} {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/update-chart-item", map[string]any{
			"item": map[string]any{"alias": "hit", "name": name, "ordering": 1},
		})))
		rec.AssertStatus(t, http.StatusOK)

		var body struct {
			Message string           `json:"message"`
			Item    models.ChartItem `json:"item"`
		}
		rec.DecodeJSON(t, &body)
		assert.Equal(t, name, body.Item.Name)
	}

	n, err := fixtures.DB().Collection(models.ChartItemsCollection).CountDocuments(ctx, bson.M{"alias": "hit"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	items := getTopChart(t, router)
	require.Len(t, items, 1)
	assert.Equal(t, "Second", items[0].Name)
}

func TestUpdateChartItem_Errors(t *testing.T) {
	router, fixtures := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name   string
		body   any
		key    bool
		status int
	}{
		{"no key", map[string]any{"item": map[string]any{"alias": "a", "name": "A"}}, false, http.StatusUnauthorized},
		{"no item", map[string]any{}, true, http.StatusBadRequest},
		{"no alias", map[string]any{"item": map[string]any{"name": "A"}}, true, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/update-chart-item", tt.body)
			if tt.key {
				testutil.WithAPIKey(req)
			}
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.status)
		})
	}

	n, err := fixtures.DB().Collection(models.ChartItemsCollection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTopChart_Empty(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/top-chart"))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"items":[]`)
}
