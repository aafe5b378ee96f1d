package users_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/bolola/internal/app/features/users"
	"github.com/dalemusser/bolola/internal/app/system/apikey"
	"github.com/dalemusser/bolola/internal/app/system/indexes"
	"github.com/dalemusser/bolola/internal/app/system/inputval"
	"github.com/dalemusser/bolola/internal/app/system/ratelimit"
	"github.com/dalemusser/bolola/internal/domain/models"
	"github.com/dalemusser/bolola/internal/testutil"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func passthrough(next http.Handler) http.Handler { return next }

func newTestRouter(t *testing.T, limit func(http.Handler) http.Handler) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	require.NoError(t, indexes.EnsureAll(ctx, db))

	logger := zap.NewNop()
	r := chi.NewRouter()
	users.Mount(r, users.NewHandler(db, inputval.New(), logger), apikey.New(testutil.TestAPIKey, logger), limit)
	return r, testutil.NewFixtures(t, db)
}

func TestCreateUser(t *testing.T) {
	router, _ := newTestRouter(t, passthrough)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/create-user", map[string]any{
		"firebaseUid": "uid-1",
		"name":        "Ada",
		"email":       "ada@example.com",
	})))
	rec.AssertStatus(t, http.StatusCreated)

	var u models.User
	rec.DecodeJSON(t, &u)
	assert.Equal(t, "uid-1", u.FirebaseUID)
	assert.True(t, u.IsActive)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, "", u.PhotoURL)
	assert.NotNil(t, u.Favorites)
	assert.False(t, u.LastLoginAt.IsZero())
}

func TestCreateUser_Conflicts(t *testing.T) {
	router, fixtures := newTestRouter(t, passthrough)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "uid-1", "ada@example.com")

	t.Run("same uid returns the existing user", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/create-user", map[string]any{
			"firebaseUid": "uid-1", "name": "Other", "email": "other@example.com",
		})))
		rec.AssertStatus(t, http.StatusConflict)

		var body struct {
			Error string      `json:"error"`
			User  models.User `json:"user"`
		}
		rec.DecodeJSON(t, &body)
		assert.Equal(t, "User already exists", body.Error)
		assert.Equal(t, "ada@example.com", body.User.Email)
	})

	t.Run("same email", func(t *testing.T) {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/create-user", map[string]any{
			"firebaseUid": "uid-2", "name": "Other", "email": "ada@example.com",
		})))
		rec.AssertStatus(t, http.StatusConflict)
		rec.AssertContains(t, "User with this email or Firebase UID already exists")
	})
}

func TestCreateUser_Validation(t *testing.T) {
	router, fixtures := newTestRouter(t, passthrough)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	tests := []struct {
		name   string
		body   any
		key    bool
		status int
	}{
		{"no key", map[string]any{"firebaseUid": "u", "name": "n", "email": "e@x.com"}, false, http.StatusUnauthorized},
		{"missing email", map[string]any{"firebaseUid": "u", "name": "n"}, true, http.StatusBadRequest},
		{"empty body", nil, true, http.StatusBadRequest},
		{"malformed", `{"firebaseUid"`, true, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, "POST", "/create-user", tt.body)
			if tt.key {
				testutil.WithAPIKey(req)
			}
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, req)
			rec.AssertStatus(t, tt.status)
		})
	}

	n, err := fixtures.DB().Collection(models.UsersCollection).CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestServeUser_TouchesLastLogin(t *testing.T) {
	router, fixtures := newTestRouter(t, passthrough)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	orig := fixtures.CreateUser(ctx, "uid-1", "a@example.com")
	time.Sleep(5 * time.Millisecond)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/user/uid-1"))
	rec.AssertStatus(t, http.StatusOK)

	var u models.User
	rec.DecodeJSON(t, &u)
	assert.True(t, u.LastLoginAt.After(orig.LastLoginAt))

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/user/missing"))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertContains(t, "User not found")
}

func TestUpdateUser(t *testing.T) {
	router, fixtures := newTestRouter(t, passthrough)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "uid-1", "a@example.com")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/update-user", map[string]any{
		"firebaseUid": "uid-1",
		"photoUrl":    "https://example.com/p.png",
		"isActive":    false,
	})))
	rec.AssertStatus(t, http.StatusOK)

	var u models.User
	rec.DecodeJSON(t, &u)
	assert.Equal(t, "https://example.com/p.png", u.PhotoURL)
	assert.False(t, u.IsActive)
	assert.Equal(t, "a@example.com", u.Email)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.WithAPIKey(testutil.NewJSONRequest(t, "POST", "/update-user", map[string]any{
		"firebaseUid": "missing", "name": "x",
	})))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestServeUsers(t *testing.T) {
	router, fixtures := newTestRouter(t, passthrough)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "uid-1", "a@example.com")
	fixtures.CreateUser(ctx, "uid-2", "b@example.com")

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/users"))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Users []models.User `json:"users"`
		Count int           `json:"count"`
	}
	rec.DecodeJSON(t, &body)
	assert.Equal(t, 2, body.Count)
	assert.Len(t, body.Users, 2)
}

func TestFavorites_AddTwiceRemoveAbsent(t *testing.T) {
	router, fixtures := newTestRouter(t, passthrough)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "uid-1", "a@example.com")
	fixtures.CreateItem(ctx, "song", "g", "c", 0)

	for i := 0; i < 2; i++ {
		rec := testutil.NewRecorder()
		router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/user/uid-1/favorites/add", map[string]any{"alias": "song"}))
		rec.AssertStatus(t, http.StatusOK)

		var body struct {
			User      models.User `json:"user"`
			AddedItem string      `json:"addedItem"`
		}
		rec.DecodeJSON(t, &body)
		assert.Equal(t, []string{"song"}, body.User.Favorites)
		assert.Equal(t, "song", body.AddedItem)
	}

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/user/uid-1/favorites/remove", map[string]any{"alias": "never"}))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertContains(t, `"removedItem":"never"`)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/user/uid-1/favorites/remove", map[string]any{"alias": "song"}))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		User models.User `json:"user"`
	}
	rec.DecodeJSON(t, &body)
	assert.Empty(t, body.User.Favorites)
}

func TestFavorites_Errors(t *testing.T) {
	router, fixtures := newTestRouter(t, passthrough)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "uid-1", "a@example.com")
	fixtures.CreateItem(ctx, "song", "g", "c", 0)

	tests := []struct {
		name   string
		path   string
		body   any
		status int
		msg    string
	}{
		{"missing alias", "/user/uid-1/favorites/add", map[string]any{}, http.StatusBadRequest, "MediaItem with alias"},
		{"unknown item", "/user/uid-1/favorites/add", map[string]any{"alias": "nope"}, http.StatusNotFound, "Item not found"},
		{"unknown user", "/user/ghost/favorites/add", map[string]any{"alias": "song"}, http.StatusNotFound, "User not found"},
		{"remove unknown user", "/user/ghost/favorites/remove", map[string]any{"alias": "song"}, http.StatusNotFound, "User not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", tt.path, tt.body))
			rec.AssertStatus(t, tt.status)
			rec.AssertContains(t, tt.msg)
		})
	}
}

func TestServeFavorites_DropsDangling(t *testing.T) {
	router, fixtures := newTestRouter(t, passthrough)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "uid-1", "a@example.com")
	fixtures.CreateItem(ctx, "song", "g", "c", 0)
	_, err := fixtures.DB().Collection(models.UsersCollection).UpdateOne(ctx,
		bson.M{"_id": u.ID},
		bson.M{"$set": bson.M{"favorites": bson.A{"song", "deleted-song"}}})
	require.NoError(t, err)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/user/favorites?firebaseUid=uid-1"))
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Favorites []string      `json:"favorites"`
		Items     []models.Item `json:"items"`
	}
	rec.DecodeJSON(t, &body)
	assert.Equal(t, []string{"song", "deleted-song"}, body.Favorites)
	require.Len(t, body.Items, 1)
	assert.Equal(t, "song", body.Items[0].Alias)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/user/favorites"))
	rec.AssertStatus(t, http.StatusBadRequest)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest("GET", "/user/favorites?firebaseUid=ghost"))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestFavorites_RateLimited(t *testing.T) {
	lim := ratelimit.New(1, 1, time.Minute)
	defer lim.Stop()
	router, fixtures := newTestRouter(t, ratelimit.Middleware(lim, zap.NewNop()))
	ctx, cancel := testutil.TestContext()
	defer cancel()

	fixtures.CreateUser(ctx, "uid-1", "a@example.com")
	fixtures.CreateItem(ctx, "song", "g", "c", 0)

	rec := testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/user/uid-1/favorites/add", map[string]any{"alias": "song"}))
	rec.AssertStatus(t, http.StatusOK)

	rec = testutil.NewRecorder()
	router.ServeHTTP(rec, testutil.NewJSONRequest(t, "POST", "/user/uid-1/favorites/add", map[string]any{"alias": "song"}))
	rec.AssertStatus(t, http.StatusTooManyRequests)
}
