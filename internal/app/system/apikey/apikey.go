// internal/app/system/apikey/apikey.go
//
// Package apikey guards write endpoints with the shared API key.
package apikey

import (
	"crypto/subtle"
	"net/http"

	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"go.uber.org/zap"
)

const (
	// HeaderName is the request header carrying the key.
	HeaderName = "X-API-Key"
	// QueryParam is the query-string fallback.
	QueryParam = "apikey"
)

var errMissingKey = apperr.Unauthorized("Unauthorized: Valid API key required").
	WithHint("Include API key in X-API-Key header or apikey query parameter")

// Guard checks requests against a single configured key.
type Guard struct {
	key []byte
	log *zap.Logger
}

// New returns a Guard for key. An empty key rejects every request.
func New(key string, logger *zap.Logger) *Guard {
	return &Guard{key: []byte(key), log: logger}
}

// Provided extracts the caller's key from the header, then the query string.
func Provided(r *http.Request) string {
	if k := r.Header.Get(HeaderName); k != "" {
		return k
	}
	return r.URL.Query().Get(QueryParam)
}

// Valid reports whether r carries the configured key.
func (g *Guard) Valid(r *http.Request) bool {
	if len(g.key) == 0 {
		return false
	}
	got := Provided(r)
	return got != "" && subtle.ConstantTimeCompare([]byte(got), g.key) == 1
}

// Require is middleware that answers 401 before next runs when the key is
// absent or wrong.
func (g *Guard) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.Valid(r) {
			g.log.Warn("rejected request without valid API key",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path))
			jsonio.Error(w, errMissingKey, g.log)
			return
		}
		next.ServeHTTP(w, r)
	})
}
