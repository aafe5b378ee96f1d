// Package media accepts audio and video uploads into the media tree that
// /media serves.
package media

import (
	"github.com/dalemusser/bolola/internal/app/system/inputval"
	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// Handler writes uploads through Storage, rooted at the media directory.
type Handler struct {
	Storage storage.Store
	Val     *inputval.Validator
	Log     *zap.Logger
}

func NewHandler(store storage.Store, val *inputval.Validator, logger *zap.Logger) *Handler {
	return &Handler{Storage: store, Val: val, Log: logger}
}
