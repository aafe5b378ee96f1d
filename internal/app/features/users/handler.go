// internal/app/features/users/handler.go
package users

import (
	"github.com/dalemusser/bolola/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler is the shared dependency container for the user directory and
// favorites endpoints.
type Handler struct {
	DB  *mongo.Database
	Val *inputval.Validator
	Log *zap.Logger
}

func NewHandler(db *mongo.Database, val *inputval.Validator, logger *zap.Logger) *Handler {
	return &Handler{
		DB:  db,
		Val: val,
		Log: logger,
	}
}
