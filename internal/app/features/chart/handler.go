package chart

import (
	"github.com/dalemusser/bolola/internal/app/system/inputval"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler serves the top chart.
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
