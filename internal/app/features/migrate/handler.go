// Package migrate exposes the cross-environment copy over HTTP for admins.
package migrate

import (
	"context"
	"net/http"

	userstore "github.com/dalemusser/bolola/internal/app/store/users"
	"github.com/dalemusser/bolola/internal/app/system/apperr"
	"github.com/dalemusser/bolola/internal/app/system/dbmigrate"
	"github.com/dalemusser/bolola/internal/app/system/jsonio"
	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Runner is satisfied by *dbmigrate.Migrator.
type Runner interface {
	Run(ctx context.Context) (*dbmigrate.Summary, error)
	Config() dbmigrate.Config
}

// Handler serves POST /migrate-db. Runner is nil when no source/target
// pair is configured.
type Handler struct {
	DB     *mongo.Database
	Runner Runner
	Log    *zap.Logger
}

func NewHandler(db *mongo.Database, runner Runner, logger *zap.Logger) *Handler {
	return &Handler{DB: db, Runner: runner, Log: logger}
}

type migrateRequest struct {
	Email string `json:"email"`
}

type summaryBody struct {
	TotalMigrated int                         `json:"totalMigrated"`
	TotalErrors   int                         `json:"totalErrors"`
	Collections   map[string]dbmigrate.Result `json:"collections"`
}

type countsBody struct {
	Source       dbmigrate.Counts `json:"source"`
	TargetBefore dbmigrate.Counts `json:"targetBefore"`
	TargetAfter  dbmigrate.Counts `json:"targetAfter"`
}

type migrateResponse struct {
	Message   string      `json:"message"`
	Direction string      `json:"direction"`
	RunID     string      `json:"runId"`
	Summary   summaryBody `json:"summary"`
	Counts    countsBody  `json:"counts"`
}

type failureDetails struct {
	Reason    string      `json:"reason"`
	Direction string      `json:"direction"`
	RunID     string      `json:"runId,omitempty"`
	Summary   summaryBody `json:"summary"`
}

const adminOnly = "Only admin users can perform database migration"

// HandleMigrate checks that email names an admin, then runs the migration.
// The run is detached from the request: a client disconnect does not stop
// it part way.
func (h *Handler) HandleMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if err := jsonio.Decode(w, r, &req); err != nil {
		jsonio.Error(w, err, h.Log)
		return
	}
	if req.Email == "" {
		jsonio.Error(w, apperr.Validation("Email parameter is required").WithHint(adminOnly), h.Log)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "migrate admin check")
	isAdmin, err := userstore.New(h.DB).IsAdminEmail(ctx, req.Email)
	cancel()
	if err != nil {
		jsonio.Error(w, apperr.Internal(err), h.Log)
		return
	}
	if !isAdmin {
		h.Log.Warn("migration refused for non-admin", zap.String("email", req.Email))
		jsonio.Error(w, apperr.Forbidden("Access denied").WithHint(adminOnly), h.Log)
		return
	}

	if h.Runner == nil {
		jsonio.Error(w, apperr.Unavailable("Database migration failed").
			WithHint("Migration source and target are not configured"), h.Log)
		return
	}

	h.Log.Info("migration requested", zap.String("admin", req.Email), zap.String("direction", h.Runner.Config().Direction()))
	sum, err := h.Runner.Run(context.WithoutCancel(r.Context()))
	if err != nil {
		details := failureDetails{Reason: err.Error(), Direction: h.Runner.Config().Direction()}
		if sum != nil {
			details.RunID = sum.RunID
			details.Summary = toSummaryBody(sum)
		}
		jsonio.Error(w, apperr.Wrap(err, apperr.CodeInternal, "Database migration failed").WithDetails(details), h.Log)
		return
	}

	jsonio.OK(w, migrateResponse{
		Message:   "Database migration completed successfully",
		Direction: sum.Direction,
		RunID:     sum.RunID,
		Summary:   toSummaryBody(sum),
		Counts: countsBody{
			Source:       sum.Source,
			TargetBefore: sum.TargetBefore,
			TargetAfter:  sum.TargetAfter,
		},
	}, h.Log)
}

func toSummaryBody(sum *dbmigrate.Summary) summaryBody {
	return summaryBody{
		TotalMigrated: sum.TotalMigrated,
		TotalErrors:   sum.TotalErrors,
		Collections:   sum.Collections,
	}
}
