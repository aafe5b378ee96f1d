// Package dbmigrate copies the app collections from one MongoDB database to
// another, replacing the target's contents collection by collection.
//
// The copy is best-effort and not resumable. Per collection it runs
//
//	Reading → Empty → Done
//	Reading → Clearing → Inserting (one step per batch) → Done
//
// A failed batch is counted in the collection's errors and the copy moves
// on. A failure while reading, counting or clearing aborts the run: earlier
// collections stay replaced and later ones are left untouched.
package dbmigrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"github.com/dalemusser/bolola/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

// DefaultBatchSize is the number of documents per insert.
const DefaultBatchSize = 100

// Entity pairs a model name (used in summaries) with its collection.
type Entity struct {
	Name       string
	Collection string
}

// Order is the sequence collections are copied in.
var Order = []Entity{
	{"User", models.UsersCollection},
	{"Category", models.CategoriesCollection},
	{"Group", models.GroupsCollection},
	{"Item", models.ItemsCollection},
	{"ChartItem", models.ChartItemsCollection},
}

// Collection is the per-collection surface the migrator needs.
type Collection interface {
	FindAll(ctx context.Context) ([]bson.M, error)
	Count(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, docs []any) error
}

// Endpoint is one side of a migration.
type Endpoint interface {
	Collection(name string) Collection
	// EnsureSchema creates the indexes and validators the app expects.
	EnsureSchema(ctx context.Context) error
	Close(ctx context.Context) error
}

// Target names a database on a server.
type Target struct {
	URI      string
	Database string
}

// Dialer opens an Endpoint.
type Dialer func(ctx context.Context, t Target) (Endpoint, error)

type Config struct {
	Source    Target
	Target    Target
	BatchSize int
}

// Direction is the human-readable "source → target" label.
func (c Config) Direction() string {
	return c.Source.Database + " → " + c.Target.Database
}

// Validate reports configuration problems before any connection is opened.
func (c Config) Validate() error {
	var errs []error
	if c.Source.URI == "" || c.Source.Database == "" {
		errs = append(errs, errors.New("source URI and database are required"))
	}
	if c.Target.URI == "" || c.Target.Database == "" {
		errs = append(errs, errors.New("target URI and database are required"))
	}
	if c.Source == c.Target && c.Source.URI != "" {
		errs = append(errs, errors.New("source and target must differ"))
	}
	return errors.Join(errs...)
}

// Result is the outcome for one collection.
type Result struct {
	Migrated int `json:"migrated"`
	Errors   int `json:"errors"`
}

// Counts are document counts per entity name.
type Counts map[string]int64

type Summary struct {
	RunID         string            `json:"runId"`
	Direction     string            `json:"direction"`
	TotalMigrated int               `json:"totalMigrated"`
	TotalErrors   int               `json:"totalErrors"`
	Collections   map[string]Result `json:"collections"`
	Source        Counts            `json:"source"`
	TargetBefore  Counts            `json:"targetBefore"`
	TargetAfter   Counts            `json:"targetAfter"`
	Took          time.Duration     `json:"-"`
}

// StepError reports the step that aborted a run.
type StepError struct {
	Entity string
	Step   string
	Err    error
}

func (e *StepError) Error() string {
	if e.Entity == "" {
		return fmt.Sprintf("%s: %v", e.Step, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Entity, e.Step, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

type Migrator struct {
	cfg  Config
	dial Dialer
	log  *zap.Logger
}

// New returns a Migrator. A non-positive BatchSize means DefaultBatchSize.
func New(cfg Config, dial Dialer, log *zap.Logger) *Migrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Migrator{cfg: cfg, dial: dial, log: log}
}

// Config returns the effective configuration.
func (m *Migrator) Config() Config { return m.cfg }

// Run performs one migration. Both endpoints are opened for the call and
// closed before it returns. On abort the partial summary is returned with
// the error.
func (m *Migrator) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	sum := &Summary{
		RunID:       uuid.NewString(),
		Direction:   m.cfg.Direction(),
		Collections: map[string]Result{},
	}
	log := m.log.With(zap.String("run_id", sum.RunID), zap.String("direction", sum.Direction))
	log.Info("migration starting",
		zap.String("source_db", m.cfg.Source.Database),
		zap.String("target_db", m.cfg.Target.Database),
		zap.Int("batch_size", m.cfg.BatchSize))

	src, err := m.dial(ctx, m.cfg.Source)
	if err != nil {
		return sum, &StepError{Step: "connect source", Err: err}
	}
	defer closeEndpoint(src, log, "source")

	dst, err := m.dial(ctx, m.cfg.Target)
	if err != nil {
		return sum, &StepError{Step: "connect target", Err: err}
	}
	defer closeEndpoint(dst, log, "target")

	if err := dst.EnsureSchema(ctx); err != nil {
		log.Warn("target schema ensure reported problems", zap.Error(err))
	}

	if sum.Source, err = m.counts(ctx, src); err != nil {
		return sum, err
	}
	if sum.TargetBefore, err = m.counts(ctx, dst); err != nil {
		return sum, err
	}
	log.Info("initial counts",
		zap.Any("source", sum.Source),
		zap.Any("target", sum.TargetBefore))

	for _, ent := range Order {
		res, err := m.copyCollection(ctx, log.With(zap.String("collection", ent.Name)), ent,
			src.Collection(ent.Collection), dst.Collection(ent.Collection))
		sum.Collections[ent.Name] = res
		sum.TotalMigrated += res.Migrated
		sum.TotalErrors += res.Errors
		if err != nil {
			log.Error("migration aborted", zap.Error(err))
			return sum, err
		}
	}

	if sum.TargetAfter, err = m.counts(ctx, dst); err != nil {
		return sum, err
	}
	sum.Took = time.Since(start)
	log.Info("migration complete",
		zap.Int("migrated", sum.TotalMigrated),
		zap.Int("errors", sum.TotalErrors),
		zap.Any("target_after", sum.TargetAfter),
		zap.Duration("took", sum.Took))
	return sum, nil
}

func (m *Migrator) counts(ctx context.Context, ep Endpoint) (Counts, error) {
	out := make(Counts, len(Order))
	for _, ent := range Order {
		n, err := ep.Collection(ent.Collection).Count(ctx)
		if err != nil {
			return nil, &StepError{Entity: ent.Name, Step: "count", Err: err}
		}
		out[ent.Name] = n
	}
	return out, nil
}

func (m *Migrator) copyCollection(ctx context.Context, log *zap.Logger, ent Entity, src, dst Collection) (Result, error) {
	var res Result

	docs, err := src.FindAll(ctx)
	if err != nil {
		return res, &StepError{Entity: ent.Name, Step: "read", Err: err}
	}
	log.Info("read source documents", zap.Int("count", len(docs)))
	if len(docs) == 0 {
		log.Info("no documents to migrate")
		return res, nil
	}

	deleted, err := dst.DeleteAll(ctx)
	if err != nil {
		return res, &StepError{Entity: ent.Name, Step: "clear", Err: err}
	}
	log.Info("cleared target collection", zap.Int64("deleted", deleted))

	for lo := 0; lo < len(docs); lo += m.cfg.BatchSize {
		hi := min(lo+m.cfg.BatchSize, len(docs))
		batch := cleanBatch(docs[lo:hi])

		err := dst.InsertMany(ctx, batch)
		if err != nil {
			res.Errors += len(batch)
			log.Warn("batch insert failed",
				zap.Int("from", lo),
				zap.Int("size", len(batch)),
				zap.Error(err))
			continue
		}
		res.Migrated += len(batch)
		log.Debug("batch inserted", zap.Int("migrated", res.Migrated), zap.Int("total", len(docs)))
	}

	log.Info("collection migrated", zap.Int("migrated", res.Migrated), zap.Int("errors", res.Errors))
	return res, nil
}

// cleanBatch copies docs without their _id and __v fields so the target
// assigns fresh ids.
func cleanBatch(docs []bson.M) []any {
	out := make([]any, 0, len(docs))
	for _, d := range docs {
		c := make(bson.M, len(d))
		for k, v := range d {
			if k == "_id" || k == "__v" {
				continue
			}
			c[k] = v
		}
		out = append(out, c)
	}
	return out
}

func closeEndpoint(ep Endpoint, log *zap.Logger, side string) {
	ctx, cancel := context.WithTimeout(context.Background(), timeouts.Short())
	defer cancel()
	if err := ep.Close(ctx); err != nil {
		log.Warn("failed to close migration endpoint", zap.String("side", side), zap.Error(err))
	}
}
