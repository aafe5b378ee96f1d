package dbmigrate

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/bolola/internal/app/system/timeouts"
	"github.com/dalemusser/bolola/internal/domain/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

type memCollection struct {
	mu   sync.Mutex
	docs []bson.M

	failFind   bool
	failDelete bool
	failCount  bool
	// findDelay makes FindAll take at least this long unless ctx ends first.
	findDelay time.Duration
	// failInsertCalls lists 1-based InsertMany call numbers that fail.
	failInsertCalls map[int]bool
	insertCalls     int
}

var errFake = errors.New("fake failure")

func (c *memCollection) FindAll(ctx context.Context) ([]bson.M, error) {
	if c.findDelay > 0 {
		select {
		case <-time.After(c.findDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failFind {
		return nil, errFake
	}
	out := make([]bson.M, len(c.docs))
	copy(out, c.docs)
	return out, nil
}

func (c *memCollection) Count(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failCount {
		return 0, errFake
	}
	return int64(len(c.docs)), nil
}

func (c *memCollection) DeleteAll(context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDelete {
		return 0, errFake
	}
	n := len(c.docs)
	c.docs = nil
	return int64(n), nil
}

func (c *memCollection) InsertMany(_ context.Context, docs []any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.insertCalls++
	if c.failInsertCalls[c.insertCalls] {
		return errFake
	}
	for _, d := range docs {
		c.docs = append(c.docs, d.(bson.M))
	}
	return nil
}

type memEndpoint struct {
	colls  map[string]*memCollection
	closed bool
}

func newMemEndpoint() *memEndpoint {
	ep := &memEndpoint{colls: map[string]*memCollection{}}
	for _, ent := range Order {
		ep.colls[ent.Collection] = &memCollection{}
	}
	return ep
}

func (e *memEndpoint) Collection(name string) Collection { return e.colls[name] }
func (e *memEndpoint) EnsureSchema(context.Context) error { return nil }
func (e *memEndpoint) Close(context.Context) error {
	e.closed = true
	return nil
}

func seed(c *memCollection, n int, prefix string) {
	for i := 0; i < n; i++ {
		c.docs = append(c.docs, bson.M{"_id": i, "__v": 0, "alias": fmt.Sprintf("%s-%d", prefix, i)})
	}
}

func testConfig() Config {
	return Config{
		Source: Target{URI: "mongodb://src", Database: "bolola-production"},
		Target: Target{URI: "mongodb://dst", Database: "bolola-staging"},
	}
}

func newTestMigrator(src, dst *memEndpoint) *Migrator {
	dial := func(_ context.Context, t Target) (Endpoint, error) {
		if t.URI == "mongodb://src" {
			return src, nil
		}
		return dst, nil
	}
	return New(testConfig(), dial, nil)
}

func TestRun_ReplacesTarget(t *testing.T) {
	src, dst := newMemEndpoint(), newMemEndpoint()
	seed(src.colls[models.ItemsCollection], 250, "src")
	seed(dst.colls[models.ItemsCollection], 40, "old")

	sum, err := newTestMigrator(src, dst).Run(context.Background())
	require.NoError(t, err)

	items := dst.colls[models.ItemsCollection]
	assert.Len(t, items.docs, 250)
	assert.Equal(t, 3, items.insertCalls, "250 docs in batches of 100")
	assert.Equal(t, Result{Migrated: 250}, sum.Collections["Item"])
	assert.Equal(t, 250, sum.TotalMigrated)
	assert.Zero(t, sum.TotalErrors)

	assert.Equal(t, int64(250), sum.Source["Item"])
	assert.Equal(t, int64(40), sum.TargetBefore["Item"])
	assert.Equal(t, int64(250), sum.TargetAfter["Item"])
	assert.NotEmpty(t, sum.RunID)
	assert.Equal(t, "bolola-production → bolola-staging", sum.Direction)

	for _, d := range items.docs {
		assert.NotContains(t, d, "_id")
		assert.NotContains(t, d, "__v")
	}
	assert.True(t, src.closed)
	assert.True(t, dst.closed)
}

func TestRun_EmptySourceLeavesTarget(t *testing.T) {
	src, dst := newMemEndpoint(), newMemEndpoint()
	seed(dst.colls[models.ChartItemsCollection], 5, "keep")

	sum, err := newTestMigrator(src, dst).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, dst.colls[models.ChartItemsCollection].docs, 5)
	assert.Equal(t, Result{}, sum.Collections["ChartItem"])
	for _, ent := range Order {
		assert.Contains(t, sum.Collections, ent.Name)
	}
}

func TestRun_FailedBatchCountsWholeBatch(t *testing.T) {
	src, dst := newMemEndpoint(), newMemEndpoint()
	seed(src.colls[models.UsersCollection], 150, "u")
	dst.colls[models.UsersCollection].failInsertCalls = map[int]bool{1: true}

	sum, err := newTestMigrator(src, dst).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Migrated: 50, Errors: 100}, sum.Collections["User"])
	assert.Equal(t, 100, sum.TotalErrors)
}

func TestRun_LaterFailureKeepsEarlierCollections(t *testing.T) {
	src, dst := newMemEndpoint(), newMemEndpoint()
	seed(src.colls[models.UsersCollection], 3, "u")
	seed(src.colls[models.CategoriesCollection], 2, "c")
	seed(src.colls[models.GroupsCollection], 4, "g")
	seed(src.colls[models.ItemsCollection], 6, "i")
	seed(dst.colls[models.ItemsCollection], 9, "old-item")
	seed(dst.colls[models.GroupsCollection], 1, "old-group")
	dst.colls[models.GroupsCollection].failInsertCalls = map[int]bool{1: true}

	sum, err := newTestMigrator(src, dst).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Result{Migrated: 3}, sum.Collections["User"])
	assert.Equal(t, Result{Migrated: 2}, sum.Collections["Category"])
	assert.Equal(t, Result{Errors: 4}, sum.Collections["Group"])
	assert.Equal(t, Result{Migrated: 6}, sum.Collections["Item"])
	assert.Len(t, dst.colls[models.UsersCollection].docs, 3)
	assert.Empty(t, dst.colls[models.GroupsCollection].docs, "cleared before the failed batch")
}

func TestRun_ClearFailureAborts(t *testing.T) {
	src, dst := newMemEndpoint(), newMemEndpoint()
	seed(src.colls[models.UsersCollection], 2, "u")
	seed(src.colls[models.GroupsCollection], 2, "g")
	seed(src.colls[models.ItemsCollection], 2, "i")
	seed(dst.colls[models.ItemsCollection], 7, "old")
	dst.colls[models.GroupsCollection].failDelete = true

	sum, err := newTestMigrator(src, dst).Run(context.Background())
	require.Error(t, err)

	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "Group", se.Entity)
	assert.Equal(t, "clear", se.Step)
	assert.ErrorIs(t, err, errFake)

	assert.Len(t, dst.colls[models.UsersCollection].docs, 2, "earlier collection replaced")
	assert.Len(t, dst.colls[models.ItemsCollection].docs, 7, "later collection untouched")
	assert.Equal(t, 2, sum.TotalMigrated)
	assert.True(t, src.closed)
	assert.True(t, dst.closed)
}

func TestRun_ReadFailureAborts(t *testing.T) {
	src, dst := newMemEndpoint(), newMemEndpoint()
	src.colls[models.UsersCollection].failFind = true

	_, err := newTestMigrator(src, dst).Run(context.Background())
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "read", se.Step)
}

func TestRun_CountFailureAborts(t *testing.T) {
	src, dst := newMemEndpoint(), newMemEndpoint()
	dst.colls[models.ItemsCollection].failCount = true

	_, err := newTestMigrator(src, dst).Run(context.Background())
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "count", se.Step)
	assert.True(t, src.closed)
}

func TestRun_DialFailureClosesSource(t *testing.T) {
	src := newMemEndpoint()
	dial := func(_ context.Context, t Target) (Endpoint, error) {
		if t.URI == "mongodb://src" {
			return src, nil
		}
		return nil, errFake
	}

	_, err := New(testConfig(), dial, nil).Run(context.Background())
	require.ErrorIs(t, err, errFake)
	assert.True(t, src.closed)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", testConfig(), false},
		{"missing source", Config{Target: Target{URI: "mongodb://dst", Database: "b"}}, true},
		{"missing target db", Config{Source: Target{URI: "mongodb://src", Database: "a"}, Target: Target{URI: "mongodb://dst"}}, true},
		{"same", Config{Source: Target{URI: "mongodb://x", Database: "a"}, Target: Target{URI: "mongodb://x", Database: "a"}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNew_DefaultBatchSize(t *testing.T) {
	m := New(testConfig(), nil, nil)
	assert.Equal(t, DefaultBatchSize, m.Config().BatchSize)
}

func TestRun_SlowReadIsNotCutOffByStoreBudgets(t *testing.T) {
	timeouts.Configure(timeouts.Config{Short: time.Millisecond, Batch: time.Millisecond})
	t.Cleanup(timeouts.Reset)

	src, dst := newMemEndpoint(), newMemEndpoint()
	seed(src.colls[models.ItemsCollection], 5, "src")
	src.colls[models.ItemsCollection].findDelay = 30 * time.Millisecond

	sum, err := newTestMigrator(src, dst).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Result{Migrated: 5}, sum.Collections["Item"])
	assert.Len(t, dst.colls[models.ItemsCollection].docs, 5)
}

func TestRun_CallerCancellationAborts(t *testing.T) {
	src, dst := newMemEndpoint(), newMemEndpoint()
	seed(src.colls[models.UsersCollection], 3, "u")
	src.colls[models.UsersCollection].findDelay = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := newTestMigrator(src, dst).Run(ctx)
	var se *StepError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "read", se.Step)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, src.closed)
	assert.True(t, dst.closed)
}
