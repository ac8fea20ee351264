package worker

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/procnoise/internal/noise"
	"github.com/MeKo-Tech/procnoise/internal/pipeline"
	"github.com/MeKo-Tech/procnoise/internal/rng"
)

// mockGenerator simulates generation for testing
type mockGenerator struct {
	fail      map[string]bool
	delay     time.Duration
	callCount atomic.Int32
}

func (m *mockGenerator) Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error) {
	m.callCount.Add(1)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.delay):
	}

	if m.fail[req.Name] {
		return nil, errors.New("simulated failure")
	}
	return &pipeline.Result{Name: req.Name}, nil
}

func namedRequests(names ...string) []pipeline.Request {
	reqs := make([]pipeline.Request, len(names))
	for i, n := range names {
		reqs[i] = pipeline.Request{Name: n, Params: noise.DefaultPerlin()}
	}
	return reqs
}

func TestPool_BasicExecution(t *testing.T) {
	gen := &mockGenerator{delay: 10 * time.Millisecond}
	pool := New(Config{Workers: 2, Generator: gen})

	results := pool.Run(context.Background(), Tasks(namedRequests("a", "b", "c")))

	require.Len(t, results, 3)
	for i, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, i, r.Task.Index, "results are ordered by task index")
		assert.Equal(t, r.Task.Request.Name, r.Output.Name)
	}
	assert.Equal(t, int32(3), gen.callCount.Load())
}

func TestPool_Parallelism(t *testing.T) {
	gen := &mockGenerator{delay: 50 * time.Millisecond}
	pool := New(Config{Workers: 4, Generator: gen})

	start := time.Now()
	results := pool.Run(context.Background(), Tasks(namedRequests("1", "2", "3", "4", "5", "6", "7", "8")))
	elapsed := time.Since(start)

	// 8 tasks at 50ms on 4 workers is two rounds
	assert.Less(t, elapsed, 200*time.Millisecond)
	assert.Len(t, results, 8)
}

func TestPool_ErrorHandling(t *testing.T) {
	gen := &mockGenerator{
		delay: 10 * time.Millisecond,
		fail:  map[string]bool{"b": true},
	}
	pool := New(Config{Workers: 2, Generator: gen})

	results := pool.Run(context.Background(), Tasks(namedRequests("a", "b", "c")))
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)
}

func TestPool_Cancellation(t *testing.T) {
	gen := &mockGenerator{delay: 100 * time.Millisecond}
	pool := New(Config{Workers: 2, Generator: gen})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := pool.Run(ctx, Tasks(namedRequests("1", "2", "3", "4", "5", "6", "7", "8", "9", "10")))
	elapsed := time.Since(start)

	assert.Less(t, elapsed, 200*time.Millisecond)
	require.Len(t, results, 10)

	var cancelled int
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) {
			cancelled++
		}
	}
	assert.Equal(t, 10, cancelled)
}

func TestPool_ProgressCallback(t *testing.T) {
	gen := &mockGenerator{delay: 5 * time.Millisecond}

	var calls, lastCompleted, lastTotal int
	pool := New(Config{
		Workers:   2,
		Generator: gen,
		OnProgress: func(completed, total, failed int) {
			calls++
			lastCompleted = completed
			lastTotal = total
		},
	})

	pool.Run(context.Background(), Tasks(namedRequests("a", "b", "c")))

	assert.Equal(t, 3, calls)
	assert.Equal(t, 3, lastCompleted)
	assert.Equal(t, 3, lastTotal)
}

func TestPool_EmptyTasks(t *testing.T) {
	gen := &mockGenerator{}
	pool := New(Config{Workers: 2, Generator: gen})

	assert.Empty(t, pool.Run(context.Background(), nil))
	assert.Zero(t, gen.callCount.Load())
}

func TestPool_RealGeneratorPreservedBatch(t *testing.T) {
	dir := t.TempDir()
	gen, err := pipeline.NewGenerator(rng.New(5), pipeline.Options{OutputDir: dir, PreserveState: true})
	require.NoError(t, err)

	reqs := make([]pipeline.Request, 4)
	for i := range reqs {
		reqs[i] = pipeline.Request{Params: noise.DefaultWorley(), Width: 16, Height: 16, Name: string(rune('a' + i))}
	}

	results := New(Config{Workers: 3, Generator: gen}).Run(context.Background(), Tasks(reqs))
	require.Len(t, results, 4)
	for _, r := range results {
		require.NoError(t, r.Err)
		assert.Equal(t, results[0].Output.Seed, r.Output.Seed, "preserved draws share one seed")
		assert.FileExists(t, filepath.Join(dir, r.Task.Request.Name+".png"))
	}
}
