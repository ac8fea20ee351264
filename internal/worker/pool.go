// Package worker runs batches of generation requests on a bounded pool.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/MeKo-Tech/procnoise/internal/pipeline"
)

// Generator produces one texture. It matches pipeline.Generator.Generate.
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Task is one queued request. Index is its position in the batch.
type Task struct {
	Request pipeline.Request
	Index   int
}

// Result is the outcome of a task.
type Result struct {
	Output  *pipeline.Result
	Err     error
	Task    Task
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Generator  Generator
	OnProgress ProgressFunc
	Workers    int
}

// Pool runs tasks in parallel.
type Pool struct {
	generator  Generator
	onProgress ProgressFunc
	workers    int
}

// New creates a new worker pool.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		generator:  cfg.Generator,
		onProgress: cfg.OnProgress,
	}
}

// Tasks wraps requests as indexed tasks.
func Tasks(reqs []pipeline.Request) []Task {
	tasks := make([]Task, len(reqs))
	for i, req := range reqs {
		tasks[i] = Task{Index: i, Request: req}
	}
	return tasks
}

// Run executes all tasks and returns their results in task order.
// It blocks until every task has finished or been cancelled through ctx.
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	queue := make(chan int, len(tasks))
	for i := range tasks {
		queue <- i
	}
	close(queue)

	results := make([]Result, len(tasks))
	var (
		wg                sync.WaitGroup
		mu                sync.Mutex
		completed, failed int
	)
	for range p.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				r := p.run(ctx, tasks[i])
				results[i] = r

				mu.Lock()
				completed++
				if r.Err != nil {
					failed++
				}
				if p.onProgress != nil {
					p.onProgress(completed, len(tasks), failed)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return results
}

func (p *Pool) run(ctx context.Context, task Task) Result {
	if err := ctx.Err(); err != nil {
		return Result{Task: task, Err: err}
	}
	start := time.Now()
	out, err := p.generator.Generate(ctx, task.Request)
	return Result{
		Task:    task,
		Output:  out,
		Err:     err,
		Elapsed: time.Since(start),
	}
}
