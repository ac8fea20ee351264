package worker

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Progress records batch completion and logs it as tasks finish.
type Progress struct {
	start     time.Time
	logger    *slog.Logger
	now       func() time.Time
	total     int
	completed int
	failed    int
	mu        sync.Mutex
}

// NewProgress creates a tracker for total tasks. A nil logger disables logging.
func NewProgress(total int, logger *slog.Logger) *Progress {
	return &Progress{
		total:  total,
		start:  time.Now(),
		logger: logger,
		now:    time.Now,
	}
}

// Update records the completion counts reported by the pool.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	p.completed = completed
	p.total = total
	p.failed = failed
	eta := p.etaLocked()
	p.mu.Unlock()

	if p.logger == nil {
		return
	}
	args := []any{"done", fmt.Sprintf("%d/%d", completed, total), "failed", failed}
	if completed < total && eta > 0 {
		args = append(args, "eta", formatDuration(eta))
	}
	p.logger.Info("Batch progress", args...)
}

// Callback returns a ProgressFunc suitable for use with Pool.Config.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// ETA estimates the time left from the average rate so far.
func (p *Progress) ETA() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.etaLocked()
}

func (p *Progress) etaLocked() time.Duration {
	if p.completed == 0 || p.completed >= p.total {
		return 0
	}
	perTask := p.now().Sub(p.start) / time.Duration(p.completed)
	return perTask * time.Duration(p.total-p.completed)
}

// Summary returns a one-line report of the finished batch.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := p.now().Sub(p.start)
	return fmt.Sprintf("Generated %d/%d textures (%d failed) in %s",
		p.completed-p.failed, p.total, p.failed, formatDuration(elapsed))
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.0fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
