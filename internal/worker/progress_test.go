package worker

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedProgress(total int, logger *slog.Logger, elapsed time.Duration) *Progress {
	p := NewProgress(total, logger)
	now := p.start.Add(elapsed)
	p.now = func() time.Time { return now }
	return p
}

func TestProgress_UpdateLogs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	p := fixedProgress(10, logger, 10*time.Second)
	p.Update(5, 10, 1)

	out := buf.String()
	assert.Contains(t, out, "done=5/10")
	assert.Contains(t, out, "failed=1")
	assert.Contains(t, out, "eta=10s")
}

func TestProgress_ETA(t *testing.T) {
	p := fixedProgress(4, nil, 6*time.Second)
	assert.Zero(t, p.ETA())

	p.Update(3, 4, 0)
	assert.Equal(t, 2*time.Second, p.ETA())

	p.Update(4, 4, 0)
	assert.Zero(t, p.ETA())
}

func TestProgress_Summary(t *testing.T) {
	p := fixedProgress(10, nil, 90*time.Second)
	p.Callback()(10, 10, 2)

	assert.Equal(t, "Generated 8/10 textures (2 failed) in 1m30s", p.Summary())
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		expected string
		duration time.Duration
	}{
		{duration: 30 * time.Second, expected: "30s"},
		{duration: 90 * time.Second, expected: "1m30s"},
		{duration: 5 * time.Minute, expected: "5m0s"},
		{duration: 65 * time.Minute, expected: "1h5m"},
		{duration: 2*time.Hour + 30*time.Minute, expected: "2h30m"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatDuration(tt.duration))
		})
	}
}
