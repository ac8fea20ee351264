package cmd

import (
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSignalContextCancelsOnSIGTERM(t *testing.T) {
	ctx, cancel := signalContext()
	defer cancel()

	proc, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		t.Skipf("cannot signal own process: %v", err)
	}

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context not cancelled after SIGTERM")
	}
}
