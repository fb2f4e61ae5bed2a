package observability_test

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeremylgl2/dagster/internal/observability"
)

func TestCaptureError(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewCoreLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	logger.CaptureError(nil)
	require.Empty(t, buf.String(), "nil errors should not be logged")

	logger.CaptureError(errors.New("boom"), "run_id", "aaaa1111-0000")
	require.Contains(t, buf.String(), "boom")
	require.Contains(t, buf.String(), "aaaa1111-0000")
}

func TestNewCoreLoggerDefaultsToDiscard(t *testing.T) {
	logger := observability.NewCoreLogger(nil)
	require.NotPanics(t, func() {
		logger.CaptureWarn("ignored", "key", "value")
	})
}
