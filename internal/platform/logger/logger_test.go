package logger

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/phrazzld/taskpipe/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupReturnsLogger(t *testing.T) {
	testCases := []struct {
		name     string
		logLevel string
	}{
		{name: "debug level", logLevel: "debug"},
		{name: "info level", logLevel: "info"},
		{name: "warn level", logLevel: "warn"},
		{name: "error level", logLevel: "error"},
		{name: "mixed case level", logLevel: "WARN"},
		{name: "invalid level falls back to info", logLevel: "verbose"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			logger, err := Setup(config.ServerConfig{Port: 8080, LogLevel: tc.logLevel})
			require.NoError(t, err)
			require.NotNil(t, logger)
			assert.Same(t, logger, slog.Default(),
				"Setup should install the returned logger as the default")
		})
	}
}

func TestFromContext(t *testing.T) {
	ctx := context.Background()

	// Empty context falls back to the default logger
	assert.Same(t, slog.Default(), FromContext(ctx))

	scoped := slog.New(slog.NewTextHandler(os.Stderr, nil)).With("task_id", "abc")
	ctx = WithLogger(ctx, scoped)
	assert.Same(t, scoped, FromContext(ctx))
}

func TestFromContextOrDefault(t *testing.T) {
	fallback := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// No logger in context: provided fallback wins
	assert.Same(t, fallback, FromContextOrDefault(context.Background(), fallback))

	// Logger in context wins over the fallback
	scoped := slog.New(slog.NewTextHandler(os.Stderr, nil))
	ctx := WithLogger(context.Background(), scoped)
	assert.Same(t, scoped, FromContextOrDefault(ctx, fallback))

	// Nil fallback degrades to the process default
	assert.Same(t, slog.Default(), FromContextOrDefault(context.Background(), nil))
}
