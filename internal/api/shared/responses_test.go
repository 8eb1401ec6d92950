package shared

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/taskpipe/internal/platform/logger"
)

// TestRespondWithErrorAndLogUsesRequestLogger verifies that the error log
// goes through the request-scoped logger from the context, carries the
// trace ID, and never records the raw error text.
func TestRespondWithErrorAndLogUsesRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	reqLogger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	ctx := SetTraceID(context.Background())
	ctx = logger.WithLogger(ctx, reqLogger)

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	underlying := fmt.Errorf("provider auth failed for key sk-ABCDEFGHIJKLMNOPQRSTUV")
	RespondWithErrorAndLog(rec, req, http.StatusBadGateway, "task could not be queued for processing", underlying)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "task could not be queued for processing")
	assert.NotContains(t, rec.Body.String(), "sk-ABCDEFGHIJKLMNOPQRSTUV",
		"raw error text must never reach the client")

	logged := buf.String()
	require.NotEmpty(t, logged, "error must be logged through the context logger")
	assert.Contains(t, logged, "[REDACTED]")
	assert.NotContains(t, logged, "sk-ABCDEFGHIJKLMNOPQRSTUV")
	assert.Contains(t, logged, GetTraceID(req.Context()))
}

// TestRespondWithErrorAndLogWithoutContextLogger verifies the fallback
// path when no request-scoped logger was attached.
func TestRespondWithErrorAndLogWithoutContextLogger(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil).
		WithContext(SetTraceID(context.Background()))
	rec := httptest.NewRecorder()

	RespondWithErrorAndLog(rec, req, http.StatusNotFound, "task not found", fmt.Errorf("no rows"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "task not found")
	assert.NotContains(t, rec.Body.String(), "no rows")
}
