package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"

	"github.com/phrazzld/taskpipe/internal/config"
	"github.com/phrazzld/taskpipe/internal/processing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewGeminiProcessorValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	validCfg := config.LLMConfig{
		GeminiAPIKey:    "test-api-key",
		ModelName:       "gemini-2.0-flash",
		MaxOutputTokens: 500,
		TimeoutSeconds:  30,
	}

	testCases := []struct {
		name   string
		logger *slog.Logger
		mutate func(cfg *config.LLMConfig)
	}{
		{
			name:   "nil logger",
			logger: nil,
			mutate: func(cfg *config.LLMConfig) {},
		},
		{
			name:   "missing API key",
			logger: testLogger(),
			mutate: func(cfg *config.LLMConfig) { cfg.GeminiAPIKey = "" },
		},
		{
			name:   "missing model name",
			logger: testLogger(),
			mutate: func(cfg *config.LLMConfig) { cfg.ModelName = "" },
		},
		{
			name:   "non-positive output bound",
			logger: testLogger(),
			mutate: func(cfg *config.LLMConfig) { cfg.MaxOutputTokens = 0 },
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validCfg
			tc.mutate(&cfg)

			processor, err := NewGeminiProcessor(ctx, tc.logger, cfg)

			require.Error(t, err)
			assert.Nil(t, processor)
		})
	}
}

func TestProcessRejectsEmptyInput(t *testing.T) {
	t.Parallel()

	// Empty input is rejected before any client call, so a processor
	// with a nil client is safe here.
	p := &GeminiProcessor{logger: testLogger(), model: "gemini-2.0-flash", maxOutputTokens: 500}

	result, err := p.Process(context.Background(), "")

	require.Error(t, err)
	assert.Empty(t, result)
	assert.Equal(t, processing.KindInvalidInput, processing.KindOf(err))
}

func TestClassifyErr(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		wantKind processing.Kind
	}{
		{
			name:     "deadline exceeded",
			err:      context.DeadlineExceeded,
			wantKind: processing.KindTimeout,
		},
		{
			name:     "wrapped deadline exceeded",
			err:      fmt.Errorf("rpc failed: %w", context.DeadlineExceeded),
			wantKind: processing.KindTimeout,
		},
		{
			name:     "cancellation",
			err:      context.Canceled,
			wantKind: processing.KindTimeout,
		},
		{
			name:     "rate limit status",
			err:      genai.APIError{Code: 429, Message: "quota exceeded"},
			wantKind: processing.KindRateLimited,
		},
		{
			name:     "bad request status",
			err:      genai.APIError{Code: 400, Message: "invalid argument"},
			wantKind: processing.KindInvalidInput,
		},
		{
			name:     "server error status",
			err:      genai.APIError{Code: 500, Message: "internal"},
			wantKind: processing.KindUnknown,
		},
		{
			name:     "plain transport error",
			err:      errors.New("connection reset by peer"),
			wantKind: processing.KindUnknown,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			classified := classifyErr(tc.err)
			assert.Equal(t, tc.wantKind, classified.Kind)
		})
	}
}

func TestClassifyErrNeverCarriesProviderPayload(t *testing.T) {
	t.Parallel()

	providerBody := `{"error": {"message": "key sk-ABCDEFGHIJKLMNOPQRSTUV is invalid"}}`
	classified := classifyErr(genai.APIError{Code: 400, Message: providerBody})

	assert.NotContains(t, classified.Error(), "sk-ABCDEFGHIJKLMNOPQRSTUV")
	assert.NotContains(t, classified.Error(), providerBody)
}
