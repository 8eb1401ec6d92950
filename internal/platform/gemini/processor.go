package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/phrazzld/taskpipe/internal/config"
	"github.com/phrazzld/taskpipe/internal/processing"
	"google.golang.org/genai"
)

// systemInstruction is the fixed prompt prepended to every completion call.
const systemInstruction = "You are a helpful assistant. Provide clear and concise responses."

// ErrInvalidConfig is returned when the processor configuration is invalid.
var ErrInvalidConfig = errors.New("invalid processor configuration")

// GeminiProcessor implements the processing.Processor interface using
// Google's Gemini API to generate a completion for user text.
type GeminiProcessor struct {
	logger *slog.Logger
	client *genai.Client
	model  string

	// maxOutputTokens bounds the response length per call
	maxOutputTokens int32
}

// NewGeminiProcessor creates a new instance of GeminiProcessor with the
// provided dependencies.
//
// Parameters:
//   - ctx: Context for client initialization, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing the API key, model name and response limits
//
// Returns:
//   - A properly initialized GeminiProcessor or an error if initialization fails
func NewGeminiProcessor(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (*GeminiProcessor, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", ErrInvalidConfig)
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", ErrInvalidConfig)
	}

	if cfg.MaxOutputTokens <= 0 {
		return nil, fmt.Errorf("%w: max output tokens must be positive", ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", ErrInvalidConfig, err)
	}

	return &GeminiProcessor{
		logger:          logger.With(slog.String("component", "gemini_processor")),
		client:          client,
		model:           cfg.ModelName,
		maxOutputTokens: int32(cfg.MaxOutputTokens),
	}, nil
}

// Ensure GeminiProcessor implements processing.Processor
var _ processing.Processor = (*GeminiProcessor)(nil)

// Process implements processing.Processor.Process
// It sends the input to the Gemini API with the fixed system instruction
// and a bounded response length. Failures are classified into a
// *processing.Error; the raw provider response never leaves this method.
func (p *GeminiProcessor) Process(ctx context.Context, input string) (string, error) {
	if input == "" {
		return "", processing.NewError(processing.KindInvalidInput, "input text cannot be empty")
	}

	p.logger.DebugContext(ctx, "calling Gemini API",
		slog.String("model", p.model),
		slog.Int("input_length", len(input)))

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(input),
		&genai.GenerateContentConfig{
			MaxOutputTokens:   p.maxOutputTokens,
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		})
	if err != nil {
		classified := classifyErr(err)
		p.logger.WarnContext(ctx, "Gemini API call failed",
			slog.String("kind", string(classified.Kind)))
		return "", classified
	}

	text := resp.Text()
	if text == "" {
		return "", processing.NewError(processing.KindUnknown, "provider returned an empty response")
	}

	p.logger.DebugContext(ctx, "Gemini API call succeeded",
		slog.Int("response_length", len(text)))

	return text, nil
}

// classifyErr maps a provider or transport error onto the processing
// error taxonomy. The returned message is a short classified summary;
// nothing from the provider payload is carried over.
func classifyErr(err error) *processing.Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return processing.NewError(processing.KindTimeout, "provider call timed out")
	}

	if errors.Is(err, context.Canceled) {
		return processing.NewError(processing.KindTimeout, "provider call was cancelled")
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return processing.NewError(processing.KindRateLimited, "provider rate limit exceeded")
		case http.StatusBadRequest, http.StatusUnprocessableEntity:
			return processing.NewError(processing.KindInvalidInput, "provider rejected the input")
		}
	}

	return processing.NewError(processing.KindUnknown, "provider call failed")
}
