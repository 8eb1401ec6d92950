package processing

import "context"

// Processor defines the interface for running a single AI completion over
// user text. This interface serves as a boundary between the task pipeline
// and external AI/LLM services.
type Processor interface {
	// Process sends the input text to the AI provider and returns the
	// generated response text.
	//
	// The call is bounded by the deadline on ctx; implementations must
	// honor cancellation. Failures are returned as *Error carrying only a
	// classified summary, never the raw provider payload.
	Process(ctx context.Context, input string) (string, error)
}
