package processing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorIsProcessingFailed(t *testing.T) {
	t.Parallel()

	err := NewError(KindRateLimited, "provider rate limit exceeded")
	assert.True(t, errors.Is(err, ErrProcessingFailed))

	wrapped := fmt.Errorf("handling task: %w", err)
	assert.True(t, errors.Is(wrapped, ErrProcessingFailed))
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindTimeout, KindOf(NewError(KindTimeout, "")))
	assert.Equal(t, KindInvalidInput,
		KindOf(fmt.Errorf("wrapped: %w", NewError(KindInvalidInput, "bad request"))))
	assert.Equal(t, KindUnknown, KindOf(errors.New("some transport error")))
	assert.Equal(t, KindUnknown, KindOf(nil))
}

func TestErrorMessage(t *testing.T) {
	t.Parallel()

	err := NewError(KindRateLimited, "provider rate limit exceeded")
	assert.Contains(t, err.Error(), "rate_limited")
	assert.Contains(t, err.Error(), "provider rate limit exceeded")

	bare := NewError(KindUnknown, "")
	assert.Contains(t, bare.Error(), "unknown")
}
