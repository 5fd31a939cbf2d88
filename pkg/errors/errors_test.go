package errors

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("list activities: %w", Wrap(context.DeadlineExceeded, ErrTimeout.Code, ErrTimeout.Status, "timed out"))

	assert.True(t, stdErrors.Is(err, ErrTimeout))
	assert.True(t, stdErrors.Is(err, context.DeadlineExceeded))
	assert.False(t, stdErrors.Is(err, ErrNetwork))
}

func TestBackendKeepsUpstreamStatus(t *testing.T) {
	err := Backend(http.StatusConflict, "duplicate key")

	assert.Equal(t, "API Error 409: duplicate key", err.Error())
	assert.Equal(t, http.StatusConflict, err.UpstreamStatus)
	assert.True(t, HasCode(err, ErrBackend.Code))

	fallback := Backend(http.StatusTeapot, "")
	assert.Equal(t, "API Error 418: I'm a teapot", fallback.Message)
}

func TestFromErrorWrapsUnknown(t *testing.T) {
	err := FromError(stdErrors.New("boom"))
	assert.Equal(t, ErrInternal.Code, err.Code)
	assert.Nil(t, FromError(nil))

	clone := Clone(ErrValidation, "title is required")
	assert.Equal(t, "title is required", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
}
