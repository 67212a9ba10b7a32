package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesByCode(t *testing.T) {
	err := NewDomainError("NOT_FOUND", "Product not found")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidInput))
	assert.True(t, errors.Is(fmt.Errorf("lookup: %w", err), ErrNotFound))
}

func TestDomainError_Wrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := WrapDomainError("UPLOAD_FAILED", "Image upload failed", cause)

	assert.True(t, errors.Is(err, ErrUploadFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "Image upload failed: connection reset", err.Error())
	assert.Equal(t, "Resource not found", ErrNotFound.Error())
}
