package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	err := NewValidationError(CodeInvalidBlockConfig, "missing quotes")
	assert.Equal(t, "[invalid_block_config] missing quotes", err.Error())

	cause := stderrors.New("boom")
	wrapped := NewInternalError(CodeGatewaySaveFailed, "save failed", cause)
	assert.Contains(t, wrapped.Error(), "save failed")
	assert.Contains(t, wrapped.Error(), "boom")
	assert.Equal(t, cause, stderrors.Unwrap(wrapped))
}

func TestErrorIs(t *testing.T) {
	err := BlockNotFound("b-1")

	assert.True(t, stderrors.Is(err, NewStateError(CodeBlockNotFound, "")))
	assert.False(t, stderrors.Is(err, NewStateError(CodeIllegalReorder, "")))
	assert.False(t, stderrors.Is(err, stderrors.New("block \"b-1\" not found")))
}

func TestErrorIsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("editor: %w", IllegalReorder("duplicate id"))

	assert.True(t, HasCode(err, CodeIllegalReorder))
	assert.False(t, HasCode(err, CodeBlockNotFound))
	assert.True(t, stderrors.Is(err, NewStateError(CodeIllegalReorder, "")))
}

func TestHasCodePlainError(t *testing.T) {
	assert.False(t, HasCode(stderrors.New("plain"), CodeBlockNotFound))
	assert.False(t, HasCode(nil, CodeBlockNotFound))
}

func TestWithContext(t *testing.T) {
	err := InvalidBlockConfig("faq", "items are required")

	assert.Equal(t, "faq", err.Context["block_type"])
	err.WithContext("field", "items")
	assert.Equal(t, "items", err.Context["field"])
}
