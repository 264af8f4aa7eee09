// Package errors defines the structured error taxonomy shared by the
// composition editor, block store, and preview pipeline. Errors carry a
// category and a stable string code so callers can branch on failure kind
// without string matching.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Type represents different categories of errors.
type Type string

const (
	TypeValidation Type = "validation"
	TypeState      Type = "state"
	TypeIO         Type = "io"
	TypeNetwork    Type = "network"
	TypeInternal   Type = "internal"
)

// Stable error codes surfaced to API consumers.
const (
	CodeInvalidBlockConfig = "invalid_block_config"
	CodeBlockNotFound      = "block_not_found"
	CodeIllegalReorder     = "illegal_reorder"
	CodeInvalidSectionID   = "invalid_section_id"
	CodeDuplicateSectionID = "duplicate_section_id"
	CodeUnknownBlockType   = "unknown_block_type"
	CodeUnknownTheme       = "unknown_theme"
	CodeBoundedList        = "bounded_list"
	CodeConfigNotFound     = "config_not_found"
	CodeGatewaySaveFailed  = "gateway_save_failed"
)

// Error is a structured error with category, code, and optional cause.
type Error struct {
	Type    Type
	Code    string
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string

	if e.Code != "" {
		parts = append(parts, fmt.Sprintf("[%s]", e.Code))
	}
	parts = append(parts, e.Message)

	result := strings.Join(parts, " ")
	if e.Cause != nil {
		result += fmt.Sprintf(": %v", e.Cause)
	}

	return result
}

// Unwrap returns the underlying cause error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements error comparison by category and code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Type == t.Type && e.Code == t.Code
	}

	return false
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value interface{}) *Error {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value

	return e
}

// WithCause attaches an underlying cause.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause

	return e
}

// NewValidationError creates a validation error.
func NewValidationError(code, message string) *Error {
	return &Error{Type: TypeValidation, Code: code, Message: message}
}

// NewStateError creates a state error (an operation that does not apply to
// the current state of the composition).
func NewStateError(code, message string) *Error {
	return &Error{Type: TypeState, Code: code, Message: message}
}

// NewIOError creates an IO error.
func NewIOError(code, message string, cause error) *Error {
	return &Error{Type: TypeIO, Code: code, Message: message, Cause: cause}
}

// NewInternalError creates an internal error.
func NewInternalError(code, message string, cause error) *Error {
	return &Error{Type: TypeInternal, Code: code, Message: message, Cause: cause}
}

// InvalidBlockConfig reports a custom block config that fails its type's
// schema. The draft is left unchanged by the failed operation.
func InvalidBlockConfig(blockType, reason string) *Error {
	return NewValidationError(CodeInvalidBlockConfig,
		fmt.Sprintf("invalid %s config: %s", blockType, reason)).
		WithContext("block_type", blockType)
}

// BlockNotFound reports an edit referencing an absent block id.
func BlockNotFound(id string) *Error {
	return NewStateError(CodeBlockNotFound, fmt.Sprintf("block %q not found", id)).
		WithContext("block_id", id)
}

// IllegalReorder reports a reorder payload that is not a permutation of the
// current section ids. The prior order is always preserved.
func IllegalReorder(reason string) *Error {
	return NewStateError(CodeIllegalReorder, "illegal reorder: "+reason)
}

// UnknownTheme reports a theme id with no registered renderer.
func UnknownTheme(id string) *Error {
	return NewValidationError(CodeUnknownTheme, fmt.Sprintf("unknown theme %q", id)).
		WithContext("theme_id", id)
}

// HasCode reports whether err is a structured error carrying the given code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}

	return false
}
