/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package exitcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCodeConstants(t *testing.T) {
	assert.Equal(t, 0, Success)
	assert.Equal(t, 1, GeneralError)
	assert.Equal(t, 2, ConfigError)
	assert.Equal(t, 3, ValidationError)
	assert.Equal(t, 4, FileSystemError)
	assert.Equal(t, 5, GitError)
	assert.Equal(t, 6, PartialSuccess)
	assert.Equal(t, 8, UnsupportedFormat)
}

func TestString(t *testing.T) {
	tests := []struct {
		code     int
		expected string
	}{
		{Success, "Success"},
		{GeneralError, "General error"},
		{ConfigError, "Configuration error"},
		{ValidationError, "Validation error"},
		{FileSystemError, "File system error"},
		{GitError, "Git error"},
		{PartialSuccess, "Partial success"},
		{UnsupportedFormat, "Unsupported format"},
		{-1, "Unknown error"},
		{99, "Unknown error"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, String(tt.code))
		})
	}
}

func TestWrapAndCode(t *testing.T) {
	assert.Nil(t, Wrap(GitError, nil))
	assert.Equal(t, Success, Code(nil))
	assert.Equal(t, GeneralError, Code(errors.New("plain")))

	base := errors.New("revision not found")
	err := Wrap(GitError, base)
	assert.Equal(t, GitError, Code(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "revision not found", err.Error())

	// The code survives further wrapping.
	assert.Equal(t, GitError, Code(fmt.Errorf("generate: %w", err)))
}

func TestErrorWithoutCause(t *testing.T) {
	err := &Error{Code: PartialSuccess}
	assert.Equal(t, "Partial success", err.Error())
	assert.Nil(t, err.Unwrap())
}
