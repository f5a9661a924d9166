// Package errors defines the comparison error kinds shared across the
// toolkit plus the structured API error type used by the HTTP surface.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel kinds for per-file failures. These are the only hard errors the
// parsing layer produces; everything below them degrades gracefully.
var (
	// ErrUnreadableFile marks an I/O failure reading one side.
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrEmptyFile marks a zero-length or whitespace-only file.
	ErrEmptyFile = errors.New("empty file")
	// ErrParseFailure marks an unexpected condition during classification
	// or diffing, wrapped with the failing stage.
	ErrParseFailure = errors.New("parse failure")
)

// Unreadable wraps an I/O error with the file it concerns.
func Unreadable(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrUnreadableFile, path, err)
}

// Empty reports a zero-length or whitespace-only file.
func Empty(path string) error {
	return fmt.Errorf("%w: %s", ErrEmptyFile, path)
}

// ParseFailure wraps an unexpected error with the stage that produced it.
func ParseFailure(stage string, err error) error {
	return fmt.Errorf("%w in %s: %v", ErrParseFailure, stage, err)
}

// IsFileError reports whether err is one of the per-file sentinel kinds.
func IsFileError(err error) bool {
	return errors.Is(err, ErrUnreadableFile) || errors.Is(err, ErrEmptyFile)
}
