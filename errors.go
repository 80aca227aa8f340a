package id3depad

import (
	"errors"

	"github.com/simonhull/id3depad/internal/types"
)

// OutOfBoundsError is an alias to types.OutOfBoundsError.
// Re-exporting from internal/types to maintain public API.
type OutOfBoundsError = types.OutOfBoundsError

// TagError is an alias to types.TagError.
// Re-exporting from internal/types to maintain public API.
type TagError = types.TagError

// Kind is an alias to types.Kind.
type Kind = types.Kind

// Warning is an alias to types.Warning.
// Re-exporting from internal/types to maintain public API.
type Warning = types.Warning

// Re-export the error kinds.
const (
	KindTagNotFound        = types.KindTagNotFound
	KindVersionUnsupported = types.KindVersionUnsupported
	KindInvalidFlags       = types.KindInvalidFlags
	KindTruncatedTag       = types.KindTruncatedTag
	KindMalformedTag       = types.KindMalformedTag
)

// Sentinels for errors.Is.
var (
	ErrTagNotFound        = types.ErrTagNotFound
	ErrVersionUnsupported = types.ErrVersionUnsupported
	ErrInvalidFlags       = types.ErrInvalidFlags
	ErrTruncatedTag       = types.ErrTruncatedTag
	ErrMalformedTag       = types.ErrMalformedTag
)

// ExitCodeFailure is reported for errors that are not tag errors:
// I/O, configuration and validation failures.
const ExitCodeFailure = 6

// ExitCode maps an error returned by this package to a process exit code.
//
//	0  nil
//	1  tag not found
//	2  version unsupported
//	3  invalid flags
//	4  truncated tag
//	5  malformed tag
//	6  anything else
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var tagErr *TagError
	if errors.As(err, &tagErr) {
		return tagErr.Kind.ExitCode()
	}
	return ExitCodeFailure
}
