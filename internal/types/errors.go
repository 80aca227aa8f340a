package types

import "fmt"

// OutOfBoundsError is returned when attempting to read beyond buffer bounds.
type OutOfBoundsError struct {
	Path   string
	What   string
	Offset int64
	Length int
	Size   int64
}

func (e *OutOfBoundsError) Error() string {
	if e.Offset < 0 || e.Offset >= e.Size {
		return fmt.Sprintf("%s: offset %d out of bounds (file size: %d) while reading %s",
			e.Path, e.Offset, e.Size, e.What)
	}
	return fmt.Sprintf("%s: read of %d bytes at offset %d would exceed file size %d while reading %s",
		e.Path, e.Length, e.Offset, e.Size, e.What)
}

// Kind classifies a fatal tag error.
type Kind int

const (
	// KindTagNotFound means no "ID3" magic exists in the file.
	KindTagNotFound Kind = iota + 1
	// KindVersionUnsupported means the tag major version is above 4.
	KindVersionUnsupported
	// KindInvalidFlags means one of the low four header flag bits is set.
	KindInvalidFlags
	// KindTruncatedTag means the declared tag size runs to or past end of file.
	KindTruncatedTag
	// KindMalformedTag means a frame or extended header runs past the tag end.
	KindMalformedTag
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindTagNotFound:
		return "tag not found"
	case KindVersionUnsupported:
		return "version unsupported"
	case KindInvalidFlags:
		return "invalid flags"
	case KindTruncatedTag:
		return "truncated tag"
	case KindMalformedTag:
		return "malformed tag"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ExitCode returns the process exit code reported for this kind.
// The numbering matches the kind values, 1 through 5.
func (k Kind) ExitCode() int {
	return int(k)
}

// TagError is returned when the ID3v2 tag cannot be processed.
//
// All TagErrors are raised before anything is written, so the file on
// disk is unchanged when one is returned.
type TagError struct {
	Path   string
	Reason string
	Offset int64
	Kind   Kind
}

func (e *TagError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s at offset %d", e.Path, e.Kind, e.Offset)
	}
	return fmt.Sprintf("%s: %s at offset %d: %s", e.Path, e.Kind, e.Offset, e.Reason)
}

// Is reports whether target is a TagError of the same kind.
// This lets callers match with errors.Is(err, types.ErrTruncatedTag).
func (e *TagError) Is(target error) bool {
	t, ok := target.(*TagError)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is matching by kind.
var (
	ErrTagNotFound        = &TagError{Kind: KindTagNotFound}
	ErrVersionUnsupported = &TagError{Kind: KindVersionUnsupported}
	ErrInvalidFlags       = &TagError{Kind: KindInvalidFlags}
	ErrTruncatedTag       = &TagError{Kind: KindTruncatedTag}
	ErrMalformedTag       = &TagError{Kind: KindMalformedTag}
)

// Warning represents a non-fatal issue encountered while processing a tag.
//
// Warnings never stop processing. Examples include:
//   - An ID3v2.4 tag with a non-zero revision
//   - A footer flag together with trailing padding
//
// Warnings are collected in Result.Warnings and forwarded to the Advisor.
type Warning struct {
	// Stage where the warning occurred
	Stage string // "header", "padding"

	// Warning message
	Message string

	// File offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
