package normurl

import "errors"

// Typed errors surfaced by NormUrl's path and query segment operations, per
// spec.md §4.1's "structural" error taxonomy: these report a URL-format
// constraint violation, not a parse failure or a bug.
var (
	// ErrPathSegmentCannotContainSlash is returned by the checked path
	// segment setters/inserters when value contains an unescaped "/".
	ErrPathSegmentCannotContainSlash = errors.New("path segment cannot contain a slash")

	// ErrEmptyPath is returned when an operation would leave the path with
	// zero segments; a URL path must always have at least one.
	ErrEmptyPath = errors.New("path must have at least one segment")
)
