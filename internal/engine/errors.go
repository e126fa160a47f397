// Package engine implements the declarative rule tree that cleans a URL:
// StringSource expressions, Condition predicates, and Action
// transformations, evaluated against a mutable TaskState, plus the
// Cleaner document (Params/ParamsDiff/ProfilesConfig) that configures
// them and the Job/TaskState types that carry per-task context.
//
// All of these types live in one package because they are mutually
// recursive: an Action can hold a Condition, which can hold a
// StringSource, which can hold an Action (via Function/CallArg) — mirroring
// how the system this is modeled on keeps the same types in a single crate.
package engine

import (
	"errors"
	"fmt"
)

// Kind distinguishes the broad error categories of spec.md §7. It is
// carried on every engine error so callers (and tests) can assert on the
// category without string-matching messages.
type Kind int

const (
	KindExplicit Kind = iota
	KindParse
	KindStructural
	KindBounds
	KindMissing
	KindCacheIO
	KindHTTPIO
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindExplicit:
		return "explicit"
	case KindParse:
		return "parse"
	case KindStructural:
		return "structural"
	case KindBounds:
		return "bounds"
	case KindMissing:
		return "missing"
	case KindCacheIO:
		return "cache-io"
	case KindHTTPIO:
		return "http-io"
	case KindConfiguration:
		return "configuration"
	default:
		return "unknown"
	}
}

// Error is the engine's typed error, carrying both a Kind and the node
// that raised it (for diagnostic output, never parsed by the engine
// itself).
type Error struct {
	Kind Kind
	Op   string // e.g. "Action.SetQueryParam", "StringSource.Var"
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s (%s)", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, op string, err error) error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func explicitErr(op, msg string) error { return newErr(KindExplicit, op, errors.New(msg)) }

// TryElseError is returned by a TryElse combinator when both branches
// fail; it carries both underlying errors per spec.md §7.
type TryElseError struct {
	First, Second error
}

func (e *TryElseError) Error() string {
	return fmt.Sprintf("try-else: both branches failed: first=%v second=%v", e.First, e.Second)
}

// FirstNotErrorError is returned by a FirstNotError combinator when every
// branch fails; it carries every underlying error.
type FirstNotErrorError struct {
	Errs []error
}

func (e *FirstNotErrorError) Error() string {
	return fmt.Sprintf("first-not-error: all %d branches failed: %v", len(e.Errs), e.Errs)
}

var (
	// ErrMissing is wrapped by KindMissing errors naming an absent var,
	// set, list, map, partitioning, or function.
	ErrMissing = errors.New("not present")
	// ErrCachedUrlIsNone is returned by Action.Cache when a cache hit's
	// value is explicitly None (distinct from a cache miss).
	ErrCachedUrlIsNone = explicitErr("Action.Cache", "cached entry is None")
)
