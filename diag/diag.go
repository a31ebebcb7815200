// Package diag implements the backend's error taxonomy (spec §7).
//
// Every pass (symtab, check, mir, ssa) returns a plain (T, error); the
// first error aborts the pipeline and the emitter is never reached — there
// is no multi-error recovery, unlike a typical editor-facing diagnostics
// list (contrast HugoDaniel/miniray's severity-tagged DiagnosticList, which
// accumulates many diagnostics for an IDE; this backend is a batch compiler
// stage and stops at the first failure).
package diag

import (
	"fmt"

	"github.com/programming-zone/silk/ast"
	"golang.org/x/xerrors"
)

// Kind classifies an Error per the table in spec §7.
type Kind int

const (
	// Resolution: undefined identifier, expected value got type (or vice versa).
	Resolution Kind = iota
	// Duplication: symbol already defined, duplicate parameter.
	Duplication
	// Typing: mismatched types, unviable cast, non-boolean condition, non-function
	// callee, incorrect arity.
	Typing
	// Structural: invalid lvalue, member access on non-labeled struct, index of
	// non-array, not-a-block where a block is required.
	Structural
	// Control: break/continue outside a loop.
	Control
	// Unsupported: a construct that must have been resolved upstream (template
	// instantiation reaching the backend).
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case Resolution:
		return "resolution"
	case Duplication:
		return "duplication"
	case Typing:
		return "typing"
	case Structural:
		return "structural"
	case Control:
		return "control"
	case Unsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Error is the concrete error value every pass returns. It carries a Kind
// so callers can classify a failure without string-matching, and an
// optional wrapped cause so xerrors.Errorf-style chains unwrap correctly.
type Error struct {
	Kind Kind
	Msg  string
	Pos  Pos
	Err  error // wrapped cause, may be nil
}

// Pos is a minimal source position. The lexer/parser is out of scope (spec
// §1); positions simply pass through from whatever the upstream pass
// attached to the parse tree, defaulting to the zero value when absent.
// It is an alias of ast.Pos so every pass can hand a node's Pos straight to
// New/Wrap without a conversion.
type Pos = ast.Pos

func (e *Error) Error() string {
	if e.Pos.Line != 0 {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Kind, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error with no wrapped cause.
func New(kind Kind, pos Pos, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// Wrap constructs an Error that wraps cause, using xerrors so the result
// participates in errors.Is/errors.As chains exactly the way
// golang.org/x/tools/internal/lsp/cache wraps loader errors (cache/load.go's
// errors.Errorf("...: %w", err) pattern).
func Wrap(kind Kind, pos Pos, cause error, format string, args ...any) *Error {
	wrapped := xerrors.Errorf(format+": %w", append(append([]any{}, args...), cause)...)
	return &Error{Kind: kind, Pos: pos, Msg: wrapped.Error(), Err: cause}
}

// Is reports whether err is a *Error of the given Kind, unwrapping through
// any wrapped causes.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if de, ok := err.(*Error); ok {
			e = de
			if e.Kind == kind {
				return true
			}
			err = e.Err
			continue
		}
		err = xerrors.Unwrap(err)
	}
	return false
}
