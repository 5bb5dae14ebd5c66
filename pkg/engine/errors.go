package engine

import (
	"errors"
	"fmt"
	"strings"
)

const (
	errorCodeArgsInvalid    = "ARGS_INVALID"
	errorCodeGraphInvalid   = "GRAPH_INVALID"
	errorCodeUnresolvedRef  = "REF_UNRESOLVED"
	errorCodePreflightAbort = "PREFLIGHT_FAILED"
	errorCodeModuleFailed   = "MODULE_FAILED"
)

var (
	// ErrArgsInvalid indicates the recipe argument table failed validation.
	ErrArgsInvalid = errors.New("argument validation failed")

	// ErrGraphInvalid indicates the recipe dependency graph is unusable
	// (cycle, unknown dependency, preflight edge, ambiguous sentinel).
	ErrGraphInvalid = errors.New("recipe graph invalid")

	// ErrUnresolvedRef indicates an "@name" substitution target is not a
	// declared recipe argument.
	ErrUnresolvedRef = errors.New("unresolved argument reference")

	// ErrPreflightFailed indicates an environment preflight check failed
	// and the run was aborted before any module started.
	ErrPreflightFailed = errors.New("preflight check failed")

	// ErrModuleFailed indicates at least one module failed at runtime and
	// the run degraded to a partial failure.
	ErrModuleFailed = errors.New("module execution failed")
)

type errorCoder interface {
	error
	Code() string
}

type withCodeError struct {
	error
	code string
}

func (e *withCodeError) Code() string {
	return e.code
}

func (e *withCodeError) Unwrap() error {
	return e.error
}

// WithErrorCode annotates err with an engine error code.
func WithErrorCode(err error, code string) error {
	if err == nil {
		return nil
	}
	return &withCodeError{error: err, code: code}
}

// WrapArgsError annotates an argument validation failure.
func WrapArgsError(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(fmt.Errorf("%w: %w", ErrArgsInvalid, err), errorCodeArgsInvalid)
}

// NewCycleError reports a dependency cycle through the named nodes.
func NewCycleError(cycle []string) error {
	return WithErrorCode(
		fmt.Errorf("%w: dependency cycle: %s", ErrGraphInvalid, strings.Join(cycle, " -> ")),
		errorCodeGraphInvalid)
}

// NewUnknownDependencyError reports a wants entry that names no module.
func NewUnknownDependencyError(node, missing string) error {
	return WithErrorCode(
		fmt.Errorf("%w: module %q wants unknown module %q", ErrGraphInvalid, node, missing),
		errorCodeGraphInvalid)
}

// NewPreflightEdgeError reports a module depending on a preflight.
// Preflights are a separate, always-first phase and never a wants target.
func NewPreflightEdgeError(node, preflight string) error {
	return WithErrorCode(
		fmt.Errorf("%w: module %q wants preflight %q; preflights cannot be dependency targets", ErrGraphInvalid, node, preflight),
		errorCodeGraphInvalid)
}

// NewAmbiguousInputError reports a sentinel argument slot that cannot be
// bound to a single upstream producer.
func NewAmbiguousInputError(node, slot, reason string) error {
	return WithErrorCode(
		fmt.Errorf("%w: module %q: argument %q: %s", ErrGraphInvalid, node, slot, reason),
		errorCodeGraphInvalid)
}

// WrapGraphError annotates any other structural recipe failure.
func WrapGraphError(err error) error {
	if err == nil {
		return nil
	}
	return WithErrorCode(fmt.Errorf("%w: %w", ErrGraphInvalid, err), errorCodeGraphInvalid)
}

// NewUnresolvedReferenceError reports an "@name" reference with no
// matching declared argument.
func NewUnresolvedReferenceError(node, ref string) error {
	return WithErrorCode(
		fmt.Errorf("%w: module %q references undeclared argument %q", ErrUnresolvedRef, node, ref),
		errorCodeUnresolvedRef)
}

// NewPreflightError annotates a failed preflight check.
func NewPreflightError(node string, err error) error {
	return WithErrorCode(
		fmt.Errorf("%w: %s: %w", ErrPreflightFailed, node, err),
		errorCodePreflightAbort)
}

// NewModuleError annotates a failed module execution.
func NewModuleError(node string, err error) error {
	return WithErrorCode(
		fmt.Errorf("%w: %s: %w", ErrModuleFailed, node, err),
		errorCodeModuleFailed)
}

// ErrorCode resolves an error to its engine error code.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}

	var coded errorCoder
	if errors.As(err, &coded) {
		if code := coded.Code(); code != "" {
			return code
		}
	}

	switch {
	case errors.Is(err, ErrArgsInvalid):
		return errorCodeArgsInvalid
	case errors.Is(err, ErrGraphInvalid):
		return errorCodeGraphInvalid
	case errors.Is(err, ErrUnresolvedRef):
		return errorCodeUnresolvedRef
	case errors.Is(err, ErrPreflightFailed):
		return errorCodePreflightAbort
	default:
		return errorCodeModuleFailed
	}
}

// ExitCode maps errors to CLI exit codes. Structural problems that prevent
// any execution exit 2, an aborted run exits 3, a degraded run exits 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	switch {
	case errors.Is(err, ErrArgsInvalid),
		errors.Is(err, ErrGraphInvalid),
		errors.Is(err, ErrUnresolvedRef):
		return 2
	case errors.Is(err, ErrPreflightFailed):
		return 3
	default:
		return 1
	}
}
