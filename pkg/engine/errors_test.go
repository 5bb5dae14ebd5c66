package engine

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"nil", nil, ""},
		{"args", WrapArgsError(errors.New("bad value")), "ARGS_INVALID"},
		{"cycle", NewCycleError([]string{"A", "B", "A"}), "GRAPH_INVALID"},
		{"unknown dep", NewUnknownDependencyError("A", "Ghost"), "GRAPH_INVALID"},
		{"preflight edge", NewPreflightEdgeError("A", "Check"), "GRAPH_INVALID"},
		{"ambiguous input", NewAmbiguousInputError("A", "slot", "reason"), "GRAPH_INVALID"},
		{"unresolved", NewUnresolvedReferenceError("A", "region"), "REF_UNRESOLVED"},
		{"preflight", NewPreflightError("Check", errors.New("bad creds")), "PREFLIGHT_FAILED"},
		{"module", NewModuleError("A", errors.New("boom")), "MODULE_FAILED"},
		{"uncoded wrap", fmt.Errorf("wrapped: %w", ErrGraphInvalid), "GRAPH_INVALID"},
		{"unknown error", errors.New("mystery"), "MODULE_FAILED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ErrorCode(tt.err))
		})
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, ExitCode(nil))
	assert.Equal(t, 2, ExitCode(WrapArgsError(errors.New("x"))))
	assert.Equal(t, 2, ExitCode(NewCycleError([]string{"A", "A"})))
	assert.Equal(t, 2, ExitCode(NewUnresolvedReferenceError("A", "r")))
	assert.Equal(t, 3, ExitCode(NewPreflightError("Check", errors.New("x"))))
	assert.Equal(t, 1, ExitCode(NewModuleError("A", errors.New("x"))))
	assert.Equal(t, 1, ExitCode(errors.New("mystery")))
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("root cause")
	err := NewModuleError("A", cause)

	assert.True(t, errors.Is(err, ErrModuleFailed))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "A")

	var coded errorCoder
	assert.True(t, errors.As(err, &coded))
	assert.Equal(t, "MODULE_FAILED", coded.Code())
}

func TestWrappersPassNil(t *testing.T) {
	assert.Nil(t, WrapArgsError(nil))
	assert.Nil(t, WrapGraphError(nil))
	assert.Nil(t, WithErrorCode(nil, "X"))
}
