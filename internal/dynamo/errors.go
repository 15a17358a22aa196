package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors.
var (
	// ErrNoDevice indicates no usable rendering device at initialization.
	ErrNoDevice = errors.New("dynamo: no usable rendering device")

	// ErrUnknownParam indicates a parameter name the current field does not reference.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")

	// ErrEmptyExpression indicates blank equation text.
	ErrEmptyExpression = errors.New("dynamo: empty expression")

	// ErrInvalidSurface indicates a surface with non-positive dimensions.
	ErrInvalidSurface = errors.New("dynamo: invalid surface dimensions")

	// ErrCompile is wrapped by every CompileError.
	ErrCompile = errors.New("dynamo: expression compile failed")

	// ErrShaderBuild is wrapped by every ShaderBuildError.
	ErrShaderBuild = errors.New("dynamo: shader build failed")
)

// CompileError reports malformed expression text. Pos is the byte offset of
// the offending input, or -1 when the failure has no single position.
type CompileError struct {
	Component string
	Pos       int
	Msg       string
}

func (e *CompileError) Error() string {
	if e.Component != "" {
		return e.Component + ": " + e.Msg
	}
	return e.Msg
}

func (e *CompileError) Unwrap() error {
	return ErrCompile
}

// WithComponent returns a copy of e labelled with the equation it came from.
func (e *CompileError) WithComponent(name string) *CompileError {
	c := *e
	c.Component = name
	return &c
}

// ShaderBuildError reports generated code rejected by the device compiler or
// linker. Log carries the device's info log verbatim.
type ShaderBuildError struct {
	Stage string
	Log   string
}

func (e *ShaderBuildError) Error() string {
	return fmt.Sprintf("shader %s: %s", e.Stage, e.Log)
}

func (e *ShaderBuildError) Unwrap() error {
	return ErrShaderBuild
}
