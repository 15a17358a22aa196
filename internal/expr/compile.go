package expr

import (
	"strings"
)

// Compiled is the immutable result of compiling one expression. On failure
// Code is empty, Params is empty, Eval is nil and Err is a
// *dynamo.CompileError.
type Compiled struct {
	Source string
	Code   string
	Params []string
	Eval   *Evaluator
	Err    error
}

// OK reports whether compilation succeeded.
func (c *Compiled) OK() bool { return c.Err == nil }

// Compile translates src into GLSL and a host evaluator.
func Compile(src string) *Compiled {
	src = strings.TrimSpace(src)
	n, params, err := Parse(src)
	if err != nil {
		return &Compiled{Source: src, Params: []string{}, Err: err}
	}
	if params == nil {
		params = []string{}
	}
	return &Compiled{
		Source: src,
		Code:   GLSL(n),
		Params: params,
		Eval:   newEvaluator(n, params),
	}
}
