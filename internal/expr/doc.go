// Package expr compiles scalar field expressions.
//
// A source string such as "mu*(1 - x^2)*y - x" is tokenized, parsed into a
// small syntax tree and then emitted once per target:
//
//   - [Compiled.Code]: a GLSL expression fragment for the field shader
//   - [Compiled.Eval]: a host evaluator with the same semantics
//
// Identifiers other than x, y, t, the constants pi/e and the allowed
// functions are free parameters, reported in encounter order:
//
//	c := expr.Compile("a*x - b*x*y")
//	// c.Params == []string{"a", "b"}
//	v := c.Eval.Eval(1, 2, 0, params)
//
// Compile never panics; malformed input is reported through [Compiled.Err]
// as a *dynamo.CompileError.
package expr
