// Package field pairs the two component expressions of a planar system.
package field

import (
	"errors"

	"gonum.org/v1/gonum/spatial/r2"

	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/expr"
)

// Component labels used in compile errors.
const (
	ComponentX = "dx/dt"
	ComponentY = "dy/dt"
)

// Field is a compiled vector field (dx/dt, dy/dt).
type Field struct {
	DX, DY *expr.Compiled
	params []string
}

// Func evaluates the field at (x, y, t) with fixed parameter values.
type Func func(x, y, t float64) r2.Vec

// Compile compiles both components. The parameter list is the dx/dt
// parameters followed by any only dy/dt references. A failure in either
// component returns a *dynamo.CompileError naming it, dx/dt first.
func Compile(dx, dy string) (*Field, error) {
	f := &Field{DX: expr.Compile(dx), DY: expr.Compile(dy)}
	if err := componentErr(ComponentX, f.DX.Err); err != nil {
		return nil, err
	}
	if err := componentErr(ComponentY, f.DY.Err); err != nil {
		return nil, err
	}
	f.params = mergeParams(f.DX.Params, f.DY.Params)
	return f, nil
}

func componentErr(name string, err error) error {
	if err == nil {
		return nil
	}
	var ce *dynamo.CompileError
	if errors.As(err, &ce) {
		return ce.WithComponent(name)
	}
	return err
}

func mergeParams(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				out = append(out, n)
			}
		}
	}
	return out
}

// Params returns the union of both components' parameters.
func (f *Field) Params() []string {
	out := make([]string, len(f.params))
	copy(out, f.params)
	return out
}

// Velocity evaluates the field once, reading parameters from p.
func (f *Field) Velocity(x, y, t float64, p dynamo.ParamSource) r2.Vec {
	return r2.Vec{X: f.DX.Eval.Eval(x, y, t, p), Y: f.DY.Eval.Eval(x, y, t, p)}
}

// Bind snapshots the parameter values and returns a Func suitable for tight
// integration loops. It is safe for concurrent use.
func (f *Field) Bind(p dynamo.ParamSource) Func {
	fx, fy := f.DX.Eval.Bind(p), f.DY.Eval.Bind(p)
	return func(x, y, t float64) r2.Vec {
		return r2.Vec{X: fx(x, y, t), Y: fy(x, y, t)}
	}
}
