package expr

import (
	"math"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

// evalFunc evaluates a node. p holds parameter values indexed like
// Compiled.Params.
type evalFunc func(x, y, t float64, p []float64) float64

// Func is an evaluator bound to a fixed set of parameter values.
type Func func(x, y, t float64) float64

// Evaluator is the host-side equivalent of the generated GLSL.
type Evaluator struct {
	fn     evalFunc
	params []string
}

func newEvaluator(n Node, params []string) *Evaluator {
	return &Evaluator{fn: build(n), params: params}
}

// Eval evaluates at (x, y, t). A parameter missing from p evaluates as NaN.
func (e *Evaluator) Eval(x, y, t float64, p dynamo.ParamSource) float64 {
	return e.fn(x, y, t, e.values(p))
}

// Bind snapshots the parameter values once so the returned Func can be called
// in hot loops without lookups.
func (e *Evaluator) Bind(p dynamo.ParamSource) Func {
	vals := e.values(p)
	fn := e.fn
	return func(x, y, t float64) float64 {
		return fn(x, y, t, vals)
	}
}

func (e *Evaluator) values(p dynamo.ParamSource) []float64 {
	vals := make([]float64, len(e.params))
	for i, name := range e.params {
		v, ok := math.NaN(), false
		if p != nil {
			v, ok = p.Param(name)
		}
		if !ok {
			v = math.NaN()
		}
		vals[i] = v
	}
	return vals
}

func build(n Node) evalFunc {
	switch n := n.(type) {
	case *Num:
		v := n.Value
		return func(_, _, _ float64, _ []float64) float64 { return v }
	case *Const:
		v := n.Value
		return func(_, _, _ float64, _ []float64) float64 { return v }
	case *Var:
		switch n.Name {
		case "x":
			return func(x, _, _ float64, _ []float64) float64 { return x }
		case "y":
			return func(_, y, _ float64, _ []float64) float64 { return y }
		default:
			return func(_, _, t float64, _ []float64) float64 { return t }
		}
	case *Param:
		i := n.Index
		return func(_, _, _ float64, p []float64) float64 { return p[i] }
	case *Neg:
		a := build(n.X)
		return func(x, y, t float64, p []float64) float64 { return -a(x, y, t, p) }
	case *Binary:
		return buildBinary(n)
	case *Pow:
		if k, ok := smallPower(n); ok {
			return buildProduct(build(n.Base), k)
		}
		b, e := build(n.Base), build(n.Exp)
		return func(x, y, t float64, p []float64) float64 {
			return math.Pow(b(x, y, t, p), e(x, y, t, p))
		}
	case *Call:
		return buildCall(n)
	}
	panic("expr: unknown node")
}

// buildProduct multiplies k copies of b in the order the GLSL text does.
func buildProduct(b evalFunc, k int) evalFunc {
	return func(x, y, t float64, p []float64) float64 {
		if k == 0 {
			return 1
		}
		v := b(x, y, t, p)
		r := v
		for i := 1; i < k; i++ {
			r *= v
		}
		return r
	}
}

func buildBinary(n *Binary) evalFunc {
	l, r := build(n.L), build(n.R)
	switch n.Op {
	case '+':
		return func(x, y, t float64, p []float64) float64 { return l(x, y, t, p) + r(x, y, t, p) }
	case '-':
		return func(x, y, t float64, p []float64) float64 { return l(x, y, t, p) - r(x, y, t, p) }
	case '*':
		return func(x, y, t float64, p []float64) float64 { return l(x, y, t, p) * r(x, y, t, p) }
	default:
		return func(x, y, t float64, p []float64) float64 { return l(x, y, t, p) / r(x, y, t, p) }
	}
}

var unary = map[string]func(float64) float64{
	"sin": math.Sin, "cos": math.Cos, "tan": math.Tan,
	"asin": math.Asin, "acos": math.Acos, "atan": math.Atan,
	"exp": math.Exp, "log": math.Log, "sqrt": math.Sqrt,
	"abs": math.Abs, "sign": sign, "floor": math.Floor, "ceil": math.Ceil,
	"sinh": math.Sinh, "cosh": math.Cosh, "tanh": math.Tanh,
	"fract": fract,
}

var binary = map[string]func(float64, float64) float64{
	"atan": math.Atan2, "atan2": math.Atan2,
	"min": math.Min, "max": math.Max, "pow": math.Pow,
	"mod": mod,
}

func buildCall(n *Call) evalFunc {
	if len(n.Args) == 1 {
		f, a := unary[n.Fn], build(n.Args[0])
		return func(x, y, t float64, p []float64) float64 { return f(a(x, y, t, p)) }
	}
	f, a, b := binary[n.Fn], build(n.Args[0]), build(n.Args[1])
	return func(x, y, t float64, p []float64) float64 { return f(a(x, y, t, p), b(x, y, t, p)) }
}

// sign, fract and mod follow their GLSL definitions.

func sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return v
}

func fract(v float64) float64 { return v - math.Floor(v) }

func mod(a, b float64) float64 { return a - b*math.Floor(a/b) }
