package expr

// Node is a parsed expression.
type Node interface {
	node()
}

// Num is a numeric literal; Text is the literal as written.
type Num struct {
	Text  string
	Value float64
}

// Const is a named constant rewritten to a fixed literal.
type Const struct {
	Name  string
	Text  string
	Value float64
}

// Var is one of the reserved variables x, y, t.
type Var struct {
	Name string
}

// Param is a free parameter. Index is its position in Compiled.Params.
type Param struct {
	Name  string
	Index int
}

// Neg is unary minus.
type Neg struct {
	X Node
}

// Binary is one of + - * /.
type Binary struct {
	Op   byte
	L, R Node
}

// Pow is the right-associative ^ operator.
type Pow struct {
	Base, Exp Node
}

// maxUnrolledPower is the largest literal exponent expanded into repeated
// multiplication. GLSL pow is undefined for a negative base.
const maxUnrolledPower = 4

// smallPower returns the exponent of n when it is an integer literal in
// [0, maxUnrolledPower].
func smallPower(n *Pow) (int, bool) {
	num, ok := n.Exp.(*Num)
	if !ok || num.Value < 0 || num.Value > maxUnrolledPower || num.Value != float64(int(num.Value)) {
		return 0, false
	}
	return int(num.Value), true
}

// Call is a call to an allowed function. Fn is already de-aliased.
type Call struct {
	Fn   string
	Args []Node
}

func (*Num) node()    {}
func (*Const) node()  {}
func (*Var) node()    {}
func (*Param) node()  {}
func (*Neg) node()    {}
func (*Binary) node() {}
func (*Pow) node()    {}
func (*Call) node()   {}

type arity struct{ min, max int }

// functions is the call allow-list.
var functions = map[string]arity{
	"sin": {1, 1}, "cos": {1, 1}, "tan": {1, 1},
	"asin": {1, 1}, "acos": {1, 1}, "atan": {1, 2}, "atan2": {2, 2},
	"exp": {1, 1}, "log": {1, 1}, "sqrt": {1, 1},
	"abs": {1, 1}, "sign": {1, 1}, "floor": {1, 1}, "ceil": {1, 1},
	"min": {2, 2}, "max": {2, 2}, "pow": {2, 2},
	"sinh": {1, 1}, "cosh": {1, 1}, "tanh": {1, 1},
	"mod": {2, 2}, "fract": {1, 1},
}

var aliases = map[string]string{
	"ln": "log",
}

// Literal spellings are shared by every target so the shader and the host
// agree to the last digit.
const (
	piLiteral = "3.14159265358979"
	eLiteral  = "2.71828182845905"
)

var constants = map[string]string{
	"pi": piLiteral, "PI": piLiteral,
	"e": eLiteral, "E": eLiteral,
}

var variables = map[string]bool{"x": true, "y": true, "t": true}

// IsFunction reports whether name is callable, aliases included.
func IsFunction(name string) bool {
	if _, ok := aliases[name]; ok {
		return true
	}
	_, ok := functions[name]
	return ok
}
