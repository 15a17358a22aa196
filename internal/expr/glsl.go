package expr

import (
	"strings"
)

// GLSL renders n as a GLSL float expression. Every binary operation is
// parenthesized so the text is independent of GLSL precedence.
func GLSL(n Node) string {
	var b strings.Builder
	writeGLSL(&b, n)
	return b.String()
}

func writeGLSL(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case *Num:
		b.WriteString(glslFloat(n.Text))
	case *Const:
		b.WriteString(n.Text)
	case *Var:
		b.WriteString(n.Name)
	case *Param:
		b.WriteString(n.Name)
	case *Neg:
		b.WriteString("(-")
		writeGLSL(b, n.X)
		b.WriteByte(')')
	case *Binary:
		b.WriteByte('(')
		writeGLSL(b, n.L)
		b.WriteByte(' ')
		b.WriteByte(n.Op)
		b.WriteByte(' ')
		writeGLSL(b, n.R)
		b.WriteByte(')')
	case *Pow:
		if k, ok := smallPower(n); ok {
			writePowerProduct(b, n.Base, k)
			return
		}
		b.WriteString("pow(")
		writeGLSL(b, n.Base)
		b.WriteString(", ")
		writeGLSL(b, n.Exp)
		b.WriteByte(')')
	case *Call:
		fn := n.Fn
		if fn == "atan2" {
			// GLSL spells the two-argument arctangent atan(y, x).
			fn = "atan"
		}
		b.WriteString(fn)
		b.WriteByte('(')
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			writeGLSL(b, a)
		}
		b.WriteByte(')')
	}
}

func writePowerProduct(b *strings.Builder, base Node, k int) {
	if k == 0 {
		b.WriteString("1.0")
		return
	}
	b.WriteByte('(')
	for i := 0; i < k; i++ {
		if i > 0 {
			b.WriteString(" * ")
		}
		writeGLSL(b, base)
	}
	b.WriteByte(')')
}

// glslFloat makes sure a literal is parsed as float, not int, by GLSL.
func glslFloat(text string) string {
	if strings.HasPrefix(text, ".") {
		text = "0" + text
	}
	if strings.HasSuffix(text, ".") {
		return text + "0"
	}
	if !strings.Contains(text, ".") {
		return text + ".0"
	}
	return text
}
