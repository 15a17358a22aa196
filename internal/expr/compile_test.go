package expr_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/phaseflow/internal/dynamo"
	"github.com/san-kum/phaseflow/internal/expr"
)

func params(kv map[string]float64) *dynamo.Params {
	p := dynamo.NewParams()
	p.Seed(kv)
	return p
}

var _ = Describe("Compile", func() {
	Context("determinism", func() {
		It("yields identical code and parameter order for identical text", func() {
			src := "mu*(1 - x^2)*y - x + k*sin(omega*t)"
			a, b := expr.Compile(src), expr.Compile(src)
			Expect(a.Err).NotTo(HaveOccurred())
			Expect(a.Code).To(Equal(b.Code))
			Expect(a.Params).To(Equal(b.Params))
			Expect(a.Params).To(Equal([]string{"mu", "k", "omega"}))
		})
	})

	Context("parameter detection", func() {
		It("finds parameters in encounter order", func() {
			c := expr.Compile("a*x - b*x*y")
			Expect(c.Err).NotTo(HaveOccurred())
			Expect(c.Params).To(Equal([]string{"a", "b"}))
		})

		It("finds none in -y", func() {
			c := expr.Compile("-y")
			Expect(c.Err).NotTo(HaveOccurred())
			Expect(c.Params).To(BeEmpty())
			Expect(c.Code).To(Equal("(-y)"))
		})

		It("registers repeated names once", func() {
			c := expr.Compile("a*a + b - a")
			Expect(c.Params).To(Equal([]string{"a", "b"}))
		})

		It("does not treat constants, variables or functions as parameters", func() {
			c := expr.Compile("pi*x + e*y + PI*t + E + exp(1)")
			Expect(c.Err).NotTo(HaveOccurred())
			Expect(c.Params).To(BeEmpty())
		})

		It("defaults detected parameters to 1.0 once synced", func() {
			c := expr.Compile("a*x - b*x*y")
			p := dynamo.NewParams()
			p.Sync(c.Params)
			for _, name := range c.Params {
				v, ok := p.Param(name)
				Expect(ok).To(BeTrue())
				Expect(v).To(Equal(1.0))
			}
		})
	})

	Context("implicit multiplication", func() {
		DescribeTable("compiles like the explicit form",
			func(implicit, explicit string) {
				a, b := expr.Compile(implicit), expr.Compile(explicit)
				Expect(a.Err).NotTo(HaveOccurred())
				Expect(a.Code).To(Equal(b.Code))
				Expect(a.Params).To(Equal(b.Params))
			},
			Entry("number before identifier", "2x", "2*x"),
			Entry("number before paren", "3(x+1)", "3*(x+1)"),
			Entry("paren before paren", "(x+1)(y-1)", "(x+1)*(y-1)"),
			Entry("paren before identifier", "(x+1)y", "(x+1)*y"),
			Entry("paren before number", "(x+1)2", "(x+1)*2"),
			Entry("number before function", "2sin(x)", "2*sin(x)"),
		)

		It("does not multiply an identifier followed by '('", func() {
			c := expr.Compile("f(x)")
			Expect(c.Err).To(HaveOccurred())
		})
	})

	Context("functions", func() {
		It("aliases ln to log", func() {
			a, b := expr.Compile("ln(x)"), expr.Compile("log(x)")
			Expect(a.Code).To(Equal("log(x)"))
			Expect(a.Code).To(Equal(b.Code))
		})

		It("emits atan2 as two-argument GLSL atan", func() {
			c := expr.Compile("atan2(y, x)")
			Expect(c.Code).To(Equal("atan(y, x)"))
		})

		It("emits ^ as pow and keeps it right-associative", func() {
			c := expr.Compile("x^y^0.5")
			Expect(c.Code).To(Equal("pow(x, pow(y, 0.5))"))
			Expect(expr.Compile("x^2^3").Code).To(Equal("pow(x, (2.0 * 2.0 * 2.0))"))
		})

		It("binds ^ tighter than unary minus", func() {
			c := expr.Compile("-x^2")
			Expect(c.Code).To(Equal("(-(x * x))"))
			Expect(c.Eval.Eval(3, 0, 0, nil)).To(Equal(-9.0))
		})

		It("expands small integer powers so negative bases stay defined", func() {
			Expect(expr.Compile("x^3").Code).To(Equal("(x * x * x)"))
			Expect(expr.Compile("(x+1)^2").Code).To(Equal("((x + 1.0) * (x + 1.0))"))
			Expect(expr.Compile("x^0").Code).To(Equal("1.0"))
			Expect(expr.Compile("x^5").Code).To(Equal("pow(x, 5.0)"))
			Expect(expr.Compile("x^1.5").Code).To(Equal("pow(x, 1.5)"))

			c := expr.Compile("x^3")
			Expect(c.Eval.Eval(-2, 0, 0, nil)).To(Equal(-8.0))
		})

		It("rewrites constants to fixed literals", func() {
			c := expr.Compile("pi + e")
			Expect(c.Code).To(Equal("(3.14159265358979 + 2.71828182845905)"))
		})

		It("checks arity", func() {
			Expect(expr.Compile("sin(x, y)").Err).To(MatchError(ContainSubstring("sin expects 1")))
			Expect(expr.Compile("pow(x)").Err).To(MatchError(ContainSubstring("pow expects 2")))
			Expect(expr.Compile("atan(y, x)").Err).NotTo(HaveOccurred())
		})
	})

	Context("errors", func() {
		It("reports an unterminated call", func() {
			c := expr.Compile("sin(x")
			Expect(c.Err).To(HaveOccurred())
			Expect(c.Err.Error()).NotTo(BeEmpty())
			Expect(c.Code).To(BeEmpty())
			Expect(c.Params).To(BeEmpty())
			Expect(c.Eval).To(BeNil())
		})

		It("names the position of an illegal character", func() {
			c := expr.Compile("x + #y")
			Expect(c.Err).To(MatchError(ContainSubstring("position 4")))

			var ce *dynamo.CompileError
			Expect(errors.As(c.Err, &ce)).To(BeTrue())
			Expect(ce.Pos).To(Equal(4))
			Expect(errors.Is(c.Err, dynamo.ErrCompile)).To(BeTrue())
		})

		DescribeTable("rejects malformed text",
			func(src, fragment string) {
				c := expr.Compile(src)
				Expect(c.Err).To(MatchError(ContainSubstring(fragment)))
				Expect(c.Code).To(BeEmpty())
			},
			Entry("unmatched open paren", "(x + 1", "expected ')'"),
			Entry("unmatched close paren", "x + 1)", "unmatched ')'"),
			Entry("dangling operator", "x +", "unexpected end"),
			Entry("leading operator", "*x", "unexpected token '*'"),
			Entry("empty", "   ", "unexpected end"),
			Entry("malformed number", "1.2.3*x", "malformed number"),
			Entry("bare function name", "sin + x", "expected '('"),
			Entry("empty parens", "()", "unexpected token ')'"),
		)

		It("stops runaway nesting without panicking", func() {
			src := ""
			for i := 0; i < 5000; i++ {
				src += "("
			}
			Expect(expr.Compile(src + "x").Err).To(MatchError(ContainSubstring("nested too deeply")))
		})
	})
})

var _ = Describe("Evaluator", func() {
	DescribeTable("matches the reference value",
		func(src string, x, y, t float64, want float64) {
			c := expr.Compile(src)
			Expect(c.Err).NotTo(HaveOccurred())
			Expect(c.Eval.Eval(x, y, t, params(map[string]float64{"a": 2, "b": 0.5}))).To(BeNumerically("~", want, 1e-12))
		},
		Entry("rotation", "-y", 1.0, 2.0, 0.0, -2.0),
		Entry("lotka-volterra", "a*x - b*x*y", 3.0, 2.0, 0.0, 3.0),
		Entry("implicit", "2(y+1)x", 1.5, 1.0, 0.0, 6.0),
		Entry("time", "sin(t) + cos(0)", 0.0, 0.0, math.Pi/2, 2.0),
		Entry("division", "x/y", 1.0, 4.0, 0.0, 0.25),
		Entry("glsl mod", "mod(-1, 3)", 0.0, 0.0, 0.0, 2.0),
		Entry("fract", "fract(-0.25)", 0.0, 0.0, 0.0, 0.75),
		Entry("sign", "sign(x) + sign(0)", -4.0, 0.0, 0.0, -1.0),
		Entry("atan2", "atan2(1, 0)", 0.0, 0.0, 0.0, math.Pi/2),
		Entry("min max", "min(x, y) + max(x, y)", 1.0, 5.0, 0.0, 6.0),
		Entry("unary plus", "+x - -y", 1.0, 2.0, 0.0, 3.0),
		Entry("constants", "e^1 - pi", 0.0, 0.0, 0.0, 2.71828182845905-3.14159265358979),
	)

	It("returns NaN for a parameter that is not supplied", func() {
		c := expr.Compile("k*x")
		Expect(math.IsNaN(c.Eval.Eval(1, 0, 0, dynamo.NewParams()))).To(BeTrue())
	})

	It("snapshots parameter values when bound", func() {
		c := expr.Compile("k*x")
		p := params(map[string]float64{"k": 2})
		f := c.Eval.Bind(p)
		Expect(p.Set("k", 10)).To(Succeed())
		Expect(f(3, 0, 0)).To(Equal(6.0))
		Expect(c.Eval.Eval(3, 0, 0, p)).To(Equal(30.0))
	})

	It("produces non-finite values instead of failing", func() {
		c := expr.Compile("1/x")
		Expect(math.IsInf(c.Eval.Eval(0, 0, 0, nil), 1)).To(BeTrue())
	})
})
