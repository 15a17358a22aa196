package compute

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

var (
	declRe = regexp.MustCompile(`^\s*(?:layout\s*\([^)]*\)\s*)?(?:uniform|in|out)\s+\w+\s+(\w+)\s*;`)
	funcRe = regexp.MustCompile(`^(?:void|float|int|bool|vec[234]|mat[234])\s+(\w+)\s*\(`)
)

var glslKeywords = setOf(
	"attribute", "const", "uniform", "varying", "layout", "centroid", "flat",
	"smooth", "noperspective", "break", "continue", "do", "for", "while",
	"switch", "case", "default", "if", "else", "in", "out", "inout", "float",
	"int", "uint", "void", "bool", "true", "false", "invariant", "discard",
	"return", "mat2", "mat3", "mat4", "vec2", "vec3", "vec4", "ivec2", "ivec3",
	"ivec4", "bvec2", "bvec3", "bvec4", "uvec2", "uvec3", "uvec4",
	"mat2x2", "mat2x3", "mat2x4", "mat3x2", "mat3x3", "mat3x4", "mat4x2",
	"mat4x3", "mat4x4", "sampler1D", "sampler2D", "sampler3D", "samplerCube",
	"sampler1DShadow", "sampler2DShadow", "samplerCubeShadow",
	"sampler1DArray", "sampler2DArray", "sampler1DArrayShadow",
	"sampler2DArrayShadow", "isampler1D", "isampler2D", "isampler3D",
	"isamplerCube", "isampler1DArray", "isampler2DArray", "usampler1D",
	"usampler2D", "usampler3D", "usamplerCube", "usampler1DArray",
	"usampler2DArray", "sampler2DRect", "sampler2DRectShadow",
	"isampler2DRect", "usampler2DRect", "samplerBuffer", "isamplerBuffer",
	"usamplerBuffer", "sampler2DMS", "isampler2DMS", "usampler2DMS",
	"sampler2DMSArray", "isampler2DMSArray", "usampler2DMSArray", "struct",
	"precision", "highp", "mediump", "lowp",
	// reserved for future use
	"common", "partition", "active", "asm", "class", "union", "enum",
	"typedef", "template", "this", "packed", "goto", "inline", "noinline",
	"volatile", "public", "static", "extern", "external", "interface", "long",
	"short", "double", "half", "fixed", "unsigned", "superp", "input",
	"output", "hvec2", "hvec3", "hvec4", "dvec2", "dvec3", "dvec4", "fvec2",
	"fvec3", "fvec4", "sizeof", "cast", "namespace", "using", "filter",
	"image1D", "image2D", "image3D", "imageCube", "iimage1D", "iimage2D",
	"iimage3D", "iimageCube", "uimage1D", "uimage2D", "uimage3D",
	"uimageCube", "image1DArray", "image2DArray", "iimage1DArray",
	"iimage2DArray", "uimage1DArray", "uimage2DArray", "image1DShadow",
	"image2DShadow", "image1DArrayShadow", "image2DArrayShadow",
	"imageBuffer", "iimageBuffer", "uimageBuffer", "row_major",
	"sampler3DRect", "samplerCubeArray", "isamplerCubeArray",
	"usamplerCubeArray", "samplerCubeArrayShadow",
)

var glslBuiltins = setOf(
	"radians", "degrees", "sin", "cos", "tan", "asin", "acos", "atan", "sinh",
	"cosh", "tanh", "asinh", "acosh", "atanh", "pow", "exp", "log", "exp2",
	"log2", "sqrt", "inversesqrt", "abs", "sign", "floor", "trunc", "round",
	"roundEven", "ceil", "fract", "mod", "modf", "min", "max", "clamp", "mix",
	"step", "smoothstep", "isnan", "isinf", "length", "distance", "dot",
	"cross", "normalize", "faceforward", "reflect", "refract",
	"matrixCompMult", "outerProduct", "transpose", "determinant", "inverse",
	"lessThan", "lessThanEqual", "greaterThan", "greaterThanEqual", "equal",
	"notEqual", "any", "all", "not", "floatBitsToInt", "floatBitsToUint",
	"intBitsToFloat", "uintBitsToFloat", "texture", "textureProj",
	"textureLod", "textureOffset", "texelFetch", "texelFetchOffset",
	"textureProjOffset", "textureLodOffset", "textureProjLod",
	"textureProjLodOffset", "textureGrad", "textureGradOffset",
	"textureProjGrad", "textureProjGradOffset", "textureSize", "dFdx", "dFdy",
	"fwidth", "noise1", "noise2", "noise3", "noise4", "EmitVertex",
	"EndPrimitive",
)

func setOf(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// ValidateGLSL checks the global declarations of one shader stage the way
// a GLSL front end would: every declared name must be a legal identifier
// that does not collide with a keyword, a built-in function or another
// global. It returns a *dynamo.ShaderBuildError on the first violation.
func ValidateGLSL(stage, src string) error {
	lines := strings.Split(src, "\n")
	if len(lines) == 0 || !strings.HasPrefix(strings.TrimSpace(lines[0]), "#version") {
		return &dynamo.ShaderBuildError{Stage: stage, Log: "ERROR: 0:1: '' : #version required and missing"}
	}

	seen := make(map[string]int)
	var errs []string
	for i, line := range lines {
		var name string
		if m := declRe.FindStringSubmatch(line); m != nil {
			name = m[1]
		} else if m := funcRe.FindStringSubmatch(line); m != nil {
			name = m[1]
		} else {
			continue
		}

		lineNo := i + 1
		switch {
		case glslKeywords[name]:
			errs = append(errs, fmt.Sprintf("ERROR: 0:%d: '%s' : syntax error, reserved word", lineNo, name))
		case strings.HasPrefix(name, "gl_"):
			errs = append(errs, fmt.Sprintf("ERROR: 0:%d: '%s' : identifiers starting with \"gl_\" are reserved", lineNo, name))
		case strings.Contains(name, "__"):
			errs = append(errs, fmt.Sprintf("ERROR: 0:%d: '%s' : identifiers containing two consecutive underscores are reserved", lineNo, name))
		case glslBuiltins[name]:
			errs = append(errs, fmt.Sprintf("ERROR: 0:%d: '%s' : redeclaration of built-in function", lineNo, name))
		case seen[name] != 0:
			errs = append(errs, fmt.Sprintf("ERROR: 0:%d: '%s' : redefinition (previous at line %d)", lineNo, name, seen[name]))
		default:
			seen[name] = lineNo
		}
	}
	if len(errs) > 0 {
		errs = append(errs, fmt.Sprintf("ERROR: %d compilation errors.  No code generated.", len(errs)))
		return &dynamo.ShaderBuildError{Stage: stage, Log: strings.Join(errs, "\n")}
	}
	return nil
}
