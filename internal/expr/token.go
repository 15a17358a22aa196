package expr

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/san-kum/phaseflow/internal/dynamo"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokCaret
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var operators = map[byte]tokenKind{
	'+': tokPlus,
	'-': tokMinus,
	'*': tokStar,
	'/': tokSlash,
	'^': tokCaret,
	'(': tokLParen,
	')': tokRParen,
	',': tokComma,
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool { return isIdentStart(c) || isDigit(c) }

// tokenize splits src into tokens and inserts the implicit multiplications
// that juxtaposition denotes: a number before an identifier or '(' and a ')'
// before an identifier, number or '('.
func tokenize(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || (c == '.' && i+1 < len(src) && isDigit(src[i+1])):
			start := i
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				i++
			}
			text := src[start:i]
			if _, err := strconv.ParseFloat(text, 64); err != nil {
				return nil, &dynamo.CompileError{Pos: start, Msg: fmt.Sprintf("malformed number '%s' at position %d", text, start)}
			}
			toks = append(toks, token{kind: tokNum, text: text, pos: start})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: src[start:i], pos: start})
		default:
			kind, ok := operators[c]
			if !ok {
				r, _ := utf8.DecodeRuneInString(src[i:])
				return nil, &dynamo.CompileError{Pos: i, Msg: fmt.Sprintf("unexpected character %q at position %d", r, i)}
			}
			toks = append(toks, token{kind: kind, text: string(c), pos: i})
			i++
		}
	}

	out := make([]token, 0, len(toks)+1)
	for j, a := range toks {
		out = append(out, a)
		if j+1 == len(toks) {
			break
		}
		b := toks[j+1]
		implicit := (a.kind == tokNum && (b.kind == tokIdent || b.kind == tokLParen)) ||
			(a.kind == tokRParen && (b.kind == tokIdent || b.kind == tokNum || b.kind == tokLParen))
		if implicit {
			out = append(out, token{kind: tokStar, text: "*", pos: b.pos})
		}
	}
	out = append(out, token{kind: tokEOF, pos: len(src)})
	return out, nil
}
