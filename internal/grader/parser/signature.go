package parser

import (
	"strings"
	"unicode"

	"funcjudge/internal/grader/model"
	appErr "funcjudge/pkg/errors"
)

const listNodeTypeName = "ListNode"

// ParseSignature tokenizes a function declaration into a structured
// signature. The grammar it accepts is small: an optional `def` keyword, an
// identifier, a parenthesized comma list of parameters with optional type
// annotations and defaults, and an optional `->` return annotation. A
// leading `self` (or `cls`) parameter is treated as the receiver and
// excluded from the parameter list.
func ParseSignature(text string) (model.FunctionSignature, error) {
	line := declarationLine(text)
	if line == "" {
		return model.FunctionSignature{}, appErr.New(appErr.SignatureParseFailed).
			WithMessage("no function declaration found")
	}

	lx := &sigLexer{src: []rune(line)}
	lx.skipSpace()

	name := lx.ident()
	if name == "def" {
		lx.skipSpace()
		name = lx.ident()
	}
	if name == "" {
		return model.FunctionSignature{}, appErr.New(appErr.SignatureParseFailed).
			WithMessage("declaration has no function name")
	}
	lx.skipSpace()
	if !lx.consume('(') {
		return model.FunctionSignature{}, appErr.New(appErr.SignatureParseFailed).
			WithMessagef("expected parameter list after %q", name)
	}

	sig := model.FunctionSignature{Raw: text, Name: name}
	for {
		lx.skipSpace()
		if lx.consume(')') || lx.done() {
			break
		}
		param := lx.ident()
		if param == "" {
			// tolerate stray tokens like *args markers; skip to next comma
			lx.skipUntilTopLevel(',', ')')
			lx.consume(',')
			continue
		}
		lx.skipSpace()
		annotation := ""
		if lx.consume(':') {
			annotation = strings.TrimSpace(lx.readUntilTopLevel(',', ')'))
		}
		if lx.consume('=') {
			lx.skipUntilTopLevel(',', ')')
		}
		if len(sig.Params) == 0 && !sig.HasReceiver && (param == "self" || param == "cls") {
			sig.HasReceiver = true
		} else {
			sig.Params = append(sig.Params, param)
			sig.ParamTypes = append(sig.ParamTypes, annotation)
		}
		lx.skipSpace()
		if !lx.consume(',') {
			lx.consume(')')
			break
		}
	}

	lx.skipSpace()
	if lx.consume('-') && lx.consume('>') {
		ret := strings.TrimSpace(lx.rest())
		sig.ReturnType = strings.TrimSuffix(ret, ":")
		sig.ReturnType = strings.TrimSpace(sig.ReturnType)
	}

	sig.UsesListNode = strings.Contains(text, listNodeTypeName)
	return sig, nil
}

// declarationLine returns the first line that looks like a declaration, i.e.
// contains an opening parenthesis.
func declarationLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if strings.Contains(line, "(") {
			return strings.TrimSpace(line)
		}
	}
	return ""
}

type sigLexer struct {
	src []rune
	pos int
}

func (l *sigLexer) done() bool {
	return l.pos >= len(l.src)
}

func (l *sigLexer) skipSpace() {
	for !l.done() && unicode.IsSpace(l.src[l.pos]) {
		l.pos++
	}
}

func (l *sigLexer) consume(r rune) bool {
	if !l.done() && l.src[l.pos] == r {
		l.pos++
		return true
	}
	return false
}

func (l *sigLexer) ident() string {
	start := l.pos
	for !l.done() {
		r := l.src[l.pos]
		if r == '_' || unicode.IsLetter(r) || (l.pos > start && unicode.IsDigit(r)) {
			l.pos++
			continue
		}
		break
	}
	return string(l.src[start:l.pos])
}

// readUntilTopLevel reads forward until one of the stop runes appears at
// zero bracket depth, returning the consumed text. The stop rune itself is
// not consumed unless it is a closing parenthesis that closes the list.
func (l *sigLexer) readUntilTopLevel(stops ...rune) string {
	start := l.pos
	depth := 0
	for !l.done() {
		r := l.src[l.pos]
		switch r {
		case '[', '(', '{':
			depth++
		case ']', '}':
			if depth > 0 {
				depth--
			}
		case ')':
			if depth == 0 {
				return string(l.src[start:l.pos])
			}
			depth--
		default:
			if depth == 0 {
				for _, stop := range stops {
					if r == stop {
						return string(l.src[start:l.pos])
					}
				}
			}
		}
		l.pos++
	}
	return string(l.src[start:l.pos])
}

func (l *sigLexer) skipUntilTopLevel(stops ...rune) {
	l.readUntilTopLevel(stops...)
}

func (l *sigLexer) rest() string {
	s := string(l.src[l.pos:])
	l.pos = len(l.src)
	return s
}
