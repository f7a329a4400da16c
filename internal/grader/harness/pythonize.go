package harness

import "strings"

// jsonToPythonTokens maps JSON value tokens to their Python spellings. The
// embedded test-case listing is serialized as JSON, whose literal tokens
// are not valid Python.
var jsonToPythonTokens = [][2]string{
	{"true", "True"},
	{"false", "False"},
	{"null", "None"},
}

// pythonizeLiterals respells JSON literal tokens to Python inside a JSON
// document, leaving string contents untouched. A small scanner tracks
// whether the cursor is inside a quoted string; outside strings the JSON
// grammar only admits these tokens in value position, so a prefix match is
// unambiguous.
func pythonizeLiterals(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	for i := 0; i < len(s); {
		c := s[i]
		if inString {
			b.WriteByte(c)
			if escaped {
				escaped = false
			} else if c == '\\' {
				escaped = true
			} else if c == '"' {
				inString = false
			}
			i++
			continue
		}
		if c == '"' {
			inString = true
			b.WriteByte(c)
			i++
			continue
		}
		if repl, n := matchToken(s[i:]); n > 0 {
			b.WriteString(repl)
			i += n
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

func matchToken(s string) (string, int) {
	for _, pair := range jsonToPythonTokens {
		if strings.HasPrefix(s, pair[0]) {
			return pair[1], len(pair[0])
		}
	}
	return "", 0
}
