package parser

import "strings"

// scanner states for SplitTopLevel.
type splitState int

const (
	stateNormal splitState = iota
	stateInQuote
	stateEscapePending
)

// SplitTopLevel splits s on commas that sit outside quotes and at zero
// bracket nesting depth. Nesting is tracked separately for square and curly
// brackets so commas inside array or object literals never split. Unmatched
// closing brackets floor the depth at zero instead of failing.
func SplitTopLevel(s string) []string {
	var parts []string
	var cur strings.Builder
	state := stateNormal
	var quote rune
	squareDepth, curlyDepth := 0, 0

	for _, r := range s {
		switch state {
		case stateInQuote:
			cur.WriteRune(r)
			if r == '\\' {
				state = stateEscapePending
			} else if r == quote {
				state = stateNormal
			}
		case stateEscapePending:
			cur.WriteRune(r)
			state = stateInQuote
		default:
			switch r {
			case '"', '\'':
				quote = r
				state = stateInQuote
				cur.WriteRune(r)
			case '[':
				squareDepth++
				cur.WriteRune(r)
			case ']':
				if squareDepth > 0 {
					squareDepth--
				}
				cur.WriteRune(r)
			case '{':
				curlyDepth++
				cur.WriteRune(r)
			case '}':
				if curlyDepth > 0 {
					curlyDepth--
				}
				cur.WriteRune(r)
			case ',':
				if squareDepth == 0 && curlyDepth == 0 {
					parts = append(parts, cur.String())
					cur.Reset()
				} else {
					cur.WriteRune(r)
				}
			default:
				cur.WriteRune(r)
			}
		}
	}
	parts = append(parts, cur.String())
	return parts
}
