package parser

import (
	"strings"
	"unicode"

	"funcjudge/internal/grader/model"
)

// ParseInput converts free-text test-case input into a parameter mapping in
// the signature's declared order. Two encodings are accepted:
//
//   - named form: `name = literal` assignments, one per line or comma
//     separated on a single line;
//   - positional form: one literal per line, bound left to right.
//
// Declared parameters that cannot be found are null-filled and reported in
// the second return value, never dropped. Parameters not present in the
// signature are ignored.
func ParseInput(raw string, sig model.FunctionSignature) (map[string]any, []string) {
	values := make(map[string]any, len(sig.Params))

	segments := inputSegments(raw)
	if named, ok := parseNamed(segments); ok {
		for _, p := range sig.Params {
			if v, present := named[p]; present {
				values[p] = v
			}
		}
	} else {
		for i, p := range sig.Params {
			if i < len(segments) {
				values[p] = ParseLiteral(segments[i])
			}
		}
	}

	var missing []string
	for _, p := range sig.Params {
		if _, ok := values[p]; !ok {
			values[p] = nil
			missing = append(missing, p)
		}
	}
	return values, missing
}

// inputSegments splits raw input into candidate assignments or literals:
// lines first, then top-level commas within each line.
func inputSegments(raw string) []string {
	var segments []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, part := range SplitTopLevel(line) {
			if strings.TrimSpace(part) != "" {
				segments = append(segments, part)
			}
		}
	}
	return segments
}

// parseNamed interprets segments as `name = literal` assignments. It
// reports false when the first segment is not an assignment, in which case
// the input is positional.
func parseNamed(segments []string) (map[string]any, bool) {
	if len(segments) == 0 {
		return nil, false
	}
	if _, _, ok := splitAssignment(segments[0]); !ok {
		return nil, false
	}

	named := make(map[string]any, len(segments))
	for _, seg := range segments {
		name, value, ok := splitAssignment(seg)
		if !ok {
			continue
		}
		named[name] = ParseLiteral(value)
	}
	return named, true
}

// splitAssignment splits `name = literal` at the first top-level equals
// sign, requiring the left side to be a bare identifier.
func splitAssignment(s string) (string, string, bool) {
	idx := topLevelIndex(s, '=')
	if idx < 0 {
		return "", "", false
	}
	name := strings.TrimSpace(s[:idx])
	if !isIdentifier(name) {
		return "", "", false
	}
	return name, s[idx+1:], true
}

// topLevelIndex finds the first occurrence of target outside quotes and at
// zero bracket depth, or -1.
func topLevelIndex(s string, target rune) int {
	state := stateNormal
	var quote rune
	depth := 0
	for i, r := range s {
		switch state {
		case stateInQuote:
			if r == '\\' {
				state = stateEscapePending
			} else if r == quote {
				state = stateNormal
			}
		case stateEscapePending:
			state = stateInQuote
		default:
			switch r {
			case '"', '\'':
				quote = r
				state = stateInQuote
			case '[', '{':
				depth++
			case ']', '}':
				if depth > 0 {
					depth--
				}
			case target:
				if depth == 0 {
					return i
				}
			}
		}
	}
	return -1
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) || (i > 0 && unicode.IsDigit(r)) {
			continue
		}
		return false
	}
	return true
}
