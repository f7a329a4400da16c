package parser

import (
	"encoding/json"
	"strings"
)

// ParseLiteral parses a structured literal (numbers, strings, booleans,
// null, arrays, objects). On failure the trimmed text is kept as a string,
// with one optional pair of surrounding quotes stripped.
func ParseLiteral(s string) any {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}

	var v any
	if err := json.Unmarshal([]byte(trimmed), &v); err == nil {
		return v
	}
	return stripQuotes(trimmed)
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '"' || first == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
