package harness

import "strings"

// segmentKind tags one top-level block of user source.
type segmentKind int

const (
	segImport segmentKind = iota
	segTypeDef
	segHelperDef
	segBody
)

type segment struct {
	kind  segmentKind
	lines []string
}

// classifyLines splits source into tagged top-level segments. Each
// unindented non-blank line opens a segment; indented and blank lines
// attach to the segment they follow. The classifier only distinguishes the
// blocks the generator needs to relocate: imports, the linked-list node
// type, and the list converter helpers. Everything else is body.
func classifyLines(code string) []segment {
	var segments []segment
	current := -1

	for _, line := range strings.Split(code, "\n") {
		if isTopLevel(line) {
			segments = append(segments, segment{kind: kindOf(line), lines: []string{line}})
			current = len(segments) - 1
			continue
		}
		if current < 0 {
			segments = append(segments, segment{kind: segBody})
			current = 0
		}
		segments[current].lines = append(segments[current].lines, line)
	}
	return segments
}

func isTopLevel(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	return line[0] != ' ' && line[0] != '\t'
}

func kindOf(line string) segmentKind {
	switch {
	case strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "from "):
		return segImport
	case strings.HasPrefix(line, "class "+listNodeName):
		return segTypeDef
	case strings.HasPrefix(line, "def "+buildListName+"(") || strings.HasPrefix(line, "def "+toArrayName+"("):
		return segHelperDef
	default:
		return segBody
	}
}

// render joins the segments of the given kinds, in classification order,
// applying indent to every non-blank line.
func render(segments []segment, indent string, kinds ...segmentKind) string {
	var b strings.Builder
	for _, seg := range segments {
		if !kindIn(seg.kind, kinds) {
			continue
		}
		for _, line := range seg.lines {
			if indent != "" && strings.TrimSpace(line) != "" {
				b.WriteString(indent)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func kindIn(k segmentKind, kinds []segmentKind) bool {
	for _, kind := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}
