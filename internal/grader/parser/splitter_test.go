package parser_test

import (
	"reflect"
	"testing"

	"funcjudge/internal/grader/parser"
)

func TestSplitTopLevelPlain(t *testing.T) {
	got := parser.SplitTopLevel("a, b, c")
	want := []string{"a", " b", " c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitTopLevelQuoteAware(t *testing.T) {
	got := parser.SplitTopLevel(`s = "a,b", t = "c"`)
	want := []string{`s = "a,b"`, ` t = "c"`}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitTopLevelBracketAware(t *testing.T) {
	got := parser.SplitTopLevel("nums = [1,2,3], target = 5")
	want := []string{"nums = [1,2,3]", " target = 5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestSplitTopLevelNestedObjects(t *testing.T) {
	got := parser.SplitTopLevel(`m = {"a": [1,2], "b": 3}, k = 1`)
	if len(got) != 2 {
		t.Fatalf("expected 2 parts, got %v", got)
	}
	if got[0] != `m = {"a": [1,2], "b": 3}` {
		t.Fatalf("object literal was split: %q", got[0])
	}
}

func TestSplitTopLevelEscapedQuote(t *testing.T) {
	got := parser.SplitTopLevel(`s = "a\",b", t = 1`)
	if len(got) != 2 {
		t.Fatalf("expected 2 parts, got %v", got)
	}
}

func TestSplitTopLevelUnmatchedClosingBracket(t *testing.T) {
	// depth floors at zero; the stray bracket must not suppress the split
	got := parser.SplitTopLevel("a], b")
	want := []string{"a]", " b"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
