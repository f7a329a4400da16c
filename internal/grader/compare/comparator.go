package compare

import (
	"encoding/json"
	"sort"
)

// Equal reports deep structural equality between actual and expected via
// canonical serialization.
func Equal(actual, expected any) bool {
	return canonical(actual) == canonical(expected)
}

// EqualUnordered compares arrays while ignoring element order. For arrays
// of arrays each inner array is sorted independently, then the outer array
// is sorted by the serialized form of its sorted elements. Flat arrays are
// sorted with a total order: numeric for numbers, lexicographic otherwise.
// Non-array values fall back to exact structural equality.
func EqualUnordered(actual, expected any) bool {
	actualArr, aOK := actual.([]any)
	expectedArr, eOK := expected.([]any)
	if !aOK || !eOK {
		return Equal(actual, expected)
	}
	if len(actualArr) != len(expectedArr) {
		return false
	}
	return canonical(normalize(actualArr)) == canonical(normalize(expectedArr))
}

// normalize rewrites an array into an order-insensitive form.
func normalize(arr []any) []any {
	if isArrayOfArrays(arr) {
		out := make([]any, len(arr))
		for i, elem := range arr {
			out[i] = sortFlat(elem.([]any))
		}
		sort.Slice(out, func(i, j int) bool {
			return canonical(out[i]) < canonical(out[j])
		})
		return out
	}
	return sortFlat(arr)
}

func isArrayOfArrays(arr []any) bool {
	if len(arr) == 0 {
		return false
	}
	for _, elem := range arr {
		if _, ok := elem.([]any); !ok {
			return false
		}
	}
	return true
}

// sortFlat copies and sorts a flat array with a total order: numbers by
// value, everything else by canonical serialization, numbers before
// non-numbers when mixed.
func sortFlat(arr []any) []any {
	out := make([]any, len(arr))
	copy(out, arr)
	sort.SliceStable(out, func(i, j int) bool {
		return less(out[i], out[j])
	})
	return out
}

func less(a, b any) bool {
	aNum, aOK := a.(float64)
	bNum, bOK := b.(float64)
	switch {
	case aOK && bOK:
		return aNum < bNum
	case aOK:
		return true
	case bOK:
		return false
	default:
		return canonical(a) < canonical(b)
	}
}

// canonical returns the canonical serialized form of a value. Marshaling a
// value decoded from JSON cannot fail; the empty string stands in if it
// somehow does.
func canonical(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}
