package modules

import (
	"strconv"
)

// safeGetFloat walks nested JSON objects along path and reads a number at
// the end. Numeric strings count; anything else reports false.
func safeGetFloat(m map[string]any, path ...string) (float64, bool) {
	cur := any(m)
	for i, p := range path {
		mm, ok := cur.(map[string]any)
		if !ok {
			return 0, false
		}
		v, exists := mm[p]
		if !exists {
			return 0, false
		}
		if i == len(path)-1 {
			switch x := v.(type) {
			case float64:
				return x, true
			case int:
				return float64(x), true
			case int64:
				return float64(x), true
			case string:
				f, err := strconv.ParseFloat(x, 64)
				return f, err == nil
			default:
				return 0, false
			}
		}
		cur = v
	}
	return 0, false
}

// safeGetString reads a string at path, as safeGetFloat does for numbers.
func safeGetString(m map[string]any, path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	cur := m
	for _, p := range path[:len(path)-1] {
		next, ok := cur[p].(map[string]any)
		if !ok {
			return "", false
		}
		cur = next
	}
	s, ok := cur[path[len(path)-1]].(string)
	return s, ok
}
