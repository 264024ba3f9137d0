package utils

import "strings"

// MatchRoute checks whether a request value ("METHOD /path" or a bare path)
// matches a route pattern. Patterns support:
//   - '*' matching any sequence within a segment, or everything when last.
//   - ':name' parameters matching a single path segment.
//   - An optional leading method ("GET /loads/:id"); a pattern without a
//     method matches any method.
func MatchRoute(value, pattern string) bool {
	valParts := strings.SplitN(value, " ", 2)
	patParts := strings.SplitN(pattern, " ", 2)

	if len(patParts) == 2 {
		if len(valParts) != 2 {
			return false
		}
		if patParts[0] != "*" && patParts[0] != valParts[0] {
			return false
		}
		return matchPath(valParts[1], patParts[1])
	}
	if len(valParts) == 2 {
		return matchPath(valParts[1], pattern)
	}
	return matchPath(value, pattern)
}

// matchPath walks value and pattern together; '*' consumes to the next '/'
// (or everything when it ends the pattern) and ':' parameters consume one
// segment.
func matchPath(value, pattern string) bool {
	vi, pi := 0, 0
	vLen, pLen := len(value), len(pattern)

	for pi < pLen {
		switch pattern[pi] {
		case '*':
			if pi == pLen-1 {
				return true
			}
			for vi < vLen && value[vi] != '/' {
				vi++
			}
			pi++
		case ':':
			pi++
			for pi < pLen && pattern[pi] != '/' {
				pi++
			}
			for vi < vLen && value[vi] != '/' {
				vi++
			}
		default:
			if vi < vLen && pattern[pi] == value[vi] {
				vi++
				pi++
			} else {
				return false
			}
		}
	}

	if strings.HasSuffix(pattern, "/*") {
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "/*"))
	}
	return vi == vLen && pi == pLen
}
