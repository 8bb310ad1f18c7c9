package core

import "strings"

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

// NormalizeKey collapses inner whitespace runs to a single space, trims and lowers.
// Used wherever loosely formatted input is compared against reference values.
func NormalizeKey(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// OrderedUnique returns vals with duplicates removed, first occurrence order preserved.
func OrderedUnique(vals []string) []string {
	seen := make(map[string]struct{}, len(vals))
	res := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		res = append(res, v)
	}
	return res
}
