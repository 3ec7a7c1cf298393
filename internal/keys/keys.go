package keys

import (
	"sort"
	"strings"
)

// EntityKeyFromNames produces a canonical key for a list of names.
// Behavior: trims names, lower-cases, replaces spaces with underscores,
// sorts the parts and joins with underscore.
func EntityKeyFromNames(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		s := strings.TrimSpace(n)
		if s == "" {
			continue
		}
		s = strings.ToLower(strings.ReplaceAll(s, " ", "_"))
		parts = append(parts, s)
	}
	sort.Strings(parts)
	return strings.Join(parts, "_")
}

// PairKey returns the same key for (a, b) and (b, a). Ids are compared
// as-is; they are opaque and case-sensitive.
func PairKey(a, b string) string {
	first, second := OrderedPair(a, b)
	return first + "|" + second
}

// OrderedPair returns the two ids in canonical order. The first one is
// seated on side A.
func OrderedPair(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}
