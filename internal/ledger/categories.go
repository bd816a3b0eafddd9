package ledger

import "strings"

// SuggestCategories returns the categories containing query, ignoring
// case. An empty query returns every category. Order is preserved.
func SuggestCategories(categories []string, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		if q == "" || strings.Contains(strings.ToLower(c), q) {
			out = append(out, c)
		}
	}
	return out
}

// HasCategory reports whether name is already in categories. Matching is
// exact after trimming, like the category set the owner sees.
func HasCategory(categories []string, name string) bool {
	name = strings.TrimSpace(name)
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

// DedupeCategories trims names, drops blanks and duplicates, and keeps the
// first occurrence order.
func DedupeCategories(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
