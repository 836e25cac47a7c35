package util

import "strings"

// NormalizeTickers trims, uppercases and dedupes ticker symbols while
// preserving first-seen order. Empty entries are dropped.
func NormalizeTickers(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, raw := range in {
		t := strings.ToUpper(strings.TrimSpace(raw))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
