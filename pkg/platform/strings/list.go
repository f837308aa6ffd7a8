// Package strings holds helpers for cleaning list-valued settings.
package strings

import (
	"slices"
	"strings"
)

// CleanList trims each entry, drops blanks and keeps the first occurrence of
// every value. Comparison is case-sensitive. It returns nil when nothing
// survives.
func CleanList(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}
