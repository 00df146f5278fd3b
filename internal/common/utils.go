package common

import "strings"

// SplitList splits a comma-separated setting into trimmed items.
// An empty or blank input yields nil; blank items are kept as "" so callers
// can reject them.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
