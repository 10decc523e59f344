package httputil

import "strings"

// SplitOrigins parses a comma-separated origins list, trimming whitespace
// and dropping empty entries.
func SplitOrigins(s string) []string {
	var origins []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			origins = append(origins, p)
		}
	}
	return origins
}
