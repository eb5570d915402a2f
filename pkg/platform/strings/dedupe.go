// Package strings provides string list helpers for configuration values.
package strings

import (
	"strings"
)

// DedupeAndTrim trims every element and drops empty ones and repeats,
// keeping first-seen order. Comma-split env values such as
// "broker-1:9092, ,broker-1:9092" collapse to []string{"broker-1:9092"}.
func DedupeAndTrim(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; !ok {
			seen[trimmed] = struct{}{}
			result = append(result, trimmed)
		}
	}
	return result
}
