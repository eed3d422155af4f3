// Package validation formats valid-value lists for error messages.
package validation

import "strings"

// FormatValidValues joins string-like values with commas.
func FormatValidValues[T ~string](values []T) string {
	formatted := make([]string, 0, len(values))
	for _, value := range values {
		formatted = append(formatted, string(value))
	}
	return strings.Join(formatted, ", ")
}

// FormatAlternatives joins values as an English list ending in "or",
// e.g. "low, medium, or high".
func FormatAlternatives[T ~string](values []T) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return string(values[0])
	case 2:
		return string(values[0]) + " or " + string(values[1])
	}
	head := FormatValidValues(values[:len(values)-1])
	return head + ", or " + string(values[len(values)-1])
}
