package utils

import (
	"strings"
)

// TrimOrEmpty normalizes user input without turning nil into "nil".
func TrimOrEmpty(s string) string {
	return strings.TrimSpace(s)
}

// NormalizeSpace collapses repeated whitespace into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// SplitName splits a passenger name into the first token and the remaining
// tokens joined by a single space. "Jane" yields ("Jane", "").
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], strings.Join(parts[1:], " ")
	}
}

// Abbreviate derives a short location code when none is supplied.
func Abbreviate(name string) string {
	letters := []rune{}
	for _, r := range strings.ToUpper(NormalizeSpace(name)) {
		if r == ' ' {
			continue
		}
		letters = append(letters, r)
		if len(letters) == 3 {
			break
		}
	}
	return string(letters)
}
