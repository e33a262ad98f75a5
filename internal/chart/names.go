// internal/chart/names.go
// Package: chart
package chart

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// algorithmNames are the display names of the benchmarked AR estimators.
var algorithmNames = map[string]string{
	"burg-basic":                          "Burg's method",
	"burg-optimized-den":                  "Denominator optimization",
	"burg-optimized-den-sqrt":             "Hybrid denominator",
	"compensated-burg-basic":              "Burg's method (compensated)",
	"compensated-burg-optimized-den":      "Den. opt. (compensated)",
	"compensated-burg-optimized-den-sqrt": "Hybrid den. (compensated)",
}

// AlgorithmName returns the display name of algo, or algo itself when it
// has none.
func AlgorithmName(algo string) string {
	if name, ok := algorithmNames[algo]; ok {
		return name
	}
	return algo
}

// CategoryName capitalizes category for titles: "drums" -> "Drums".
func CategoryName(category string) string {
	r, size := utf8.DecodeRuneInString(category)
	if r == utf8.RuneError {
		return category
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(category[size:])
}
