// Package textnorm provides text normalization for matching user input
// against catalog data. This is part of the platform layer and contains no
// business logic.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases the input and strips diacritical marks, so "Máxima" and
// "maxima" compare equal.
func Fold(input string) string {
	folded, _, err := transform.String(foldTransformer, strings.ToLower(strings.TrimSpace(input)))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(input))
	}
	return folded
}

// Tokens splits the input into folded word tokens, dropping punctuation.
func Tokens(input string) []string {
	folded := Fold(input)
	return strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
