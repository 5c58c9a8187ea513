// Package slug derives the output directory name for a submitter.
package slug

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// ASCII returns an ASCII transliteration of s, e.g. "Björn" -> "Bjorn" and "Иван" -> "Ivan".
// Input is composed to NFC first so decomposed accents (as macOS tends to produce)
// transliterate the same as precomposed ones.
func ASCII(s string) string {
	return unidecode.Unidecode(norm.NFC.String(s))
}

// FromName returns the directory name for a submitter: their transliterated, lowercased name
// with the first word moved to the end, e.g. "Jane Doe" -> "doe-jane" and
// "Jan van der Berg" -> "vanderberg-jan".
func FromName(name string) string {
	first, rest, _ := strings.Cut(strings.ToLower(ASCII(name)), " ")
	return strings.ReplaceAll(rest, " ", "") + "-" + first
}
