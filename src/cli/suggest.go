package cli

import (
	"sort"
	"strings"

	"github.com/texttheater/golang-levenshtein/levenshtein"
)

// Suggest returns the items in haystack within maxDistance edits of needle, closest first.
func Suggest(needle string, haystack []string, maxDistance int) []string {
	r := []rune(needle)
	options := make([]suggestion, 0, len(haystack))
	for _, straw := range haystack {
		if straw == needle || straw == "" {
			continue
		}
		if distance := levenshtein.DistanceForStrings(r, []rune(straw), levenshtein.DefaultOptions); distance <= maxDistance {
			options = append(options, suggestion{s: straw, dist: distance})
		}
	}
	sort.SliceStable(options, func(i, j int) bool { return options[i].dist < options[j].dist })
	ret := make([]string, len(options))
	for i, o := range options {
		ret[i] = o.s
	}
	return ret
}

// PrettyPrintSuggestion returns a message suggesting the closest items to needle, or the
// empty string if nothing is close enough.
func PrettyPrintSuggestion(needle string, haystack []string, maxDistance int) string {
	options := Suggest(needle, haystack, maxDistance)
	if len(options) == 0 {
		return ""
	} else if len(options) > 3 {
		options = options[:3]
	}
	if len(options) == 1 {
		return "; maybe you meant " + options[0]
	}
	return "; maybe you meant " + strings.Join(options[:len(options)-1], ", ") + " or " + options[len(options)-1]
}

type suggestion struct {
	s    string
	dist int
}
