package schema

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxSuggestDistance bounds how far a suggestion may be from the input.
const maxSuggestDistance = 3

// SuggestSection returns the valid section name closest to name, or "" when
// nothing is close enough.
func (r *Registry) SuggestSection(name string) string {
	return nearest(name, r.ValidSections())
}

// SuggestKeyword returns the catalogued keyword or entry closest to key.
func (r *Registry) SuggestKeyword(key string) string {
	return nearest(strings.ToLower(key), r.literalNames)
}

func nearest(s string, candidates []string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(s, c)
		if d < bestDist {
			best, bestDist = c, d
		}
	}
	if best == s {
		return ""
	}
	return best
}
