// Package similar suggests close matches for misspelled names. It backs the
// "did you mean" hints in deserialization errors and CLI diagnostics.
package similar

import (
	"sort"
	"strings"
)

const (
	// DefaultMaxDistance is the largest edit distance still considered a match.
	DefaultMaxDistance = 3
	// DefaultMaxSuggestions caps how many suggestions are returned.
	DefaultMaxSuggestions = 3
)

// Options configures matching. The zero value uses the defaults and matches
// case-insensitively.
type Options struct {
	MaxDistance    int
	MaxSuggestions int
	CaseSensitive  bool
}

type match struct {
	value    string
	distance int
}

// Find returns the candidates closest to target, best first.
//
// Example:
//
//	similar.Find("Helth", []string{"Health", "Armor", "Speed"}, nil)
//	// Returns: ["Health"]
func Find(target string, candidates []string, opts *Options) []string {
	if opts == nil {
		opts = &Options{}
	}
	maxDist := opts.MaxDistance
	if maxDist == 0 {
		maxDist = DefaultMaxDistance
	}
	maxOut := opts.MaxSuggestions
	if maxOut == 0 {
		maxOut = DefaultMaxSuggestions
	}

	var matches []match
	for _, candidate := range candidates {
		a, b := target, candidate
		if !opts.CaseSensitive {
			a = strings.ToLower(a)
			b = strings.ToLower(b)
		}
		if d := Distance(a, b); d <= maxDist {
			matches = append(matches, match{value: candidate, distance: d})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].distance < matches[j].distance
	})

	out := make([]string, 0, maxOut)
	for i := 0; i < len(matches) && i < maxOut; i++ {
		out = append(out, matches[i].value)
	}
	return out
}

// Best returns the single closest candidate, or "" when nothing is within
// the distance limit.
func Best(target string, candidates []string, opts *Options) string {
	matches := Find(target, candidates, opts)
	if len(matches) == 0 {
		return ""
	}
	return matches[0]
}

// Distance is the Levenshtein distance between two strings: the minimum
// number of single-character insertions, deletions, or substitutions needed
// to turn one into the other.
func Distance(s1, s2 string) int {
	if len(s1) == 0 {
		return len(s2)
	}
	if len(s2) == 0 {
		return len(s1)
	}

	matrix := make([][]int, len(s1)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(s2)+1)
	}
	for i := 0; i <= len(s1); i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len(s2); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(s1); i++ {
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)
		}
	}
	return matrix[len(s1)][len(s2)]
}
