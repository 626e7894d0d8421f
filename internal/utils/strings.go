// Package utils holds small string helpers used by the CLI for lookups by
// name.
package utils

import (
	"sort"
	"strings"
)

// ComputeDistance computes the Levenshtein distance between two strings,
// counted in runes. It is case-insensitive.
func ComputeDistance(s1, s2 string) int {
	a := []rune(strings.ToLower(s1))
	b := []rune(strings.ToLower(s2))

	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Two rolling rows of the full matrix.
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			best := prev[j] + 1 // deletion
			if ins := curr[j-1] + 1; ins < best { // insertion
				best = ins
			}
			if sub := prev[j-1] + cost; sub < best { // substitution
				best = sub
			}
			curr[j] = best
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

// FuzzyMatch checks if source is a fuzzy match of target.
// Characters in source must appear in target in the same order.
// Case-insensitive.
func FuzzyMatch(source, target string) bool {
	sourceRunes := []rune(strings.ToLower(source))
	targetRunes := []rune(strings.ToLower(target))

	si := 0
	for ti := 0; si < len(sourceRunes) && ti < len(targetRunes); ti++ {
		if sourceRunes[si] == targetRunes[ti] {
			si++
		}
	}
	return si == len(sourceRunes)
}

// Suggest returns up to limit candidates within maxDistance of name,
// closest first. Ties keep candidate order.
func Suggest(name string, candidates []string, maxDistance, limit int) []string {
	type scored struct {
		s    string
		dist int
	}
	var hits []scored
	for _, c := range candidates {
		if d := ComputeDistance(name, c); d <= maxDistance {
			hits = append(hits, scored{c, d})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].dist < hits[j].dist })

	out := make([]string, 0, limit)
	for _, h := range hits {
		if len(out) == limit {
			break
		}
		out = append(out, h.s)
	}
	return out
}
