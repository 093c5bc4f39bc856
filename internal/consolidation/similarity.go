// internal/consolidation/similarity.go
package consolidation

import "strings"

// NormalizeName lowercases a candidate name, trims it, and collapses
// internal whitespace runs to single spaces.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Similarity scores two candidate names in [0, 1]. Multi-word names are
// compared by token-set Jaccard overlap; single-word names fall back to a
// normalized edit-distance ratio, since one-token sets make Jaccard
// all-or-nothing.
func Similarity(a, b string) float64 {
	na, nb := NormalizeName(a), NormalizeName(b)
	if na == nb {
		return 1.0
	}
	if na == "" || nb == "" {
		return 0.0
	}

	tokensA := strings.Fields(na)
	tokensB := strings.Fields(nb)
	if len(tokensA) <= 1 && len(tokensB) <= 1 {
		return LevenshteinRatio(na, nb)
	}
	return TokenSetJaccard(na, nb)
}

// TokenSetJaccard computes |A ∩ B| / |A ∪ B| over whitespace-separated
// tokens of the already-normalized inputs.
func TokenSetJaccard(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	tokens := strings.Fields(s)
	set := make(map[string]struct{}, len(tokens))
	for _, token := range tokens {
		set[token] = struct{}{}
	}
	return set
}

// LevenshteinRatio returns 1 - dist/maxLen, so identical strings score 1
// and fully distinct strings score 0.
func LevenshteinRatio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein(ra, rb))/float64(longest)
}

func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

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
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
