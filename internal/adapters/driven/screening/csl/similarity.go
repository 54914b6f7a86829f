package csl

import (
	"sort"
	"strings"
)

// Hit classifications by similarity.
const (
	ClassPotentialMatch = "POTENTIAL_MATCH"
	ClassInvestigate    = "INVESTIGATE"
	ClassLowRelevance   = "LOW_RELEVANCE"
)

// PotentialMatchScore is the similarity at or above which a hit is treated as a
// potential match regardless of the configured threshold.
const PotentialMatchScore = 0.95

// Classify grades a similarity score against the reporting threshold.
func Classify(score, threshold float64) string {
	switch {
	case score >= PotentialMatchScore:
		return ClassPotentialMatch
	case score >= threshold:
		return ClassInvestigate
	default:
		return ClassLowRelevance
	}
}

// Similarity returns the token-sort ratio of two names in [0, 1].
// Tokens are lower-cased and sorted before an indel ratio is taken over the
// joined strings.
func Similarity(a, b string) float64 {
	sa, sb := sortedTokens(a), sortedTokens(b)
	if sa == "" && sb == "" {
		return 1
	}
	if sa == "" || sb == "" {
		return 0
	}
	ra, rb := []rune(sa), []rune(sb)
	return 2 * float64(lcs(ra, rb)) / float64(len(ra)+len(rb))
}

func sortedTokens(s string) string {
	fields := strings.Fields(strings.ToLower(s))
	sort.Strings(fields)
	return strings.Join(fields, " ")
}

// lcs is the longest common subsequence length, using two rows.
func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
