package eval

import (
	"strings"
	"unicode"

	"gonum.org/v1/gonum/stat"
)

// Similarity calculates similarity between detected and ground truth text.
// Returns a score from 0.0 (no match) to 1.0 (perfect match).
func Similarity(detected, truth string) float64 {
	detectedNorm := normalizeText(detected)
	truthNorm := normalizeText(truth)

	if truthNorm == "" {
		if detectedNorm == "" {
			return 1.0
		}
		return 0.0
	}
	if detectedNorm == truthNorm {
		return 1.0
	}

	// 1. LCS (longest common subsequence) - best for partial matches
	lcs := longestCommonSubsequence(detectedNorm, truthNorm)
	maxLen := max(len(detectedNorm), len(truthNorm))
	lcsScore := 0.0
	if maxLen > 0 {
		lcsScore = float64(lcs) / float64(maxLen)
	}

	// 2. Character overlap - what percentage of truth chars appear in detected
	charOverlap := characterOverlap(detectedNorm, truthNorm)

	// Weight LCS higher: ordering matters for line text
	return 0.7*lcsScore + 0.3*charOverlap
}

// normalizeText normalizes text for comparison.
func normalizeText(s string) string {
	s = strings.ToUpper(s)
	var result strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// longestCommonSubsequence calculates LCS length.
func longestCommonSubsequence(a, b string) int {
	m, n := len(a), len(b)
	if m == 0 || n == 0 {
		return 0
	}

	// Use two rows for space efficiency
	prev := make([]int, n+1)
	curr := make([]int, n+1)

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}

	return prev[n]
}

// characterOverlap calculates the percentage of ground truth characters found in detected.
func characterOverlap(detected, truth string) float64 {
	if len(truth) == 0 {
		return 0.0
	}

	detectedChars := make(map[rune]int)
	for _, r := range detected {
		detectedChars[r]++
	}

	matched := 0
	for _, r := range truth {
		if detectedChars[r] > 0 {
			matched++
			detectedChars[r]--
		}
	}

	return float64(matched) / float64(len(truth))
}

// Summary aggregates per-line similarity scores for an evaluation run.
type Summary struct {
	Lines   int     `json:"lines"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Min     float64 `json:"min"`
	Perfect int     `json:"perfect"`
}

// Summarize computes aggregate statistics over per-line scores.
func Summarize(scores []float64) Summary {
	s := Summary{Lines: len(scores)}
	if len(scores) == 0 {
		return s
	}

	s.Mean = stat.Mean(scores, nil)
	if len(scores) > 1 {
		s.StdDev = stat.StdDev(scores, nil)
	}
	s.Min = scores[0]
	for _, v := range scores {
		if v < s.Min {
			s.Min = v
		}
		if v >= 1.0 {
			s.Perfect++
		}
	}
	return s
}
