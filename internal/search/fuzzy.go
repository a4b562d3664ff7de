// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import "math"

// titleRatio scores the similarity of two strings from 0 to 100 as
// 2*LCS/(len(a)+len(b)), where LCS is the longest common subsequence of
// runes. This is the indel similarity used by common fuzzy matchers. Empty
// input scores 0.
func titleRatio(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	if a == b {
		return 100
	}
	return int(math.Round(200 * float64(lcsLen(ra, rb)) / float64(total)))
}

// ratioBound is the highest titleRatio two strings of rune lengths la and lb
// can reach. It lets callers skip the quadratic comparison.
func ratioBound(la, lb int) int {
	if la == 0 || lb == 0 {
		return 0
	}
	return int(math.Round(200 * float64(min(la, lb)) / float64(la+lb)))
}

// lcsLen returns the length of the longest common subsequence using two
// rolling rows.
func lcsLen(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
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
