package dedup

// similarity returns a normalized ratio in [0,1] between two strings:
// 2*LCS / (len(a)+len(b)), where LCS is the length of their longest
// common subsequence. Two empty strings are identical (1.0).
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	if len(a) == 0 || len(b) == 0 {
		return 0.0
	}
	lcs := lcsLength(a, b)
	return 2.0 * float64(lcs) / float64(len(a)+len(b))
}

// lcsLength computes the longest common subsequence length with a
// two-row dynamic program, O(len(a)*len(b)) time and O(len(b)) space.
func lcsLength(a, b string) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}
