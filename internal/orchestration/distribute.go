package orchestration

// SplitNodes distributes total nodes across k backends: each gets total/k,
// and the remainder goes one each to the first backends in order.
// It returns nil when k is not positive.
func SplitNodes(total, k int) []int {
	if k <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}

	counts := make([]int, k)
	base, rem := total/k, total%k
	for i := range counts {
		counts[i] = base
		if i < rem {
			counts[i]++
		}
	}
	return counts
}
