package engine

import "math/rand"

// SampleStarts draws k unique patch start indices from [0, n-patchSize),
// uniformly without replacement, using the given seed.
//
// If k exceeds the number of valid starts the draw is clamped, not failed.
// The same (n, patchSize, k, seed) always yields the same starts in the same
// order; the significance test's p-value is only meaningful across runs if
// the sampled population is reproducible.
func SampleStarts(n, patchSize, k int, seed int64) []int {
	maxStart := n - patchSize
	if maxStart <= 0 || k <= 0 {
		return nil
	}
	if k > maxStart {
		k = maxStart
	}

	rng := rand.New(rand.NewSource(seed))

	// Dense draws shuffle the full start range; sparse draws (the common case
	// on multi-million pixel maps) reject duplicates instead of materializing
	// an O(N) permutation.
	if maxStart <= 4*k {
		return densePick(rng, maxStart, k)
	}
	return sparsePick(rng, maxStart, k)
}

func densePick(rng *rand.Rand, maxStart, k int) []int {
	perm := make([]int, maxStart)
	for i := range perm {
		perm[i] = i
	}
	// Partial Fisher-Yates: only the first k slots need to be settled.
	for i := 0; i < k; i++ {
		j := i + rng.Intn(maxStart-i)
		perm[i], perm[j] = perm[j], perm[i]
	}
	return perm[:k]
}

func sparsePick(rng *rand.Rand, maxStart, k int) []int {
	seen := make(map[int]struct{}, k)
	starts := make([]int, 0, k)
	for len(starts) < k {
		s := rng.Intn(maxStart)
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		starts = append(starts, s)
	}
	return starts
}
