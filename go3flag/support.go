package go3flag

import "math/big"

// The enumerators below drive every combinatorial search in the engine.  Each
// invokes fn with a scratch slice that is reused between calls -- callees must
// copy anything they retain.  Returning false from fn stops the enumeration.

// Combinations enumerates all ascending k-subsets of {0..n-1}.
func Combinations(n, k int, fn func(idx []int) bool) {
	if k < 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		if !fn(idx) {
			return
		}
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// Permutations enumerates all permutations of {0..n-1} in lexicographic order,
// starting with the identity.  Canonicalization ties are broken by this order,
// so it must stay deterministic.
func Permutations(n int, fn func(perm []int) bool) {
	p := make([]int, n)
	for i := range p {
		p[i] = i
	}
	for {
		if !fn(p) {
			return
		}
		i := n - 2
		for i >= 0 && p[i] >= p[i+1] {
			i--
		}
		if i < 0 {
			return
		}
		j := n - 1
		for p[j] <= p[i] {
			j--
		}
		p[i], p[j] = p[j], p[i]
		for l, r := i+1, n-1; l < r; l, r = l+1, r-1 {
			p[l], p[r] = p[r], p[l]
		}
	}
}

// OrderedSubsets enumerates all ordered k-tuples of distinct elements of
// {0..n-1} (there are FallingFactorial(n, k) of them).
func OrderedSubsets(n, k int, fn func(tuple []int) bool) {
	if k < 0 || k > n {
		return
	}
	tuple := make([]int, 0, k)
	used := make([]bool, n)
	orderedSubsetsRec(n, k, tuple, used, fn)
}

func orderedSubsetsRec(n, k int, tuple []int, used []bool, fn func(tuple []int) bool) bool {
	if len(tuple) == k {
		return fn(tuple)
	}
	for v := 0; v < n; v++ {
		if used[v] {
			continue
		}
		used[v] = true
		ok := orderedSubsetsRec(n, k, append(tuple, v), used, fn)
		used[v] = false
		if !ok {
			return false
		}
	}
	return true
}

// TuplesWithReplacement enumerates all k-tuples over {0..n-1}, repeats allowed,
// in odometer order.
func TuplesWithReplacement(n, k int, fn func(tuple []int) bool) {
	if k < 0 || (n == 0 && k > 0) {
		return
	}
	t := make([]int, k)
	for {
		if !fn(t) {
			return
		}
		i := k - 1
		for i >= 0 && t[i] == n-1 {
			t[i] = 0
			i--
		}
		if i < 0 {
			return
		}
		t[i]++
	}
}

// Multisets enumerates all nondecreasing k-tuples over {0..n-1}, i.e. the
// k-multisets of an n-set.
func Multisets(n, k int, fn func(tuple []int) bool) {
	if k < 0 || (n == 0 && k > 0) {
		return
	}
	t := make([]int, k)
	for {
		if !fn(t) {
			return
		}
		i := k - 1
		for i >= 0 && t[i] == n-1 {
			i--
		}
		if i < 0 {
			return
		}
		t[i]++
		for j := i + 1; j < k; j++ {
			t[j] = t[i]
		}
	}
}

// Binomial returns C(n, k).  Only intended for the small arguments the engine
// works with (n well under 64).
func Binomial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	if k > n-k {
		k = n - k
	}
	b := int64(1)
	for i := 0; i < k; i++ {
		b = b * int64(n-i) / int64(i+1)
	}
	return b
}

// FallingFactorial returns n·(n-1)···(n-k+1).
func FallingFactorial(n, k int) int64 {
	if k < 0 || k > n {
		return 0
	}
	f := int64(1)
	for i := 0; i < k; i++ {
		f *= int64(n - i)
	}
	return f
}

// Factorial returns n! as an int64 (n must stay small).
func Factorial(n int) int64 {
	return FallingFactorial(n, n)
}

// NewRat is shorthand for an exact rational a/b.
func NewRat(a, b int64) *big.Rat {
	return big.NewRat(a, b)
}
