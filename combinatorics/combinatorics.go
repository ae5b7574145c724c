// Package combinatorics holds the integer helpers used to unpack polynomial
// kernels into explicit coefficient tensors.
package combinatorics

import (
	"fmt"
	"math"
	"math/bits"
)

// Binomial returns n choose k. It is zero for k > n.
func Binomial(n, k int) (uint64, error) {
	if n < 0 || k < 0 {
		return 0, fmt.Errorf("%w: binomial(%d, %d)", ErrDomain, n, k)
	}
	if k > n {
		return 0, nil
	}
	if k > n-k {
		k = n - k
	}

	c := uint64(1)
	m := uint64(n)
	for i := uint64(1); i <= uint64(k); i, m = i+1, m-1 {
		if c/i > math.MaxUint64/m {
			return 0, fmt.Errorf("%w: binomial(%d, %d)", ErrOverflow, n, k)
		}
		// c*m/i split as (c/i*i + c%i)*m/i
		c = c/i*m + c%i*m/i
	}
	return c, nil
}

// Multinomial returns (k1+k2+...)! / (k1! k2! ...).
func Multinomial(ks ...int) (uint64, error) {
	c := uint64(1)
	n := 0
	for _, k := range ks {
		if k < 0 {
			return 0, fmt.Errorf("%w: multinomial with negative k %d", ErrDomain, k)
		}
		n += k
		b, err := Binomial(n, k)
		if err != nil {
			return 0, err
		}
		hi, lo := bits.Mul64(c, b)
		if hi != 0 {
			return 0, fmt.Errorf("%w: multinomial%v", ErrOverflow, ks)
		}
		c = lo
	}
	return c, nil
}

// NumberOfPermutations counts the distinct orderings of xs.
func NumberOfPermutations[T comparable](xs []T) (uint64, error) {
	buckets := make(map[T]int)
	for _, x := range xs {
		buckets[x]++
	}
	counts := make([]int, 0, len(buckets))
	for _, c := range buckets {
		counts = append(counts, c)
	}
	return Multinomial(counts...)
}

// IPow raises base to an integral power. Negative exponents invert the base.
func IPow(base float64, exp int) (float64, error) {
	if exp < 0 {
		exp = -exp
		base = 1 / base
	}
	result := 1.0
	for ; exp > 0; exp >>= 1 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
	}
	if math.IsInf(result, 0) {
		return 0, fmt.Errorf("%w: ipow", ErrOverflow)
	}
	return result, nil
}

// IPowInt raises an integer base to a non-negative power.
func IPowInt(base int64, exp int) (int64, error) {
	if exp < 0 {
		return 0, fmt.Errorf("%w: negative exponent %d for integral base", ErrDomain, exp)
	}
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			r, ok := mulInt64(result, base)
			if !ok {
				return 0, fmt.Errorf("%w: ipow", ErrOverflow)
			}
			result = r
		}
		exp >>= 1
		if exp > 0 {
			b, ok := mulInt64(base, base)
			if !ok {
				return 0, fmt.Errorf("%w: ipow", ErrOverflow)
			}
			base = b
		}
	}
	return result, nil
}

func mulInt64(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, false
	}
	c := a * b
	return c, c/b == a
}
