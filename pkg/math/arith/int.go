package arith

import "math/big"

var one = big.NewInt(1)

// IsCoprime returns true if gcd(a,b) = 1.
func IsCoprime(a, b *big.Int) bool {
	var gcd big.Int
	return gcd.GCD(nil, nil, a, b).Cmp(one) == 0
}

// IsInRange returns true if lo ⩽ x < hi.
func IsInRange(x, lo, hi *big.Int) bool {
	if x == nil {
		return false
	}
	return x.Cmp(lo) >= 0 && x.Cmp(hi) < 0
}
