/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "github.com/pkg/errors"

// ModInverseConstTime sets r to the inverse of a modulo n for 0 <= a < n
// using a binary extended GCD whose iteration count and memory accesses
// depend only on the widths of a and n. When gcd(a, n) != 1 it returns
// noInverse = true together with ErrNoInverse. The result has the width of n.
//
// The loop maintains u = A*a - B*n and v = D*n - C*a, starting from u = a,
// v = n, A = D = 1 and B = C = 0, with 0 <= A, C < n and 0 <= B, D <= a.
// Each step either subtracts the smaller of u and v from the larger, when
// both are odd, or halves whichever is even. After enough steps u holds
// gcd(a, n) and, if that is 1, A is the inverse.
func ModInverseConstTime(r, a, n *Int) (noInverse bool, err error) {
	if n.IsZero() || n.neg {
		return false, errors.WithMessage(ErrInvalidInput, "modulus must be positive")
	}
	if a.neg || a.CmpAbs(n) >= 0 {
		return false, errors.WithStack(ErrInputNotReduced)
	}
	if a.IsZero() {
		if n.IsOne() {
			r.Zero()
			return false, nil
		}
		return true, errors.WithStack(ErrNoInverse)
	}
	if !a.IsOdd() && !n.IsOdd() {
		return true, errors.WithStack(ErrNoInverse)
	}

	nw := len(n.d)
	aw := min(len(a.d), nw)
	nWords := n.d
	aWords := a.paddedWords(aw)

	u := a.paddedWords(nw)
	u = append([]Word(nil), u...)
	v := append([]Word(nil), nWords...)
	A := make([]Word, nw)
	A[0] = 1
	B := make([]Word, aw)
	C := make([]Word, nw)
	D := make([]Word, aw)
	D[0] = 1
	tmp := make([]Word, nw)
	tmp2 := make([]Word, nw)

	iterations := (aw + nw) * WordBits
	for i := 0; i < iterations; i++ {
		bothOdd := ctBool(u[0]) & ctBool(v[0])

		// If both are odd, subtract the smaller from the larger.
		vLessU := -subWords(tmp, v, u)
		selectWords(v, bothOdd&^vLessU, tmp, v)
		subWords(tmp, u, v)
		selectWords(u, bothOdd&vLessU, tmp, u)

		// A+C or C+A, reduced modulo n.
		carry := addWords(tmp, A, C)
		carry -= subWords(tmp2, tmp, nWords)
		selectWords(tmp, carry, tmp, tmp2)
		selectWords(A, bothOdd&vLessU, tmp, A)
		selectWords(C, bothOdd&^vLessU, tmp, C)

		// B+D or D+B, reduced modulo a under the same condition.
		addWords(tmp[:aw], B, D)
		subWords(tmp2[:aw], tmp[:aw], aWords)
		selectWords(tmp[:aw], carry, tmp[:aw], tmp2[:aw])
		selectWords(B, bothOdd&vLessU, tmp[:aw], B)
		selectWords(D, bothOdd&^vLessU, tmp[:aw], D)

		// Halve whichever of u and v is even. At most one of them is.
		uEven := ^ctBool(u[0])
		vEven := ^ctBool(v[0])

		maybeRshift1Words(u, uEven, 0, tmp)
		abOdd := ctBool(A[0]) | ctBool(B[0])
		aCarry := maybeAddWords(A, abOdd&uEven, nWords, tmp)
		bCarry := maybeAddWords(B, abOdd&uEven, aWords, tmp[:aw])
		maybeRshift1Words(A, uEven, aCarry, tmp)
		maybeRshift1Words(B, uEven, bCarry, tmp[:aw])

		maybeRshift1Words(v, vEven, 0, tmp)
		cdOdd := ctBool(C[0]) | ctBool(D[0])
		cCarry := maybeAddWords(C, cdOdd&vEven, nWords, tmp)
		dCarry := maybeAddWords(D, cdOdd&vEven, aWords, tmp[:aw])
		maybeRshift1Words(C, vEven, cCarry, tmp)
		maybeRshift1Words(D, vEven, dCarry, tmp[:aw])
	}

	// u now holds gcd(a, n).
	one := make([]Word, nw)
	one[0] = 1
	if equalWords(u, one) == 0 {
		return true, errors.WithStack(ErrNoInverse)
	}
	r.d = A
	r.neg = false
	return false, nil
}

// maybeAddWords sets a = a + b if mask is set and returns the carry, which is
// zero when mask is clear.
func maybeAddWords(a []Word, mask Word, b, tmp []Word) Word {
	carry := addWords(tmp, a, b)
	selectWords(a, mask, tmp, a)
	return carry & mask & 1
}

// maybeRshift1Words sets a = (carry:a) >> 1 if mask is set.
func maybeRshift1Words(a []Word, mask, carry Word, tmp []Word) {
	rshift1Words(tmp, a, carry)
	selectWords(a, mask, tmp, a)
}
