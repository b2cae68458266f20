/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"io"

	"github.com/pkg/errors"
)

// Gcd sets r to the greatest common divisor of |a| and |b|. gcd(0, 0) is 0.
func Gcd(r, a, b *Int) {
	x := new(Int).Abs(a)
	y := new(Int).Abs(b)
	x.normalize()
	y.normalize()
	t := new(Int)
	for !y.IsZero() {
		// y is nonzero, so Mod cannot fail.
		_ = Mod(t, x, y)
		x, y, t = y, t, x
	}
	r.Set(x)
}

// Lcm sets r to the least common multiple of |a| and |b|, which is 0 when
// either is 0.
func Lcm(r, a, b *Int) {
	if a.IsZero() || b.IsZero() {
		r.Zero()
		return
	}
	g := new(Int)
	Gcd(g, a, b)
	q := new(Int)
	_ = Div(q, nil, new(Int).Abs(a), g)
	q.Mul(q, b)
	q.neg = false
	r.Set(q)
}

// IsRelativelyPrime reports whether gcd(a, b) == 1.
func IsRelativelyPrime(a, b *Int) bool {
	g := new(Int)
	Gcd(g, a, b)
	return g.IsOne()
}

// ModInverse sets r to the inverse of a modulo n, in [0, n). a may be negative
// or unreduced. It fails with ErrNoInverse when gcd(a, n) != 1. The running
// time depends on a and n.
func ModInverse(r, a, n *Int) error {
	if n.IsZero() {
		return errors.WithStack(ErrDivByZero)
	}
	if n.neg {
		return errors.WithMessage(ErrNegativeNumber, "negative modulus")
	}
	a0 := new(Int)
	if err := NNMod(a0, a, n); err != nil {
		return err
	}

	// Extended Euclid, tracking only the coefficient of a.
	oldR, cur := a0, new(Int).Set(n)
	oldS, s := new(Int).One(), new(Int)
	q, t := new(Int), new(Int)
	for !cur.IsZero() {
		if err := Div(q, t, oldR, cur); err != nil {
			return err
		}
		oldR, cur, t = cur, t, oldR
		t.Mul(q, s)
		t.Sub(oldS, t)
		oldS, s, t = s, t, oldS
	}
	// For n == 1 the loop ends with oldR == 1 and oldS reduces to 0.
	if !oldR.IsOne() {
		return errors.WithStack(ErrNoInverse)
	}
	if err := NNMod(oldS, oldS, n); err != nil {
		return err
	}
	r.Set(oldS)
	return nil
}

// ModInverseBlinded sets r to the inverse of a modulo the modulus of mont.
// a is multiplied by a random unit before the variable-time inversion, so the
// running time does not reveal a. noInverse is set when a is not invertible.
func ModInverseBlinded(r, a *Int, mont *MontCtx, rand io.Reader) (noInverse bool, err error) {
	n := mont.Modulus()
	if a.neg || a.CmpAbs(n) >= 0 {
		return false, errors.WithStack(ErrInputNotReduced)
	}
	var blind *Int
	for {
		blind, err = RandRange(1, n, rand)
		if err != nil {
			return false, err
		}
		if IsRelativelyPrime(blind, n) {
			break
		}
	}
	t := new(Int)
	if err := ModMul(t, a, blind, n); err != nil {
		return false, err
	}
	if err := ModInverse(t, t, n); err != nil {
		if errors.Is(err, ErrNoInverse) {
			return true, err
		}
		return false, err
	}
	if err := ModMul(t, t, blind, n); err != nil {
		return false, err
	}
	r.Set(t)
	return false, nil
}
