/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "github.com/pkg/errors"

// Jacobi returns the Jacobi symbol (a/b) for an odd positive b.
func Jacobi(a, b *Int) (int, error) {
	if b.neg || !b.IsOdd() {
		return 0, errors.WithMessage(ErrInvalidInput, "jacobi symbol needs an odd positive modulus")
	}
	x := new(Int)
	if err := NNMod(x, a, b); err != nil {
		return 0, err
	}
	y := new(Int).Set(b)
	y.normalize()
	t := new(Int)
	j := 1
	for !x.IsZero() {
		s := x.TrailingZeroBits()
		x.Rsh(x, uint(s))
		if s&1 == 1 {
			if m8 := y.d[0] & 7; m8 == 3 || m8 == 5 {
				j = -j
			}
		}
		if x.d[0]&3 == 3 && y.d[0]&3 == 3 {
			j = -j
		}
		_ = Mod(t, y, x)
		x, y, t = t, x, y
	}
	if !y.IsOne() {
		return 0, nil
	}
	return j, nil
}

// ModSqrt sets r to a square root of a modulo the prime p, choosing the
// smaller of the two roots. It fails with ErrNotASquare when a is not a
// quadratic residue, or when p turns out not to be prime.
func ModSqrt(r, a, p *Int) error {
	if p.neg || p.CmpWord(2) < 0 {
		return errors.WithMessage(ErrInvalidInput, "modulus must be a prime")
	}
	x := new(Int)
	if err := NNMod(x, a, p); err != nil {
		return err
	}
	if p.IsWord(2) || x.IsZero() {
		r.Set(x)
		r.normalize()
		return nil
	}
	if !p.IsOdd() {
		return errors.WithMessage(ErrInvalidInput, "modulus must be a prime")
	}
	j, err := Jacobi(x, p)
	if err != nil {
		return err
	}
	if j != 1 {
		return errors.WithStack(ErrNotASquare)
	}

	root := new(Int)
	if p.d[0]&3 == 3 {
		// root = x^((p+1)/4)
		e := new(Int).Set(p)
		e.AddWord(1)
		e.Rsh(e, 2)
		if err := ModExp(root, x, e, p); err != nil {
			return err
		}
	} else if err := tonelliShanks(root, x, p); err != nil {
		return err
	}

	check := new(Int)
	if err := ModSqr(check, root, p); err != nil {
		return err
	}
	if check.Cmp(x) != 0 {
		return errors.WithStack(ErrNotASquare)
	}
	other := new(Int).Sub(p, root)
	if other.Cmp(root) < 0 {
		root = other
	}
	r.Set(root)
	r.normalize()
	return nil
}

// maxNonResidueSearch bounds the search for a quadratic non-residue.
const maxNonResidueSearch = 1 << 10

func tonelliShanks(r, x, p *Int) error {
	// p - 1 = q * 2^s with q odd.
	pm1 := new(Int).Set(p)
	pm1.SubWord(1)
	s := pm1.TrailingZeroBits()
	q := new(Int).Rsh(pm1, uint(s))

	z := NewWord(2)
	for i := 0; ; i++ {
		if i == maxNonResidueSearch {
			return errors.WithStack(ErrTooManyIterations)
		}
		j, err := Jacobi(z, p)
		if err != nil {
			return err
		}
		if j == -1 {
			break
		}
		z.AddWord(1)
	}

	c, t, res := new(Int), new(Int), new(Int)
	if err := ModExp(c, z, q, p); err != nil {
		return err
	}
	if err := ModExp(t, x, q, p); err != nil {
		return err
	}
	q1 := new(Int).Set(q)
	q1.AddWord(1)
	q1.Rsh(q1, 1)
	if err := ModExp(res, x, q1, p); err != nil {
		return err
	}

	m := s
	t2 := new(Int)
	for !t.IsOne() {
		// Find the least i with t^(2^i) == 1.
		i := 0
		t2.Set(t)
		for !t2.IsOne() {
			i++
			if i == m {
				return errors.WithStack(ErrNotASquare)
			}
			if err := ModSqr(t2, t2, p); err != nil {
				return err
			}
		}
		b := new(Int).Set(c)
		for k := 0; k < m-i-1; k++ {
			if err := ModSqr(b, b, p); err != nil {
				return err
			}
		}
		m = i
		if err := ModSqr(c, b, p); err != nil {
			return err
		}
		if err := ModMul(t, t, c, p); err != nil {
			return err
		}
		if err := ModMul(res, res, b, p); err != nil {
			return err
		}
	}
	r.Set(res)
	return nil
}

// Sqrt sets r to the square root of a. It fails with ErrNotASquare if a is
// not a perfect square and with ErrNegativeNumber if a < 0.
func Sqrt(r, a *Int) error {
	if a.neg {
		return errors.WithStack(ErrNegativeNumber)
	}
	if a.IsZero() {
		r.Zero()
		return nil
	}
	// Newton iteration from a power of two above the root.
	x := new(Int)
	if err := x.SetBit((a.BitLen() + 1) / 2); err != nil {
		return err
	}
	y, t := new(Int), new(Int)
	for {
		_ = Div(t, nil, a, x)
		y.Add(x, t)
		y.Rsh(y, 1)
		if y.Cmp(x) >= 0 {
			break
		}
		x, y = y, x
	}
	if t.Sqr(x).Cmp(a) != 0 {
		return errors.WithStack(ErrNotASquare)
	}
	r.Set(x)
	return nil
}
