/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Div sets q = a / d and r = a % d with truncation toward zero, so r has the
// sign of a. Either q or r may be nil. The operation runs in variable time.
func Div(q, r, a, d *Int) error {
	if d.IsZero() {
		return errors.WithStack(ErrDivByZero)
	}
	if q != nil && q == r {
		return errors.WithMessage(ErrInvalidInput, "quotient and remainder must be distinct")
	}
	qneg := a.neg != d.neg
	rneg := a.neg

	var qd, rd []Word
	if a.CmpAbs(d) < 0 {
		rd = append([]Word(nil), a.d[:a.MinimalWidth()]...)
	} else {
		qd, rd = divWords(a.d[:a.MinimalWidth()], d.d[:d.MinimalWidth()])
	}

	if q != nil {
		q.d = qd
		q.neg = qneg
		q.normalize()
	}
	if r != nil {
		r.d = rd
		r.neg = rneg
		r.normalize()
	}
	return nil
}

// divWords returns u / v and u % v for minimal-width u >= v > 0.
func divWords(u, v []Word) (q, r []Word) {
	if len(v) == 1 {
		q = make([]Word, len(u))
		rem := divWordsByWord(q, u, v[0])
		return q, []Word{rem}
	}
	n := len(v)
	m := len(u) - n
	shift := uint(bits.LeadingZeros64(uint64(v[n-1])))

	vn := make([]Word, n)
	shiftLeftInto(vn, v, shift)
	un := make([]Word, len(u)+1)
	un[len(u)] = shiftLeftInto(un[:len(u)], u, shift)

	q = make([]Word, m+1)
	qv := make([]Word, n+1)
	vn1, vn2 := vn[n-1], vn[n-2]
	for j := m; j >= 0; j-- {
		qhat := maxWord
		ujn := un[j+n]
		if ujn != vn1 {
			var rhat uint64
			qh, rh := bits.Div64(uint64(ujn), uint64(un[j+n-1]), uint64(vn1))
			qhat, rhat = Word(qh), rh
			ujn2 := un[j+n-2]
			x1, x2 := bits.Mul64(uint64(qhat), uint64(vn2))
			for x1 > rhat || (x1 == rhat && x2 > uint64(ujn2)) {
				qhat--
				prev := rhat
				rhat += uint64(vn1)
				if rhat < prev {
					break
				}
				x1, x2 = bits.Mul64(uint64(qhat), uint64(vn2))
			}
		}
		qv[n] = mulWords1(qv[:n], vn, qhat)
		if subWords(un[j:j+n+1], un[j:j+n+1], qv) != 0 {
			c := addWords(un[j:j+n], un[j:j+n], vn)
			un[j+n] += c
			qhat--
		}
		q[j] = qhat
	}

	r = make([]Word, n)
	rshiftWords(r, un[:n], shift)
	return q, r
}

// shiftLeftInto sets r = a << s for s < WordBits and returns the bits
// shifted out of the top word.
func shiftLeftInto(r, a []Word, s uint) Word {
	if s == 0 {
		copy(r, a)
		return 0
	}
	var carry Word
	for i, w := range a {
		r[i] = w<<s | carry
		carry = w >> (WordBits - s)
	}
	return carry
}

// divWordsByWord sets q = u / d and returns u % d.
func divWordsByWord(q, u []Word, d Word) Word {
	var rem uint64
	for i := len(u) - 1; i >= 0; i-- {
		var qi uint64
		qi, rem = bits.Div64(rem, uint64(u[i]), uint64(d))
		q[i] = Word(qi)
	}
	return Word(rem)
}

// Mod sets r = a % d with the sign of a.
func Mod(r, a, d *Int) error {
	return Div(nil, r, a, d)
}

// NNMod sets r to the non-negative residue of a modulo m, in [0, |m|).
func NNMod(r, a, m *Int) error {
	t := new(Int)
	if err := Div(nil, t, a, m); err != nil {
		return err
	}
	if t.neg {
		if m.neg {
			t.Sub(t, m)
		} else {
			t.Add(t, m)
		}
	}
	r.Set(t)
	return nil
}

// ModAdd sets r = a + b mod m in [0, |m|).
func ModAdd(r, a, b, m *Int) error {
	return NNMod(r, new(Int).Add(a, b), m)
}

// ModSub sets r = a - b mod m in [0, |m|).
func ModSub(r, a, b, m *Int) error {
	return NNMod(r, new(Int).Sub(a, b), m)
}

// ModMul sets r = a * b mod m in [0, |m|).
func ModMul(r, a, b, m *Int) error {
	t := new(Int)
	if a == b {
		t.Sqr(a)
	} else {
		t.Mul(a, b)
	}
	return NNMod(r, t, m)
}

// ModSqr sets r = a^2 mod m in [0, |m|).
func ModSqr(r, a, m *Int) error {
	return NNMod(r, new(Int).Sqr(a), m)
}

// ModLsh sets r = a * 2^n mod m in [0, |m|).
func ModLsh(r, a *Int, n uint, m *Int) error {
	t := new(Int)
	if err := NNMod(t, a, m); err != nil {
		return err
	}
	if err := t.Lsh(t, n); err != nil {
		return err
	}
	return NNMod(r, t, m)
}

// ModLsh1 sets r = 2a mod m in [0, |m|).
func ModLsh1(r, a, m *Int) error {
	return NNMod(r, new(Int).Lsh1(a), m)
}

// ModAddQuick sets r = a + b mod m for 0 <= a, b < m. It runs in time that
// depends only on the width of m; the result has the width of m.
func ModAddQuick(r, a, b, m *Int) error {
	return quickModOp(r, a, b, m, modAddWords)
}

// ModSubQuick sets r = a - b mod m for 0 <= a, b < m. It runs in time that
// depends only on the width of m; the result has the width of m.
func ModSubQuick(r, a, b, m *Int) error {
	return quickModOp(r, a, b, m, modSubWords)
}

func quickModOp(r, a, b, m *Int, op func(r, a, b, m, tmp []Word)) error {
	if m.neg || m.IsZero() {
		return errors.WithMessage(ErrInvalidInput, "modulus must be positive")
	}
	if a.neg || b.neg || a.CmpAbs(m) >= 0 || b.CmpAbs(m) >= 0 {
		return errors.WithStack(ErrInputNotReduced)
	}
	n := len(m.d)
	aw := a.paddedWords(n)
	bw := b.paddedWords(n)
	out := make([]Word, n)
	tmp := make([]Word, n)
	op(out, aw, bw, m.d, tmp)
	r.d = out
	r.neg = false
	return nil
}

// DivWord divides z by w in place and returns the remainder of |z| / w.
func (z *Int) DivWord(w Word) (Word, error) {
	if w == 0 {
		return 0, errors.WithStack(ErrDivByZero)
	}
	n := z.MinimalWidth()
	if n == 0 {
		return 0, nil
	}
	rem := divWordsByWord(z.d[:n], z.d[:n], w)
	z.d = z.d[:n]
	z.normalize()
	return rem, nil
}

// ModWord returns |x| mod w.
func (x *Int) ModWord(w Word) (Word, error) {
	if w == 0 {
		return 0, errors.WithStack(ErrDivByZero)
	}
	var rem uint64
	for i := x.MinimalWidth() - 1; i >= 0; i-- {
		_, rem = bits.Div64(rem, uint64(x.d[i]), uint64(w))
	}
	return Word(rem), nil
}

// modWordFast returns |x| mod w for a nonzero w.
func (x *Int) modWordFast(w Word) Word {
	rem, _ := x.ModWord(w)
	return rem
}

// ModPow2 sets r = a mod 2^e, keeping the sign of a.
func ModPow2(r, a *Int, e uint) {
	r.Set(a)
	if e/WordBits < uint(len(r.d)) {
		r.MaskBits(int(e))
	}
	r.normalize()
}

// NNModPow2 sets r = a mod 2^e in [0, 2^e).
func NNModPow2(r, a *Int, e uint) error {
	t := new(Int).Abs(a)
	if e/WordBits < uint(len(t.d)) {
		t.MaskBits(int(e))
	}
	t.normalize()
	if a.neg && !t.IsZero() {
		p := new(Int)
		if err := p.SetBit(int(e)); err != nil {
			return err
		}
		t.Sub(p, t)
	}
	r.Set(t)
	return nil
}
