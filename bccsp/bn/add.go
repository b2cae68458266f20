/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Add sets z = x + y and returns z.
func (z *Int) Add(x, y *Int) *Int {
	xneg, yneg := x.neg, y.neg
	if xneg == yneg {
		z.uadd(x, y)
		z.neg = xneg
	} else if x.CmpAbs(y) >= 0 {
		z.usub(x, y)
		z.neg = xneg
	} else {
		z.usub(y, x)
		z.neg = yneg
	}
	z.normalize()
	return z
}

// Sub sets z = x - y and returns z.
func (z *Int) Sub(x, y *Int) *Int {
	xneg, yneg := x.neg, y.neg
	if xneg != yneg {
		z.uadd(x, y)
		z.neg = xneg
	} else if x.CmpAbs(y) >= 0 {
		z.usub(x, y)
		z.neg = xneg
	} else {
		z.usub(y, x)
		z.neg = !xneg
	}
	z.normalize()
	return z
}

// UAdd sets z = |x| + |y| and returns z.
func (z *Int) UAdd(x, y *Int) *Int {
	z.uadd(x, y)
	z.neg = false
	z.normalize()
	return z
}

// USub sets z = |x| - |y|. It fails with ErrArgTooLarge if |x| < |y|, in
// which case z is unchanged.
func (z *Int) USub(x, y *Int) error {
	if x.CmpAbs(y) < 0 {
		return errors.WithStack(ErrArgTooLarge)
	}
	z.usub(x, y)
	z.neg = false
	z.normalize()
	return nil
}

// uadd sets the magnitude of z to |x| + |y| at width max(wx, wy)+1. The sign
// of z is left for the caller.
func (z *Int) uadd(x, y *Int) {
	if len(x.d) < len(y.d) {
		x, y = y, x
	}
	xw, yw := len(x.d), len(y.d)
	z.setWidth(xw + 1)
	carry := addWords(z.d[:yw], x.d[:yw], y.d[:yw])
	for i := yw; i < xw; i++ {
		s, c := bits.Add64(uint64(x.d[i]), uint64(carry), 0)
		z.d[i] = Word(s)
		carry = Word(c)
	}
	z.d[xw] = carry
}

// usub sets the magnitude of z to |x| - |y|, which must be non-negative.
func (z *Int) usub(x, y *Int) {
	xw := len(x.d)
	yw := min(y.MinimalWidth(), xw)
	z.setWidth(xw)
	borrow := subWords(z.d[:yw], x.d[:yw], y.d[:yw])
	for i := yw; i < xw; i++ {
		s, b := bits.Sub64(uint64(x.d[i]), uint64(borrow), 0)
		z.d[i] = Word(s)
		borrow = Word(b)
	}
}

// AddWord adds w to z in place and returns z.
func (z *Int) AddWord(w Word) *Int {
	if w == 0 {
		return z
	}
	if z.neg {
		// -|z| + w
		if cmpWords(z.d, []Word{w}) > 0 {
			subWord(z.d, w)
			z.normalize()
			return z
		}
		v := w - z.d[0]
		return z.SetWord(v)
	}
	n := len(z.d)
	if carry := addWord(z.d, w); carry != 0 {
		z.setWidth(n + 1)
		z.d[n] = carry
	}
	return z
}

// SubWord subtracts w from z in place and returns z.
func (z *Int) SubWord(w Word) *Int {
	if w == 0 {
		return z
	}
	if z.IsZero() {
		z.SetWord(w)
		z.neg = true
		return z
	}
	if z.neg {
		z.neg = false
		z.AddWord(w)
		z.neg = true
		return z
	}
	if cmpWords(z.d, []Word{w}) >= 0 {
		subWord(z.d, w)
		z.normalize()
		return z
	}
	v := w - z.d[0]
	z.SetWord(v)
	z.neg = true
	return z
}

// MulWord multiplies z by w in place and returns z.
func (z *Int) MulWord(w Word) *Int {
	if w == 0 || len(z.d) == 0 {
		return z.Zero()
	}
	n := len(z.d)
	carry := mulWords1(z.d, z.d, w)
	if carry != 0 {
		z.setWidth(n + 1)
		z.d[n] = carry
	}
	z.normalize()
	return z
}
