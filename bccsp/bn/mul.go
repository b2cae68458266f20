/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"math/bits"

	"github.com/pkg/errors"
)

// Mul sets z = x * y and returns z.
func (z *Int) Mul(x, y *Int) *Int {
	xw, yw := x.MinimalWidth(), y.MinimalWidth()
	if xw == 0 || yw == 0 {
		return z.Zero()
	}
	neg := x.neg != y.neg
	r := z.scratch(xw+yw, x, y)
	switch {
	case xw == 4 && yw == 4:
		mulComba4((*[8]Word)(r), (*[4]Word)(x.d[:4]), (*[4]Word)(y.d[:4]))
	case xw == 8 && yw == 8:
		mulComba8((*[16]Word)(r), (*[8]Word)(x.d[:8]), (*[8]Word)(y.d[:8]))
	default:
		mulWords(r, x.d[:xw], y.d[:yw])
	}
	z.d = r
	z.neg = neg
	z.normalize()
	return z
}

// Sqr sets z = x * x and returns z.
func (z *Int) Sqr(x *Int) *Int {
	xw := x.MinimalWidth()
	if xw == 0 {
		return z.Zero()
	}
	r := z.scratch(2*xw, x, x)
	switch xw {
	case 4:
		sqrComba4((*[8]Word)(r), (*[4]Word)(x.d[:4]))
	case 8:
		sqrComba8((*[16]Word)(r), (*[8]Word)(x.d[:8]))
	default:
		sqrWords(r, x.d[:xw])
	}
	z.d = r
	z.neg = false
	z.normalize()
	return z
}

// scratch returns an n-word buffer for a result that will become z's
// storage. z's own storage is reused only when it does not alias x or y.
func (z *Int) scratch(n int, x, y *Int) []Word {
	if z != x && z != y && cap(z.d) >= n && !alias(z.d, x.d) && !alias(z.d, y.d) {
		return z.d[:n]
	}
	return make([]Word, n)
}

// Exp sets z = x**p for p >= 0.
func (z *Int) Exp(x, p *Int) error {
	if p.neg {
		return errors.WithMessage(ErrNegativeNumber, "negative exponent")
	}
	if p.IsZero() {
		z.One()
		return nil
	}
	xbits := x.BitLen()
	if xbits <= 1 {
		neg := x.neg && p.Bit(0) == 1
		z.Abs(x)
		z.normalize()
		z.SetNegative(neg)
		return nil
	}
	pw, ok := p.Word()
	if !ok || pw > maxWord/Word(xbits) || pw*Word(xbits) > maxWords*WordBits {
		return errors.WithMessagef(ErrBignumTooLong, "exponent of %d bits", p.BitLen())
	}
	neg := x.neg && pw&1 == 1
	base := new(Int).Abs(x)
	acc := new(Int).One()
	for i := p.BitLen() - 1; i >= 0; i-- {
		acc.Sqr(acc)
		if p.Bit(i) == 1 {
			acc.Mul(acc, base)
		}
	}
	z.Set(acc)
	z.SetNegative(neg)
	return nil
}

// Comba kernels for fixed operand sizes. They compute the same result as
// mulWords column by column, keeping a three word accumulator.

type comba struct{ c0, c1, c2 uint64 }

func (c *comba) mulAdd(a, b Word) {
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	var carry uint64
	c.c0, carry = bits.Add64(c.c0, lo, 0)
	c.c1, carry = bits.Add64(c.c1, hi, carry)
	c.c2 += carry
}

func (c *comba) shift() Word {
	out := Word(c.c0)
	c.c0, c.c1, c.c2 = c.c1, c.c2, 0
	return out
}

func mulComba4(r *[8]Word, a, b *[4]Word) {
	var c comba
	for k := 0; k < 7; k++ {
		for i := max(0, k-3); i <= min(k, 3); i++ {
			c.mulAdd(a[i], b[k-i])
		}
		r[k] = c.shift()
	}
	r[7] = c.shift()
}

func mulComba8(r *[16]Word, a, b *[8]Word) {
	var c comba
	for k := 0; k < 15; k++ {
		for i := max(0, k-7); i <= min(k, 7); i++ {
			c.mulAdd(a[i], b[k-i])
		}
		r[k] = c.shift()
	}
	r[15] = c.shift()
}

func sqrComba4(r *[8]Word, a *[4]Word) {
	mulComba4(r, a, a)
}

func sqrComba8(r *[16]Word, a *[8]Word) {
	mulComba8(r, a, a)
}
