/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "github.com/pkg/errors"

// Lsh sets z = x << n. The sign of x is preserved.
func (z *Int) Lsh(x *Int, n uint) error {
	xw := x.MinimalWidth()
	if xw == 0 {
		z.Zero()
		return nil
	}
	nw := int(n / WordBits)
	if n/WordBits >= maxWords || xw+nw+1 > maxWords {
		return errors.WithMessagef(ErrBignumTooLong, "shift by %d bits", n)
	}
	lb := n % WordBits
	neg := x.neg
	src := x.d[:xw]
	z.setWidth(xw + nw + 1)
	d := z.d
	if z == x {
		src = d[:xw]
	}
	if lb == 0 {
		for i := xw - 1; i >= 0; i-- {
			d[i+nw] = src[i]
		}
		d[xw+nw] = 0
	} else {
		d[xw+nw] = src[xw-1] >> (WordBits - lb)
		for i := xw - 1; i > 0; i-- {
			d[i+nw] = src[i]<<lb | src[i-1]>>(WordBits-lb)
		}
		d[nw] = src[0] << lb
	}
	clear(d[:nw])
	z.neg = neg
	z.normalize()
	return nil
}

// Lsh1 sets z = x << 1.
func (z *Int) Lsh1(x *Int) *Int {
	xw := x.MinimalWidth()
	neg := x.neg
	z.setWidth(max(len(z.d), xw+1))
	if z != x {
		copy(z.d, x.d[:xw])
	}
	z.d[xw] = 0
	var top Word
	for i := 0; i <= xw; i++ {
		w := z.d[i]
		z.d[i] = w<<1 | top
		top = w >> (WordBits - 1)
	}
	z.d = z.d[:xw+1]
	z.neg = neg
	z.normalize()
	return z
}

// Rsh sets z = x >> n, shifting the magnitude. The sign of x is preserved
// unless the result is zero.
func (z *Int) Rsh(x *Int, n uint) *Int {
	xw := len(x.d)
	nw := n / WordBits
	if nw >= uint(xw) {
		return z.Zero()
	}
	neg := x.neg
	rw := xw - int(nw)
	src := x.d
	var d []Word
	if z == x {
		d = src[:rw]
	} else {
		z.setWidth(rw)
		d = z.d
	}
	rshiftWords(d, src[:xw], n)
	z.d = d
	z.neg = neg
	z.normalize()
	return z
}

// Rsh1 sets z = x >> 1.
func (z *Int) Rsh1(x *Int) *Int {
	return z.Rsh(x, 1)
}

// RshSecretShift sets z = x >> n where n is secret. The running time depends
// only on the width of x, which is also the width of the result.
func (z *Int) RshSecretShift(x *Int, n uint) *Int {
	width := len(x.d)
	neg := x.neg
	r := make([]Word, width)
	tmp := make([]Word, width)
	copy(r, x.d)
	for i := 0; uint(width*WordBits)>>i != 0; i++ {
		mask := ctBool(Word(n >> i))
		rshiftWords(tmp, r, 1<<i)
		selectWords(r, mask, tmp, r)
	}
	// Shifts of at least the full width clear the value.
	big := ^ctLt(Word(n), Word(width*WordBits))
	for i := range r {
		r[i] &^= big
	}
	z.d = r
	z.neg = neg && isZeroWords(r) == 0
	return z
}
