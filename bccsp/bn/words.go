/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "math/bits"

// Word-vector primitives. Unless stated otherwise all slices have equal
// length, outputs may alias inputs, and the running time depends only on the
// lengths.

// addWords sets r = a + b and returns the carry.
func addWords(r, a, b []Word) Word {
	var c uint64
	for i := range r {
		var s uint64
		s, c = bits.Add64(uint64(a[i]), uint64(b[i]), c)
		r[i] = Word(s)
	}
	return Word(c)
}

// subWords sets r = a - b and returns the borrow.
func subWords(r, a, b []Word) Word {
	var c uint64
	for i := range r {
		var s uint64
		s, c = bits.Sub64(uint64(a[i]), uint64(b[i]), c)
		r[i] = Word(s)
	}
	return Word(c)
}

// addWord adds w to r in place and returns the carry out of the top word.
func addWord(r []Word, w Word) Word {
	c := uint64(w)
	for i := range r {
		var s uint64
		s, c = bits.Add64(uint64(r[i]), c, 0)
		r[i] = Word(s)
	}
	return Word(c)
}

// subWord subtracts w from r in place and returns the borrow.
func subWord(r []Word, w Word) Word {
	c := uint64(w)
	for i := range r {
		var s uint64
		s, c = bits.Sub64(uint64(r[i]), c, 0)
		r[i] = Word(s)
	}
	return Word(c)
}

// mulAddWords sets r += a*w and returns the high word of the result.
func mulAddWords(r, a []Word, w Word) Word {
	var carry uint64
	for i := range a {
		hi, lo := bits.Mul64(uint64(a[i]), uint64(w))
		var c uint64
		lo, c = bits.Add64(lo, uint64(r[i]), 0)
		hi += c
		lo, c = bits.Add64(lo, carry, 0)
		hi += c
		r[i] = Word(lo)
		carry = hi
	}
	return Word(carry)
}

// mulWords1 sets r = a*w and returns the high word of the result.
func mulWords1(r, a []Word, w Word) Word {
	var carry uint64
	for i := range a {
		hi, lo := bits.Mul64(uint64(a[i]), uint64(w))
		var c uint64
		lo, c = bits.Add64(lo, carry, 0)
		r[i] = Word(lo)
		carry = hi + c
	}
	return Word(carry)
}

// mulWords sets r = a*b using schoolbook multiplication. len(r) must be
// len(a)+len(b) and r must not alias a or b.
func mulWords(r, a, b []Word) {
	clear(r)
	for i, bi := range b {
		r[i+len(a)] = mulAddWords(r[i:i+len(a)], a, bi)
	}
}

// sqrWords sets r = a*a. len(r) must be 2*len(a) and r must not alias a.
func sqrWords(r, a []Word) {
	n := len(a)
	clear(r)
	if n == 0 {
		return
	}
	// Cross products a[i]*a[j] for i < j.
	for i := 0; i < n-1; i++ {
		r[i+n] = mulAddWords(r[2*i+1:i+n], a[i+1:], a[i])
	}
	// Double them.
	var top Word
	for i := range r {
		w := r[i]
		r[i] = w<<1 | top
		top = w >> 63
	}
	// Add the squares a[i]*a[i].
	var carry uint64
	for i := 0; i < n; i++ {
		hi, lo := bits.Mul64(uint64(a[i]), uint64(a[i]))
		var s uint64
		s, carry = bits.Add64(uint64(r[2*i]), lo, carry)
		r[2*i] = Word(s)
		s, carry = bits.Add64(uint64(r[2*i+1]), hi, carry)
		r[2*i+1] = Word(s)
	}
}

// rshiftWords sets r = a >> shift. Shift amounts of at least the total bit
// width yield zero. The branches depend only on shift, which is public.
func rshiftWords(r, a []Word, shift uint) {
	n := len(a)
	nw := int(shift / WordBits)
	lb := shift % WordBits
	if nw >= n {
		clear(r)
		return
	}
	if lb == 0 {
		for i := 0; i < n-nw; i++ {
			r[i] = a[i+nw]
		}
	} else {
		for i := 0; i < n-nw-1; i++ {
			r[i] = a[i+nw]>>lb | a[i+nw+1]<<(WordBits-lb)
		}
		r[n-nw-1] = a[n-1] >> lb
	}
	clear(r[n-nw:])
}

// rshift1Words sets r = a >> 1 with carry shifted into the top bit.
func rshift1Words(r, a []Word, carry Word) {
	n := len(a)
	for i := 0; i < n-1; i++ {
		r[i] = a[i]>>1 | a[i+1]<<(WordBits-1)
	}
	r[n-1] = a[n-1]>>1 | carry<<(WordBits-1)
}

// reduceOnce sets r = a - m if carry:a >= m, otherwise r = a. It requires
// carry:a < 2*m and returns a mask that is set if no subtraction took place.
// tmp must have the length of m.
func reduceOnce(r, a []Word, carry Word, m, tmp []Word) Word {
	carry -= subWords(tmp, a, m)
	selectWords(r, carry, a, tmp)
	return carry
}

// modAddWords sets r = a + b mod m for a, b < m.
func modAddWords(r, a, b, m, tmp []Word) {
	carry := addWords(r, a, b)
	reduceOnce(r, r, carry, m, tmp)
}

// modSubWords sets r = a - b mod m for a, b < m.
func modSubWords(r, a, b, m, tmp []Word) {
	borrow := subWords(r, a, b)
	addWords(tmp, r, m)
	selectWords(r, -borrow, tmp, r)
}

// cmpWords compares a and b, treating missing high words as zero. It may
// branch on the values.
func cmpWords(a, b []Word) int {
	n := max(len(a), len(b))
	for i := n - 1; i >= 0; i-- {
		var x, y Word
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}
