/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "math/bits"

// Constant-time helpers. A mask is a Word that is either all ones (true) or
// all zeros (false). None of these functions branch on their arguments.

func ctMSB(a Word) Word {
	return Word(int64(a) >> 63)
}

func ctIsZero(a Word) Word {
	return ctMSB(^a & (a - 1))
}

func ctEq(a, b Word) Word {
	return ctIsZero(a ^ b)
}

// ctLt returns a mask that is set iff a < b.
func ctLt(a, b Word) Word {
	_, borrow := bits.Sub64(uint64(a), uint64(b), 0)
	return -Word(borrow)
}

func ctSelect(mask, a, b Word) Word {
	return (mask & a) | (^mask & b)
}

// ctBool converts a 0/1 value into a mask.
func ctBool(b Word) Word {
	return -(b & 1)
}

// ConstantTimeSelect returns a if mask is all ones and b if mask is zero.
func ConstantTimeSelect(mask, a, b Word) Word {
	return ctSelect(mask, a, b)
}

// selectWords sets r[i] = a[i] if mask is set, otherwise b[i]. The slices
// must have equal length and may alias.
func selectWords(r []Word, mask Word, a, b []Word) {
	for i := range r {
		r[i] = ctSelect(mask, a[i], b[i])
	}
}

// isZeroWords returns a mask that is set iff every word of a is zero.
func isZeroWords(a []Word) Word {
	var acc Word
	for _, w := range a {
		acc |= w
	}
	return ctIsZero(acc)
}

// equalWords compares two word slices, treating missing words as zero.
func equalWords(a, b []Word) Word {
	if len(a) < len(b) {
		a, b = b, a
	}
	var acc Word
	for i := range b {
		acc |= a[i] ^ b[i]
	}
	for _, w := range a[len(b):] {
		acc |= w
	}
	return ctIsZero(acc)
}

// lessThanWords returns a mask that is set iff a < b. Both have equal length.
func lessThanWords(a, b []Word) Word {
	var borrow uint64
	for i := range a {
		_, borrow = bits.Sub64(uint64(a[i]), uint64(b[i]), borrow)
	}
	return -Word(borrow)
}

// trailingZerosCT counts the trailing zero bits of a nonzero word without
// branching on its value.
func trailingZerosCT(l Word) Word {
	var n Word
	for _, shift := range [...]uint{32, 16, 8, 4, 2, 1} {
		mask := ctIsZero(l & (Word(1)<<shift - 1))
		n += Word(shift) & mask
		l = ctSelect(mask, l>>shift, l)
	}
	return n
}

// TableLookup copies entry idx of a table of equally sized entries into out.
// Every entry is read regardless of idx.
func TableLookup(out []Word, table [][]Word, idx int) {
	clear(out)
	for i, entry := range table {
		mask := ctEq(Word(i), Word(idx))
		for j := range out {
			out[j] |= entry[j] & mask
		}
	}
}

// lookupFlat is TableLookup over a table stored as consecutive rows of
// len(out) words.
func lookupFlat(out []Word, table []Word, idx Word) {
	n := len(out)
	clear(out)
	for i := 0; i*n < len(table); i++ {
		mask := ctEq(Word(i), idx)
		row := table[i*n : (i+1)*n]
		for j := range out {
			out[j] |= row[j] & mask
		}
	}
}
