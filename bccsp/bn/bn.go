/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package bn implements multi-precision integer arithmetic for public-key
// cryptography.
//
// An Int stores its magnitude as a little-endian slice of 64-bit words. The
// length of that slice is the width of the value and is allowed to exceed the
// minimal number of words needed to hold it. Operations whose names carry a
// ConstTime suffix, together with the Montgomery kernels, take time that
// depends only on the widths of their operands, never on their values.
// Everything else may branch on values and must only be given public data.
//
// Values are not safe for concurrent mutation. A fully constructed MontCtx
// may be shared by any number of goroutines.
package bn

import (
	"math/bits"

	"github.com/hyperledger/fabric-bignum/common/flogging"
	"github.com/pkg/errors"
)

var logger = flogging.MustGetLogger("bn")

// Word is a single limb of an Int.
type Word uint64

const (
	// WordBits is the number of bits in a Word.
	WordBits = 64
	// WordBytes is the number of bytes in a Word.
	WordBytes = 8

	maxWord = ^Word(0)

	// maxWords bounds the width of any value produced by an operation that
	// can grow its output without bound (shifts, exponentiation, parsing).
	maxWords = 1 << 24
)

// Int is a signed multi-precision integer. The zero value is 0 and ready to
// use.
type Int struct {
	d   []Word
	neg bool
}

// New returns a new Int set to zero.
func New() *Int {
	return &Int{}
}

// NewWord returns a new Int holding w.
func NewWord(w Word) *Int {
	return new(Int).SetWord(w)
}

// Clone returns a deep copy of x.
func (x *Int) Clone() *Int {
	return new(Int).Set(x)
}

// Set sets z to x, preserving x's width, and returns z.
func (z *Int) Set(x *Int) *Int {
	if z == x {
		return z
	}
	z.setWidth(len(x.d))
	copy(z.d, x.d)
	z.neg = x.neg
	return z
}

// SetWord sets z to w and returns z.
func (z *Int) SetWord(w Word) *Int {
	z.neg = false
	if w == 0 {
		z.d = z.d[:0]
		return z
	}
	z.setWidth(1)
	z.d[0] = w
	return z
}

// SetUint64 sets z to v and returns z.
func (z *Int) SetUint64(v uint64) *Int {
	return z.SetWord(Word(v))
}

// SetInt64 sets z to v and returns z.
func (z *Int) SetInt64(v int64) *Int {
	if v < 0 {
		z.SetWord(Word(-uint64(v)))
		z.neg = true
		return z
	}
	return z.SetWord(Word(v))
}

// SetWords sets z to the non-negative value held in the little-endian word
// slice ws. The width of z becomes len(ws).
func (z *Int) SetWords(ws []Word) *Int {
	z.setWidth(len(ws))
	copy(z.d, ws)
	z.neg = false
	return z
}

// Words returns a copy of the little-endian words of |x| at x's current width.
func (x *Int) Words() []Word {
	out := make([]Word, len(x.d))
	copy(out, x.d)
	return out
}

// Zero sets z to 0 and returns z.
func (z *Int) Zero() *Int {
	z.d = z.d[:0]
	z.neg = false
	return z
}

// One sets z to 1 and returns z.
func (z *Int) One() *Int {
	return z.SetWord(1)
}

// Width returns the number of words in x's representation, including any
// leading zero words.
func (x *Int) Width() int {
	return len(x.d)
}

// MinimalWidth returns the number of words needed to represent |x|.
func (x *Int) MinimalWidth() int {
	n := len(x.d)
	for n > 0 && x.d[n-1] == 0 {
		n--
	}
	return n
}

// Normalize strips leading zero words from x and returns x.
func (x *Int) Normalize() *Int {
	x.normalize()
	return x
}

// Resize changes the width of z to exactly words, zero-padding as needed.
// Shrinking fails with ErrBignumTooLong if a nonzero word would be dropped.
func (z *Int) Resize(words int) error {
	if words < 0 || words > maxWords {
		return errors.WithMessagef(ErrBignumTooLong, "cannot resize to %d words", words)
	}
	if words < len(z.d) {
		for _, w := range z.d[words:] {
			if w != 0 {
				return errors.WithMessagef(ErrBignumTooLong, "value does not fit in %d words", words)
			}
		}
		z.d = z.d[:words]
		if words == 0 {
			z.neg = false
		}
		return nil
	}
	z.setWidth(words)
	return nil
}

// IsZero reports whether x == 0.
func (x *Int) IsZero() bool {
	for _, w := range x.d {
		if w != 0 {
			return false
		}
	}
	return true
}

// IsOne reports whether x == 1.
func (x *Int) IsOne() bool {
	return !x.neg && x.IsWord(1)
}

// IsWord reports whether |x| == w.
func (x *Int) IsWord(w Word) bool {
	if len(x.d) == 0 {
		return w == 0
	}
	if x.d[0] != w {
		return false
	}
	for _, v := range x.d[1:] {
		if v != 0 {
			return false
		}
	}
	return true
}

// IsOdd reports whether x is odd.
func (x *Int) IsOdd() bool {
	return len(x.d) > 0 && x.d[0]&1 == 1
}

// IsNegative reports whether x < 0.
func (x *Int) IsNegative() bool {
	return x.neg
}

// SetNegative sets the sign of x. Zero is never made negative.
func (x *Int) SetNegative(neg bool) *Int {
	x.neg = neg && !x.IsZero()
	return x
}

// Neg sets z to -x and returns z.
func (z *Int) Neg(x *Int) *Int {
	z.Set(x)
	return z.SetNegative(!x.neg)
}

// Abs sets z to |x| and returns z.
func (z *Int) Abs(x *Int) *Int {
	z.Set(x)
	z.neg = false
	return z
}

// Sign returns -1, 0 or +1 depending on the sign of x.
func (x *Int) Sign() int {
	switch {
	case x.IsZero():
		return 0
	case x.neg:
		return -1
	default:
		return 1
	}
}

// BitLen returns the number of significant bits in |x|.
func (x *Int) BitLen() int {
	n := x.MinimalWidth()
	if n == 0 {
		return 0
	}
	return (n-1)*WordBits + bits.Len64(uint64(x.d[n-1]))
}

// ByteLen returns the number of bytes needed to hold |x|.
func (x *Int) ByteLen() int {
	return (x.BitLen() + 7) / 8
}

// Bit returns bit i of |x|.
func (x *Int) Bit(i int) uint {
	if i < 0 {
		return 0
	}
	w := i / WordBits
	if w >= len(x.d) {
		return 0
	}
	return uint(x.d[w]>>(uint(i)%WordBits)) & 1
}

// SetBit sets bit i of |z|, growing z if needed.
func (z *Int) SetBit(i int) error {
	if i < 0 || i/WordBits >= maxWords {
		return errors.WithMessagef(ErrBignumTooLong, "bit %d out of range", i)
	}
	w := i / WordBits
	if w >= len(z.d) {
		z.setWidth(w + 1)
	}
	z.d[w] |= 1 << (uint(i) % WordBits)
	return nil
}

// ClearBit clears bit i of |z|.
func (z *Int) ClearBit(i int) {
	w := i / WordBits
	if i < 0 || w >= len(z.d) {
		return
	}
	z.d[w] &^= 1 << (uint(i) % WordBits)
	if z.IsZero() {
		z.neg = false
	}
}

// MaskBits truncates |z| to its n least significant bits.
func (z *Int) MaskBits(n int) {
	if n < 0 {
		n = 0
	}
	w := n / WordBits
	if w >= len(z.d) {
		return
	}
	b := uint(n) % WordBits
	z.d = z.d[:w+1]
	z.d[w] &= (1 << b) - 1
	z.normalize()
}

// TrailingZeroBits returns the number of consecutive zero bits at the bottom
// of |x|. The running time depends only on the width of x. Zero has no
// trailing zero bits under this definition and returns 0.
func (x *Int) TrailingZeroBits() int {
	var (
		ret  Word
		seen Word
	)
	for i, w := range x.d {
		nonzero := ^ctIsZero(w)
		first := nonzero &^ seen
		seen |= nonzero
		ret |= first & (Word(i)*WordBits + trailingZerosCT(w))
	}
	return int(ret & seen)
}

// IsPow2 reports whether |x| is a power of two.
func (x *Int) IsPow2() bool {
	n := x.MinimalWidth()
	if n == 0 {
		return false
	}
	for _, w := range x.d[:n-1] {
		if w != 0 {
			return false
		}
	}
	top := x.d[n-1]
	return top&(top-1) == 0
}

// Word returns the low word of |x|. The second return value is false if |x|
// does not fit in a single word.
func (x *Int) Word() (Word, bool) {
	switch n := x.MinimalWidth(); n {
	case 0:
		return 0, true
	case 1:
		return x.d[0], true
	default:
		return x.d[0], false
	}
}

// Uint64 returns the low 64 bits of |x|.
func (x *Int) Uint64() uint64 {
	if len(x.d) == 0 {
		return 0
	}
	return uint64(x.d[0])
}

// setWidth sets the width of z to n, zero-filling any newly exposed words and
// preserving the existing low words.
func (z *Int) setWidth(n int) {
	old := len(z.d)
	if n <= old {
		z.d = z.d[:n]
		return
	}
	if n <= cap(z.d) {
		z.d = z.d[:n]
	} else {
		d := make([]Word, n, n+n/4+1)
		copy(d, z.d)
		z.d = d
	}
	clear(z.d[old:n])
}

// normalize strips leading zero words and clears the sign of zero.
func (z *Int) normalize() {
	z.d = z.d[:z.MinimalWidth()]
	if len(z.d) == 0 {
		z.neg = false
	}
}

// paddedWords returns |x| as exactly n words, borrowing x's storage when its
// width already matches. The caller must not modify the result.
func (x *Int) paddedWords(n int) []Word {
	if len(x.d) == n {
		return x.d
	}
	out := make([]Word, n)
	copy(out, x.d)
	return out
}

// alias reports whether x and y share the same backing array.
func alias(x, y []Word) bool {
	return cap(x) > 0 && cap(y) > 0 && &x[0:cap(x)][cap(x)-1] == &y[0:cap(y)][cap(y)-1]
}
