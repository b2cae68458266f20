/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"math/bits"

	"github.com/pkg/errors"
)

// MaxMontgomeryWords is the largest modulus width, in words, accepted by the
// Montgomery routines.
const MaxMontgomeryWords = 128

// MontCtx holds the precomputed values for Montgomery arithmetic modulo an
// odd N. With R = 2^(WordBits*w) for the width w of N, it stores N,
// n0 = -N^-1 mod 2^WordBits and R^2 mod N.
type MontCtx struct {
	n  []Word
	rr []Word
	n0 Word
}

// NewMontCtx builds a Montgomery context for n in variable time.
func NewMontCtx(n *Int) (*MontCtx, error) {
	m, err := newMontCtxN(n)
	if err != nil {
		return nil, err
	}
	// R^2 mod N by division.
	w := len(m.n)
	r2 := new(Int)
	if err := r2.SetBit(2 * WordBits * w); err != nil {
		return nil, err
	}
	if err := NNMod(r2, r2, n); err != nil {
		return nil, err
	}
	m.rr = make([]Word, w)
	copy(m.rr, r2.d)
	return m, nil
}

// NewMontCtxConstTime builds a Montgomery context for n in time that depends
// only on the bit length of n, which is treated as public.
func NewMontCtxConstTime(n *Int) (*MontCtx, error) {
	m, err := newMontCtxN(n)
	if err != nil {
		return nil, err
	}
	w := len(m.n)
	m.rr = make([]Word, w)
	nbits := n.BitLen()
	if nbits == 1 {
		// N = 1 and every residue is zero.
		return m, nil
	}
	// Start from 2^(nbits-1), which is below N, and double modulo N up to
	// 2^(2*WordBits*w).
	var tmp [MaxMontgomeryWords]Word
	m.rr[(nbits-1)/WordBits] = 1 << (uint(nbits-1) % WordBits)
	for i := nbits - 1; i < 2*WordBits*w; i++ {
		modAddWords(m.rr, m.rr, m.rr, m.n, tmp[:w])
	}
	return m, nil
}

func newMontCtxN(n *Int) (*MontCtx, error) {
	switch {
	case n.IsZero():
		return nil, errors.WithMessage(ErrDivByZero, "zero modulus")
	case n.neg:
		return nil, errors.WithMessage(ErrNegativeNumber, "negative modulus")
	case !n.IsOdd():
		return nil, errors.WithStack(ErrCalledWithEvenModulus)
	}
	w := n.MinimalWidth()
	if w > MaxMontgomeryWords {
		return nil, errors.WithMessagef(ErrBignumTooLong, "modulus of %d words exceeds %d", w, MaxMontgomeryWords)
	}
	m := &MontCtx{
		n:  append([]Word(nil), n.d[:w]...),
		n0: minusInverse(n.d[0]),
	}
	return m, nil
}

// minusInverse returns -x^-1 mod 2^WordBits for odd x. Each Newton step
// doubles the number of correct low bits; x is its own inverse mod 8.
func minusInverse(x Word) Word {
	y := x
	for i := 0; i < 5; i++ {
		y = y * (2 - x*y)
	}
	return -y
}

// Modulus returns a copy of N.
func (m *MontCtx) Modulus() *Int {
	return new(Int).SetWords(m.n)
}

// N0 returns -N^-1 mod 2^WordBits.
func (m *MontCtx) N0() Word {
	return m.n0
}

// RR returns a copy of R^2 mod N at the width of N.
func (m *MontCtx) RR() *Int {
	return new(Int).SetWords(m.rr)
}

// Width returns the width of N in words.
func (m *MontCtx) Width() int {
	return len(m.n)
}

// montMul sets r = a*b*R^-1 mod N for a, b < N using word-serial
// multiplication and reduction. r may alias a or b.
func (m *MontCtx) montMul(r, a, b []Word) {
	n := len(m.n)
	var tbuf [MaxMontgomeryWords + 2]Word
	var sbuf [MaxMontgomeryWords]Word
	t := tbuf[:n+2]
	for i := 0; i < n; i++ {
		c := mulAddWords(t[:n], a, b[i])
		s, c2 := bits.Add64(uint64(t[n]), uint64(c), 0)
		t[n] = Word(s)
		t[n+1] = Word(c2)

		u := t[0] * m.n0
		c = mulAddWords(t[:n], m.n, u)
		s, c2 = bits.Add64(uint64(t[n]), uint64(c), 0)
		t[n] = Word(s)
		t[n+1] += Word(c2)

		// t[0] is now zero; divide by the word base.
		copy(t[:n+1], t[1:n+2])
		t[n+1] = 0
	}
	reduceOnce(r, t[:n], t[n], m.n, sbuf[:n])
}

// montReduce sets r = a*R^-1 mod N for a double-width a < N*R. a is
// clobbered.
func (m *MontCtx) montReduce(r, a []Word) {
	n := len(m.n)
	var carry uint64
	for i := 0; i < n; i++ {
		c := mulAddWords(a[i:i+n], m.n, a[i]*m.n0)
		var s uint64
		s, carry = bits.Add64(uint64(a[i+n]), uint64(c), carry)
		a[i+n] = Word(s)
	}
	var tmp [MaxMontgomeryWords]Word
	reduceOnce(r, a[n:2*n], Word(carry), m.n, tmp[:n])
}

// reduced returns x as exactly Width() words in [0, N), reducing it first if
// it is out of range.
func (m *MontCtx) reduced(x *Int) ([]Word, error) {
	if x.neg || cmpWords(x.d, m.n) >= 0 {
		t := new(Int)
		if err := NNMod(t, x, m.Modulus()); err != nil {
			return nil, err
		}
		x = t
	}
	return x.paddedWords(len(m.n)), nil
}

// ToMontgomery sets r = a*R mod N. Inputs outside [0, N) are reduced first.
func ToMontgomery(r, a *Int, m *MontCtx) error {
	aw, err := m.reduced(a)
	if err != nil {
		return err
	}
	out := make([]Word, len(m.n))
	m.montMul(out, aw, m.rr)
	r.d = out
	r.neg = false
	return nil
}

// FromMontgomery sets r = a*R^-1 mod N. a may be up to twice the width of N
// but must be below N*R.
func FromMontgomery(r, a *Int, m *MontCtx) error {
	n := len(m.n)
	if a.neg {
		return errors.WithStack(ErrNegativeNumber)
	}
	if a.MinimalWidth() > 2*n {
		return errors.WithMessagef(ErrBignumTooLong, "input of %d words", a.MinimalWidth())
	}
	var buf [2 * MaxMontgomeryWords]Word
	t := buf[:2*n]
	copy(t, a.d[:a.MinimalWidth()])
	if cmpWords(t[n:], m.n) >= 0 {
		return errors.WithStack(ErrInputNotReduced)
	}
	out := make([]Word, n)
	m.montReduce(out, t)
	r.d = out
	r.neg = false
	return nil
}

// ModMulMontgomery sets r = a*b*R^-1 mod N. Inputs outside [0, N) are
// reduced first. r may alias a or b.
func ModMulMontgomery(r, a, b *Int, m *MontCtx) error {
	aw, err := m.reduced(a)
	if err != nil {
		return err
	}
	bw := aw
	if b != a {
		if bw, err = m.reduced(b); err != nil {
			return err
		}
	}
	out := make([]Word, len(m.n))
	m.montMul(out, aw, bw)
	r.d = out
	r.neg = false
	return nil
}

// Word-level Montgomery kernels. All slices must have exactly the width of
// the context and hold values below N; the running time depends only on that
// width.

func (m *MontCtx) checkWords(ws ...[]Word) error {
	for _, w := range ws {
		if len(w) != len(m.n) {
			return errors.WithMessagef(ErrInvalidLength, "got %d words, want %d", len(w), len(m.n))
		}
	}
	return nil
}

// ToMontgomeryWords sets r = a*R mod N.
func (m *MontCtx) ToMontgomeryWords(r, a []Word) error {
	if err := m.checkWords(r, a); err != nil {
		return err
	}
	m.montMul(r, a, m.rr)
	return nil
}

// FromMontgomeryWords sets r = a*R^-1 mod N. a may have the width of N or
// twice that width, in which case it must be below N*R.
func (m *MontCtx) FromMontgomeryWords(r, a []Word) error {
	n := len(m.n)
	if err := m.checkWords(r); err != nil {
		return err
	}
	if len(a) != n && len(a) != 2*n {
		return errors.WithMessagef(ErrInvalidLength, "got %d words, want %d or %d", len(a), n, 2*n)
	}
	var buf [2 * MaxMontgomeryWords]Word
	t := buf[:2*n]
	copy(t, a)
	m.montReduce(r, t)
	return nil
}

// ModMulMontgomeryWords sets r = a*b*R^-1 mod N.
func (m *MontCtx) ModMulMontgomeryWords(r, a, b []Word) error {
	if err := m.checkWords(r, a, b); err != nil {
		return err
	}
	m.montMul(r, a, b)
	return nil
}

// ModExpMontWords sets r = a^e in the Montgomery domain, where a is in
// Montgomery form. The running time depends on e, which must be public.
func (m *MontCtx) ModExpMontWords(r, a, e []Word) error {
	if err := m.checkWords(r, a); err != nil {
		return err
	}
	n := len(m.n)
	ebits := new(Int).SetWords(e).BitLen()

	var accBuf, oneBuf [MaxMontgomeryWords]Word
	acc := accBuf[:n]
	one := oneBuf[:n]
	one[0] = 1
	// R mod N, the Montgomery form of one.
	m.montMul(acc, one, m.rr)
	if ebits == 0 {
		copy(r, acc)
		return nil
	}

	// Fixed 4-bit window over a public exponent.
	const window = 4
	var table [1 << window][MaxMontgomeryWords]Word
	copy(table[0][:n], acc)
	copy(table[1][:n], a)
	for i := 2; i < 1<<window; i++ {
		m.montMul(table[i][:n], table[i-1][:n], a)
	}

	top := (ebits + window - 1) / window * window
	for i := top - window; i >= 0; i -= window {
		for j := 0; j < window; j++ {
			m.montMul(acc, acc, acc)
		}
		idx := windowBits(e, i, window)
		m.montMul(acc, acc, table[idx][:n])
	}
	copy(r, acc)
	return nil
}

// ModInversePrimeMontWords sets r = a^-1 in the Montgomery domain, where a is
// in Montgomery form and N is prime, by computing a^(N-2).
func (m *MontCtx) ModInversePrimeMontWords(r, a []Word) error {
	if err := m.checkWords(r, a); err != nil {
		return err
	}
	e := append([]Word(nil), m.n...)
	if subWord(e, 2) != 0 {
		return errors.WithMessage(ErrInvalidInput, "modulus too small")
	}
	return m.ModExpMontWords(r, a, e)
}

// windowBits returns the size bits of e starting at bit position pos. The
// branches depend only on pos and size.
func windowBits(e []Word, pos, size int) Word {
	w := pos / WordBits
	b := uint(pos % WordBits)
	var v Word
	if w < len(e) {
		v = e[w] >> b
		if b+uint(size) > WordBits && w+1 < len(e) {
			v |= e[w+1] << (WordBits - b)
		}
	}
	return v & (1<<uint(size) - 1)
}
