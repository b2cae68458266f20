/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "github.com/pkg/errors"

// ModExp sets r = a^p mod m for any positive m. a may be negative or
// unreduced. Odd moduli use Montgomery arithmetic; even moduli use
// square-and-multiply with division. The running time depends on p.
func ModExp(r, a, p, m *Int) error {
	if m.IsZero() {
		return errors.WithStack(ErrDivByZero)
	}
	if m.neg {
		return errors.WithMessage(ErrNegativeNumber, "negative modulus")
	}
	if p.neg {
		return errors.WithMessage(ErrNegativeNumber, "negative exponent")
	}
	base := a
	if a.neg || a.CmpAbs(m) >= 0 {
		base = new(Int)
		if err := NNMod(base, a, m); err != nil {
			return err
		}
	}
	if m.IsOdd() {
		return ModExpMont(r, base, p, m, nil)
	}
	return modExpSimple(r, base, p, m)
}

func modExpSimple(r, a, p, m *Int) error {
	acc := new(Int).One()
	for i := p.BitLen() - 1; i >= 0; i-- {
		if err := ModSqr(acc, acc, m); err != nil {
			return err
		}
		if p.Bit(i) == 1 {
			if err := ModMul(acc, acc, a, m); err != nil {
				return err
			}
		}
	}
	// Covers p == 0, where acc is still 1.
	if err := NNMod(acc, acc, m); err != nil {
		return err
	}
	r.Set(acc)
	return nil
}

func checkMontExpArgs(a, p, m *Int) error {
	if m.neg {
		return errors.WithMessage(ErrNegativeNumber, "negative modulus")
	}
	if !m.IsOdd() {
		return errors.WithStack(ErrCalledWithEvenModulus)
	}
	if p.neg {
		return errors.WithMessage(ErrNegativeNumber, "negative exponent")
	}
	if a.neg || a.CmpAbs(m) >= 0 {
		return errors.WithStack(ErrInputNotReduced)
	}
	return nil
}

// expOfZero handles p == 0, where the result is 1 unless m is 1.
func expOfZero(r, m *Int) {
	if m.IsOne() {
		r.Zero()
		return
	}
	r.One()
}

func montFor(m *Int, mont *MontCtx, constTime bool) (*MontCtx, error) {
	if mont != nil {
		return mont, nil
	}
	if constTime {
		return NewMontCtxConstTime(m)
	}
	return NewMontCtx(m)
}

// slidingWindowBits returns the window size for a variable-time exponent of
// the given bit length.
func slidingWindowBits(b int) int {
	switch {
	case b > 671:
		return 6
	case b > 239:
		return 5
	case b > 79:
		return 4
	case b > 23:
		return 3
	default:
		return 1
	}
}

// ModExpMont sets r = a^p mod m for an odd m and 0 <= a < m using a sliding
// window. The running time depends on p. mont may be nil.
func ModExpMont(r, a, p, m *Int, mont *MontCtx) error {
	if err := checkMontExpArgs(a, p, m); err != nil {
		return err
	}
	ebits := p.BitLen()
	if ebits == 0 {
		expOfZero(r, m)
		return nil
	}
	mont, err := montFor(m, mont, false)
	if err != nil {
		return err
	}
	n := mont.Width()
	window := slidingWindowBits(ebits)

	// table[i] = a^(2i+1) in Montgomery form.
	table := make([][]Word, 1<<(window-1))
	table[0] = make([]Word, n)
	mont.montMul(table[0], a.paddedWords(n), mont.rr)
	sq := make([]Word, n)
	mont.montMul(sq, table[0], table[0])
	for i := 1; i < len(table); i++ {
		table[i] = make([]Word, n)
		mont.montMul(table[i], table[i-1], sq)
	}

	acc := make([]Word, n)
	started := false
	for wstart := ebits - 1; wstart >= 0; {
		if p.Bit(wstart) == 0 {
			if started {
				mont.montMul(acc, acc, acc)
			}
			wstart--
			continue
		}
		// Find the longest window of at most window bits ending in a one.
		wvalue, wend := 1, 0
		for i := 1; i < window && wstart-i >= 0; i++ {
			if p.Bit(wstart-i) == 1 {
				wvalue <<= i - wend
				wvalue |= 1
				wend = i
			}
		}
		if started {
			for i := 0; i <= wend; i++ {
				mont.montMul(acc, acc, acc)
			}
			mont.montMul(acc, acc, table[wvalue>>1])
		} else {
			copy(acc, table[wvalue>>1])
			started = true
		}
		wstart -= wend + 1
	}

	out := make([]Word, n)
	var buf [2 * MaxMontgomeryWords]Word
	copy(buf[:n], acc)
	mont.montReduce(out, buf[:2*n])
	r.d = out
	r.neg = false
	r.normalize()
	return nil
}

// constTimeWindowBits returns the fixed window size for a secret exponent of
// the given bit length.
func constTimeWindowBits(b int) int {
	switch {
	case b > 937:
		return 6
	case b > 306:
		return 5
	case b > 89:
		return 4
	case b > 22:
		return 3
	default:
		return 1
	}
}

// ModExpMontConstTime sets r = a^p mod m for an odd m and 0 <= a < m. The
// sequence of operations and memory accesses depends only on the bit length
// of p and the width of m. mont may be nil. The result is zero-padded to
// the minimal width of m.
func ModExpMontConstTime(r, a, p, m *Int, mont *MontCtx) error {
	if err := checkMontExpArgs(a, p, m); err != nil {
		return err
	}
	ebits := p.BitLen()
	if ebits == 0 {
		expOfZero(r, m)
		r.setWidth(m.MinimalWidth())
		return nil
	}
	mont, err := montFor(m, mont, true)
	if err != nil {
		return err
	}
	n := mont.Width()
	window := constTimeWindowBits(ebits)
	entries := 1 << window

	// table holds a^i in Montgomery form for 0 <= i < entries, row by row.
	table := make([]Word, entries*n)
	one := make([]Word, n)
	one[0] = 1
	mont.montMul(table[:n], one, mont.rr)
	mont.montMul(table[n:2*n], a.paddedWords(n), mont.rr)
	for i := 2; i < entries; i++ {
		mont.montMul(table[i*n:(i+1)*n], table[(i-1)*n:i*n], table[n:2*n])
	}

	pw := p.d
	acc := make([]Word, n)
	val := make([]Word, n)
	top := (ebits - 1) / window * window
	lookupFlat(acc, table, windowBits(pw, top, window))
	for i := top - window; i >= 0; i -= window {
		for j := 0; j < window; j++ {
			mont.montMul(acc, acc, acc)
		}
		lookupFlat(val, table, windowBits(pw, i, window))
		mont.montMul(acc, acc, val)
	}

	out := make([]Word, n)
	var buf [2 * MaxMontgomeryWords]Word
	copy(buf[:n], acc)
	mont.montReduce(out, buf[:2*n])
	r.d = out
	r.neg = false
	return nil
}

// ModExpMontWord sets r = a^p mod m for a single-word base a.
func ModExpMontWord(r *Int, a Word, p, m *Int, mont *MontCtx) error {
	base := NewWord(a)
	if base.CmpAbs(m) >= 0 && !m.IsZero() {
		if err := NNMod(base, base, m); err != nil {
			return err
		}
	}
	return ModExpMont(r, base, p, m, mont)
}

// ModExp2Mont sets r = a1^p1 * a2^p2 mod m.
func ModExp2Mont(r, a1, p1, a2, p2, m *Int, mont *MontCtx) error {
	if err := checkMontExpArgs(a1, p1, m); err != nil {
		return err
	}
	var err error
	if mont, err = montFor(m, mont, false); err != nil {
		return err
	}
	t1, t2 := new(Int), new(Int)
	if err := ModExpMont(t1, a1, p1, m, mont); err != nil {
		return err
	}
	if err := ModExpMont(t2, a2, p2, m, mont); err != nil {
		return err
	}
	// t1*t2*R^-1 followed by *R^2*R^-1 gives t1*t2 mod m.
	if err := ModMulMontgomery(t1, t1, t2, mont); err != nil {
		return err
	}
	return ModMulMontgomery(r, t1, mont.RR(), mont)
}
