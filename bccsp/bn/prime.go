/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"io"

	"github.com/pkg/errors"
)

const (
	// ChecksForGeneration selects a number of Miller-Rabin rounds based on
	// the size of the candidate, sufficient for randomly generated values.
	ChecksForGeneration = 0
	// ChecksForValidation is the number of rounds used for values that may
	// have been chosen by an adversary.
	ChecksForValidation = 64
)

// checksForSize returns the number of Miller-Rabin rounds for a random
// candidate of the given bit length that keep the false positive rate
// below 2^-80.
func checksForSize(bits int) int {
	switch {
	case bits >= 3747:
		return 3
	case bits >= 1345:
		return 4
	case bits >= 476:
		return 5
	case bits >= 400:
		return 6
	case bits >= 308:
		return 8
	case bits >= 205:
		return 13
	case bits >= 155:
		return 19
	default:
		return 28
	}
}

// PrimalityTest reports whether w is probably prime, using trial division
// when doTrialDivision is set and then checks rounds of Miller-Rabin with
// witnesses drawn from rng (crypto/rand if nil). checks may be
// ChecksForGeneration or ChecksForValidation. Values below 2 are not prime.
func PrimalityTest(w *Int, checks int, doTrialDivision bool, rng io.Reader) (bool, error) {
	if checks < 0 {
		return false, errors.WithMessagef(ErrInvalidInput, "%d checks", checks)
	}
	if w.CmpWord(1) <= 0 {
		return false, nil
	}
	if !w.IsOdd() {
		return w.IsWord(2), nil
	}
	if w.IsWord(3) {
		return true, nil
	}
	if doTrialDivision {
		if p, found := trialDivision(w); found {
			return w.IsWord(p), nil
		}
	}

	mont, err := NewMontCtx(w)
	if err != nil {
		return false, err
	}
	mr, err := NewMillerRabin(mont)
	if err != nil {
		return false, err
	}
	if checks == ChecksForGeneration {
		checks = checksForSize(w.BitLen())
	}
	for i := 0; i < checks; i++ {
		b, err := RandRange(2, mr.w1, rng)
		if err != nil {
			return false, err
		}
		possiblyPrime, err := mr.Iteration(b)
		if err != nil {
			return false, err
		}
		if !possiblyPrime {
			return false, nil
		}
	}
	return true, nil
}

// IsPrime reports whether w is probably prime using trial division and
// ChecksForValidation rounds of Miller-Rabin.
func IsPrime(w *Int) (bool, error) {
	return PrimalityTest(w, ChecksForValidation, true, nil)
}

// MillerRabin holds the per-candidate state for Miller-Rabin rounds on an odd
// w: w - 1 = m * 2^a with m odd, together with 1 and w - 1 in Montgomery
// form.
type MillerRabin struct {
	mont    *MontCtx
	w1      *Int
	m       *Int
	a       int
	wBits   int
	oneMont []Word
	w1Mont  []Word
}

// NewMillerRabin prepares Miller-Rabin rounds for the modulus of mont.
func NewMillerRabin(mont *MontCtx) (*MillerRabin, error) {
	w := mont.Modulus()
	if w.CmpWord(3) < 0 {
		return nil, errors.WithMessage(ErrInvalidInput, "candidate must be at least 3")
	}
	w1 := new(Int).Set(w)
	w1.SubWord(1)
	a := w1.TrailingZeroBits()
	n := mont.Width()
	mr := &MillerRabin{
		mont:    mont,
		w1:      w1,
		m:       new(Int).Rsh(w1, uint(a)),
		a:       a,
		wBits:   w.BitLen(),
		oneMont: make([]Word, n),
		w1Mont:  make([]Word, n),
	}
	one := make([]Word, n)
	one[0] = 1
	mont.montMul(mr.oneMont, one, mont.rr)
	mont.montMul(mr.w1Mont, w1.paddedWords(n), mont.rr)
	return mr, nil
}

// W1 returns w - 1.
func (mr *MillerRabin) W1() *Int {
	return mr.w1.Clone()
}

// Iteration runs one Miller-Rabin round with witness b, 0 <= b < w. It
// reports false only if b proves w composite. Rounds for prime w take time
// that depends only on the bit length of w.
func (mr *MillerRabin) Iteration(b *Int) (bool, error) {
	mont := mr.mont
	w := mont.Modulus()
	n := mont.Width()

	z := new(Int)
	if err := ModExpMontConstTime(z, b, mr.m, w, mont); err != nil {
		return false, err
	}
	zm := make([]Word, n)
	mont.montMul(zm, z.paddedWords(n), mont.rr)

	// possiblyPrime is a mask that becomes set once b is known not to be a
	// witness. Composite outcomes may exit early.
	possiblyPrime := equalWords(zm, mr.oneMont) | equalWords(zm, mr.w1Mont)
	for j := 1; j < mr.wBits; j++ {
		if ctEq(Word(j), Word(mr.a))&^possiblyPrime != 0 {
			break
		}
		mont.montMul(zm, zm, zm)
		possiblyPrime |= equalWords(zm, mr.w1Mont)
		// A square root of one other than -1 proves w composite.
		if equalWords(zm, mr.oneMont)&^possiblyPrime != 0 {
			break
		}
	}
	return possiblyPrime&1 == 1, nil
}

// PrimalityResult is the outcome of EnhancedMillerRabin.
type PrimalityResult int

const (
	// ProbablyPrime means no witness proved the candidate composite.
	ProbablyPrime PrimalityResult = iota
	// Composite means a witness shared a factor with the candidate.
	Composite
	// Undetermined means the candidate is composite but the witness gave
	// no factor. The candidate is not a prime power.
	Undetermined
)

func (r PrimalityResult) String() string {
	switch r {
	case ProbablyPrime:
		return "probably prime"
	case Composite:
		return "composite"
	case Undetermined:
		return "composite, not a prime power"
	default:
		return "unknown"
	}
}

// EnhancedMillerRabin runs the enhanced Miller-Rabin test from FIPS 186-4
// appendix C.3.2 on an odd w > 3. It runs in variable time.
func EnhancedMillerRabin(w *Int, checks int, rng io.Reader) (PrimalityResult, error) {
	if !w.IsOdd() || w.neg || w.CmpWord(3) <= 0 {
		return Composite, errors.WithMessage(ErrInvalidInput, "enhanced Miller-Rabin needs an odd value above 3")
	}
	if checks < 0 {
		return Composite, errors.WithMessagef(ErrInvalidInput, "%d checks", checks)
	}
	if checks == ChecksForGeneration {
		checks = checksForSize(w.BitLen())
	}
	mont, err := NewMontCtx(w)
	if err != nil {
		return Composite, err
	}
	mr, err := NewMillerRabin(mont)
	if err != nil {
		return Composite, err
	}

	g, z, x := new(Int), new(Int), new(Int)
	for i := 0; i < checks; i++ {
		b, err := RandRange(2, mr.w1, rng)
		if err != nil {
			return Composite, err
		}
		Gcd(g, b, w)
		if g.CmpWord(1) > 0 {
			return Composite, nil
		}
		if err := ModExpMont(z, b, mr.m, w, mont); err != nil {
			return Composite, err
		}
		if z.IsOne() || z.Cmp(mr.w1) == 0 {
			continue
		}

		result, err := enhancedRound(mr, w, z, x, g)
		if err != nil {
			return Composite, err
		}
		if result != ProbablyPrime {
			logger.Debugf("enhanced Miller-Rabin on %d-bit candidate: %s after %d rounds", mr.wBits, result, i+1)
			return result, nil
		}
	}
	return ProbablyPrime, nil
}

// enhancedRound squares z up to a times looking for w-1. On failure it
// derives a factor from gcd(x-1, w) where x is the last value before 1.
func enhancedRound(mr *MillerRabin, w, z, x, g *Int) (PrimalityResult, error) {
	for j := 1; j < mr.a; j++ {
		x.Set(z)
		if err := ModSqr(z, x, w); err != nil {
			return Composite, err
		}
		if z.Cmp(mr.w1) == 0 {
			return ProbablyPrime, nil
		}
		if z.IsOne() {
			return factorFrom(x, w, g), nil
		}
	}
	x.Set(z)
	if err := ModSqr(z, x, w); err != nil {
		return Composite, err
	}
	if !z.IsOne() {
		x.Set(z)
	}
	return factorFrom(x, w, g), nil
}

func factorFrom(x, w, g *Int) PrimalityResult {
	xm1 := new(Int).Set(x)
	xm1.SubWord(1)
	Gcd(g, xm1, w)
	if g.CmpWord(1) > 0 {
		return Composite
	}
	return Undetermined
}
