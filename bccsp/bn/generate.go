/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"io"

	"github.com/pkg/errors"
)

// GenEvent identifies a progress report from GeneratePrime.
type GenEvent int

const (
	// GenGenerated is reported for every candidate that survives sieving.
	// The counter is the number of candidates so far.
	GenGenerated GenEvent = iota
	// GenPrimeTest is reported after each round of safe-prime testing.
	GenPrimeTest
	// GenFound is reported once, with the number of candidates, when a prime
	// is returned.
	GenFound
)

// GenCallback receives progress reports from GeneratePrime. Returning an
// error aborts generation with that error.
type GenCallback func(event GenEvent, n int) error

// GeneratePrime returns a random prime of exactly bits bits. If safe is set,
// (p-1)/2 is also prime. If add is not nil, the prime satisfies
// p mod add == rem, where a nil rem means 1 (or 3 for safe primes). rng may
// be nil to use crypto/rand and cb may be nil.
func GeneratePrime(bits int, safe bool, add, rem *Int, rng io.Reader, cb GenCallback) (*Int, error) {
	if bits < 2 || (bits == 2 && safe) {
		return nil, errors.WithMessagef(ErrBitsTooSmall, "cannot generate a %d-bit prime", bits)
	}
	if add != nil {
		if add.IsZero() || add.neg {
			return nil, errors.WithMessage(ErrInvalidInput, "add must be positive")
		}
		if add.BitLen() >= bits {
			return nil, errors.WithMessagef(ErrBitsTooSmall, "add of %d bits for a %d-bit prime", add.BitLen(), bits)
		}
		if rem != nil && (rem.neg || rem.Cmp(add) >= 0) {
			return nil, errors.WithMessage(ErrInvalidInput, "rem must be in [0, add)")
		}
		if err := checkResidue(add, rem, safe); err != nil {
			return nil, err
		}
	}
	if cb == nil {
		cb = func(GenEvent, int) error { return nil }
	}
	checks := checksForSize(bits)
	logger.Debugf("generating %d-bit prime, safe=%t, %d rounds", bits, safe, checks)

	for candidates := 0; ; {
		var (
			p   *Int
			err error
		)
		switch {
		case add == nil:
			p, err = probablePrime(bits, safe, rng)
		case safe:
			p, err = probableSafePrimeDH(bits, add, rem, rng)
		default:
			p, err = probablePrimeDH(bits, add, rem, rng)
		}
		if err != nil {
			return nil, err
		}
		candidates++
		if err := cb(GenGenerated, candidates); err != nil {
			return nil, err
		}
		if p.BitLen() != bits {
			continue
		}

		if !safe {
			ok, err := PrimalityTest(p, checks, false, rng)
			if err != nil {
				return nil, err
			}
			if ok {
				logger.Debugf("found %d-bit prime after %d candidates", bits, candidates)
				if err := cb(GenFound, candidates); err != nil {
					return nil, err
				}
				return p, nil
			}
			continue
		}

		ok, err := safePrimeRounds(p, checks, rng, cb)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.Debugf("found %d-bit safe prime after %d candidates", bits, candidates)
			if err := cb(GenFound, candidates); err != nil {
				return nil, err
			}
			return p, nil
		}
	}
}

// safePrimeRounds alternates single Miller-Rabin rounds on p and (p-1)/2.
func safePrimeRounds(p *Int, checks int, rng io.Reader, cb GenCallback) (bool, error) {
	q := new(Int).Rsh(p, 1)
	for i := 0; i < checks; i++ {
		for _, c := range []*Int{p, q} {
			ok, err := PrimalityTest(c, 1, false, rng)
			if err != nil || !ok {
				return false, err
			}
		}
		if err := cb(GenPrimeTest, i); err != nil {
			return false, err
		}
	}
	return true, nil
}

// checkResidue rejects add and rem combinations for which every candidate
// has a common factor with add, where the search would never end.
func checkResidue(add, rem *Int, safe bool) error {
	if safe && add.IsOdd() {
		return errors.WithMessage(ErrInvalidInput, "add must be even for safe primes")
	}
	r := rem
	if r == nil {
		r = NewWord(1)
		if safe {
			r = NewWord(3)
		}
	}
	if !IsRelativelyPrime(r, add) {
		return errors.WithMessagef(ErrInvalidInput, "rem %s shares a factor with add %s", r, add)
	}
	if safe && !IsRelativelyPrime(new(Int).Rsh(r, 1), new(Int).Rsh(add, 1)) {
		return errors.WithMessagef(ErrInvalidInput, "(rem-1)/2 shares a factor with add/2 for rem %s", r)
	}
	return nil
}

// probablePrime draws random odd values with the top two bits set until one
// has no small prime factor other than itself. For safe primes the value is
// also 3 mod 4 and (p-1)/2 has no small odd prime factor.
func probablePrime(bits int, safe bool, rng io.Reader) (*Int, error) {
	top := RandTopTwo
	if safe && bits < 6 {
		// No 4 or 5 bit safe prime has its top two bits set.
		top = RandTopOne
	}
	for {
		rnd, err := Rand(bits, top, RandBottomOdd, rng)
		if err != nil {
			return nil, err
		}
		if safe {
			rnd.d[0] |= 2
			if !safeCandidate(rnd) {
				continue
			}
		}
		if !obviouslyComposite(rnd) {
			return rnd, nil
		}
	}
}

// safeCandidate reports whether neither p nor (p-1)/2 is divisible by a small
// odd prime smaller than them.
func safeCandidate(p *Int) bool {
	numPrimes := trialDivisionPrimes(p.MinimalWidth())
	for i := 1; i < numPrimes; i++ {
		sp := Word(smallPrimes[i])
		if p.CmpWord(2*sp+1) <= 0 {
			return true
		}
		if p.modWordFast(sp) <= 1 {
			return false
		}
	}
	return true
}

// obviouslyComposite reports whether the odd value w has a small prime
// factor other than itself.
func obviouslyComposite(w *Int) bool {
	p, found := trialDivision(w)
	return found && !w.IsWord(p)
}

// hasSmallFactor reports whether the small prime sp is a proper factor of w.
// A candidate equal to sp is not rejected.
func hasSmallFactor(w *Int, sp Word) bool {
	return w.modWordFast(sp) == 0 && !w.IsWord(sp)
}

// probablePrimeDH draws a candidate p = rem mod add with no small odd prime
// factor.
func probablePrimeDH(bits int, add, rem *Int, rng io.Reader) (*Int, error) {
	rnd, err := Rand(bits, RandTopOne, RandBottomAny, rng)
	if err != nil {
		return nil, err
	}
	t := new(Int)
	if err := Mod(t, rnd, add); err != nil {
		return nil, err
	}
	rnd.Sub(rnd, t)
	if rem == nil {
		rnd.AddWord(1)
	} else {
		rnd.Add(rnd, rem)
	}

	numPrimes := trialDivisionPrimes(rnd.MinimalWidth())
	for i := 1; i < numPrimes; i++ {
		sp := Word(smallPrimes[i])
		if hasSmallFactor(rnd, sp) {
			rnd.Add(rnd, add)
			i = 0
		}
	}
	return rnd, nil
}

// probableSafePrimeDH draws p = 2q + 1 with p = rem mod add and neither p nor
// q divisible by a small odd prime.
func probableSafePrimeDH(bits int, padd, rem *Int, rng io.Reader) (*Int, error) {
	q, err := Rand(bits-1, RandTopOne, RandBottomAny, rng)
	if err != nil {
		return nil, err
	}
	qadd := new(Int).Rsh(padd, 1)
	t := new(Int)
	if err := Mod(t, q, qadd); err != nil {
		return nil, err
	}
	q.Sub(q, t)
	if rem == nil {
		q.AddWord(1)
	} else {
		q.Add(q, new(Int).Rsh(rem, 1))
	}
	p := new(Int).Lsh1(q)
	p.AddWord(1)

	numPrimes := trialDivisionPrimes(p.MinimalWidth())
	for i := 1; i < numPrimes; i++ {
		sp := Word(smallPrimes[i])
		if hasSmallFactor(p, sp) || hasSmallFactor(q, sp) {
			p.Add(p, padd)
			q.Add(q, qadd)
			i = 0
		}
	}
	return p, nil
}
