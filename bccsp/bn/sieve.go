/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "github.com/bits-and-blooms/bitset"

// numSmallPrimes is the size of the trial-division table.
const numSmallPrimes = 1024

// smallPrimes holds the first numSmallPrimes primes in increasing order.
var smallPrimes = sievePrimes(numSmallPrimes)

// sievePrimes returns the first count primes using the sieve of
// Eratosthenes, growing the sieve until enough primes are found.
func sievePrimes(count int) []uint16 {
	for limit := uint(1024); ; limit *= 2 {
		composite := bitset.New(limit)
		primes := make([]uint16, 0, count)
		for i, ok := composite.NextClear(2); ok && i < limit; i, ok = composite.NextClear(i + 1) {
			primes = append(primes, uint16(i))
			if len(primes) == count {
				return primes
			}
			for j := i * i; j < limit; j += i {
				composite.Set(j)
			}
		}
	}
}

// SmallPrimes returns a copy of the trial-division prime table.
func SmallPrimes() []uint16 {
	return append([]uint16(nil), smallPrimes...)
}

// trialDivisionPrimes returns how many table primes to try for a candidate
// of the given width.
func trialDivisionPrimes(width int) int {
	if width*WordBits > 1024 {
		return numSmallPrimes
	}
	return numSmallPrimes / 2
}

// trialDivision returns a small prime dividing the odd value w, if any.
func trialDivision(w *Int) (Word, bool) {
	n := trialDivisionPrimes(w.MinimalWidth())
	// smallPrimes[0] is 2 and w is odd.
	for _, p := range smallPrimes[1:n] {
		if w.modWordFast(Word(p)) == 0 {
			return Word(p), true
		}
	}
	return 0, false
}
