/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// Top-bit and bottom-bit constraints for Rand.
const (
	// RandTopAny places no constraint on the top bits.
	RandTopAny = -1
	// RandTopOne sets the most significant bit.
	RandTopOne = 0
	// RandTopTwo sets the two most significant bits.
	RandTopTwo = 1

	// RandBottomAny places no constraint on the low bit.
	RandBottomAny = 0
	// RandBottomOdd sets the least significant bit.
	RandBottomOdd = 1
)

// randRangeAttempts bounds rejection sampling in RandRange.
const randRangeAttempts = 100

func readerOrDefault(r io.Reader) io.Reader {
	if r == nil {
		return rand.Reader
	}
	return r
}

func readWords(r io.Reader, out []Word) error {
	buf := make([]byte, len(out)*WordBytes)
	if _, err := io.ReadFull(readerOrDefault(r), buf); err != nil {
		return errors.Wrap(err, "reading random bytes")
	}
	for i := range out {
		out[i] = Word(binary.LittleEndian.Uint64(buf[i*WordBytes:]))
	}
	return nil
}

// Rand returns a random non-negative integer of at most bits bits drawn from
// rng, or crypto/rand when rng is nil. top and bottom force the most and least
// significant bits as described by the RandTop* and RandBottom* constants.
func Rand(bits, top, bottom int, rng io.Reader) (*Int, error) {
	if top < RandTopAny || top > RandTopTwo || bottom < RandBottomAny || bottom > RandBottomOdd {
		return nil, errors.WithMessagef(ErrInvalidInput, "rand flags top=%d bottom=%d", top, bottom)
	}
	if bits < 0 {
		return nil, errors.WithMessagef(ErrBitsTooSmall, "%d bits", bits)
	}
	if bits == 0 {
		return New(), nil
	}
	words := (bits + WordBits - 1) / WordBits
	if words > maxWords {
		return nil, errors.WithMessagef(ErrBignumTooLong, "%d bits", bits)
	}
	d := make([]Word, words)
	if err := readWords(rng, d); err != nil {
		return nil, err
	}
	bit := uint(bits-1) % WordBits
	if bit < WordBits-1 {
		d[words-1] &= 1<<(bit+1) - 1
	}
	switch {
	case top == RandTopTwo && bits > 1 && bit == 0:
		d[words-1] |= 1
		d[words-2] |= 1 << (WordBits - 1)
	case top == RandTopTwo && bits > 1:
		d[words-1] |= 3 << (bit - 1)
	case top != RandTopAny:
		d[words-1] |= 1 << bit
	}
	if bottom == RandBottomOdd {
		d[0] |= 1
	}
	z := &Int{d: d}
	z.normalize()
	return z, nil
}

// PseudoRand is Rand. Both draw from a cryptographically secure source unless
// a different rng is supplied.
func PseudoRand(bits, top, bottom int, rng io.Reader) (*Int, error) {
	return Rand(bits, top, bottom, rng)
}

// RandRange returns a uniformly random integer in [minInclusive, maxExclusive).
func RandRange(minInclusive Word, maxExclusive *Int, rng io.Reader) (*Int, error) {
	if maxExclusive.neg || maxExclusive.CmpWord(minInclusive) <= 0 {
		return nil, errors.WithStack(ErrInvalidRange)
	}
	words := maxExclusive.MinimalWidth()
	topBits := maxExclusive.BitLen() - (words-1)*WordBits
	mask := maxWord
	if topBits < WordBits {
		mask = 1<<uint(topBits) - 1
	}
	hi := maxExclusive.d[:words]
	d := make([]Word, words)
	for attempt := 0; ; attempt++ {
		if attempt == randRangeAttempts {
			return nil, errors.WithStack(ErrTooManyIterations)
		}
		if err := readWords(rng, d); err != nil {
			return nil, err
		}
		d[words-1] &= mask
		if cmpWords(d, hi) < 0 && cmpWords(d, []Word{minInclusive}) >= 0 {
			break
		}
	}
	z := &Int{d: d}
	z.normalize()
	return z, nil
}

// RandInt returns a uniformly random integer in [0, maxExclusive).
func RandInt(maxExclusive *Int, rng io.Reader) (*Int, error) {
	return RandRange(0, maxExclusive, rng)
}
