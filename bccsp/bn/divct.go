/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "github.com/pkg/errors"

// DivConstTime sets q = a / d and r = a % d for non-negative a and d using
// binary long division. The running time depends only on the widths of a and
// d and on dMinBits, a public lower bound on the bit length of d. q has the
// width of a and r the width of d. Either output may be nil.
func DivConstTime(q, r, a, d *Int, dMinBits int) error {
	if a.neg || d.neg {
		return errors.WithStack(ErrNegativeNumber)
	}
	if d.IsZero() {
		return errors.WithStack(ErrDivByZero)
	}
	if q != nil && q == r {
		return errors.WithMessage(ErrInvalidInput, "quotient and remainder must be distinct")
	}

	aw, dw := len(a.d), len(d.d)
	qd := make([]Word, aw)
	rd := make([]Word, dw)
	tmp := make([]Word, dw)

	// The top words of a hold fewer than dMinBits bits, so they are already
	// reduced and can seed the remainder directly.
	initial := 0
	if dMinBits > 0 {
		initial = min((dMinBits-1)/WordBits, aw, dw)
		copy(rd, a.d[aw-initial:])
	}

	for i := aw - initial - 1; i >= 0; i-- {
		for bit := WordBits - 1; bit >= 0; bit-- {
			// rd = 2*rd + next bit, then reduce once. rd < d throughout.
			carry := addWords(rd, rd, rd)
			rd[0] |= (a.d[i] >> uint(bit)) & 1
			subtracted := reduceOnce(rd, rd, carry, d.d, tmp)
			qd[i] |= (^subtracted & 1) << uint(bit)
		}
	}

	if q != nil {
		q.d = qd
		q.neg = false
	}
	if r != nil {
		r.d = rd
		r.neg = false
	}
	return nil
}
