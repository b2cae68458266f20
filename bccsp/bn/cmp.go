/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

// CmpAbs compares |x| and |y| and returns -1, 0 or +1.
func (x *Int) CmpAbs(y *Int) int {
	return cmpWords(x.d, y.d)
}

// Cmp compares x and y and returns -1, 0 or +1.
func (x *Int) Cmp(y *Int) int {
	xneg := x.neg && !x.IsZero()
	yneg := y.neg && !y.IsZero()
	switch {
	case xneg && !yneg:
		return -1
	case !xneg && yneg:
		return 1
	case xneg:
		return -cmpWords(x.d, y.d)
	default:
		return cmpWords(x.d, y.d)
	}
}

// CmpWord compares x with the non-negative word w.
func (x *Int) CmpWord(w Word) int {
	if x.neg && !x.IsZero() {
		return -1
	}
	return cmpWords(x.d, []Word{w})
}

// Equal reports whether x == y.
func (x *Int) Equal(y *Int) bool {
	return x.Cmp(y) == 0
}

// EqualConstTime reports whether x == y in time that depends only on the
// widths of x and y. Zero-padding does not affect the result.
func (x *Int) EqualConstTime(y *Int) bool {
	eq := equalWords(x.d, y.d)
	xz := isZeroWords(x.d)
	signs := ctEq(ctBool(boolWord(x.neg)), ctBool(boolWord(y.neg)))
	// Both zero compare equal whatever the sign flags say.
	return eq&(signs|xz) != 0
}

func boolWord(b bool) Word {
	if b {
		return 1
	}
	return 0
}
