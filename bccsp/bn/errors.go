/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "github.com/pkg/errors"

// Sentinel errors returned by this package. Returned errors may carry
// additional context; use errors.Is or errors.Cause to match them.
var (
	ErrDivByZero             = errors.New("bn: division by zero")
	ErrNegativeNumber        = errors.New("bn: negative number")
	ErrCalledWithEvenModulus = errors.New("bn: called with even modulus")
	ErrBignumTooLong         = errors.New("bn: bignum too long")
	ErrBadEncoding           = errors.New("bn: bad encoding")
	ErrInvalidLength         = errors.New("bn: invalid length")
	ErrTooSmall              = errors.New("bn: output buffer too small")
	ErrNoInverse             = errors.New("bn: no inverse")
	ErrInputNotReduced       = errors.New("bn: input not reduced")
	ErrArgTooLarge           = errors.New("bn: first argument smaller than second")
	ErrNotASquare            = errors.New("bn: not a square")
	ErrTooManyIterations     = errors.New("bn: too many iterations")
	ErrInvalidRange          = errors.New("bn: invalid range")
	ErrBitsTooSmall          = errors.New("bn: bits too small")
	ErrInvalidInput          = errors.New("bn: invalid input")
)
