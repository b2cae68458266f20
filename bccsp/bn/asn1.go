/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"github.com/pkg/errors"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// ParseASN1Unsigned reads a DER INTEGER from s into z. Negative values,
// non-minimal encodings and empty contents are rejected.
func (z *Int) ParseASN1Unsigned(s *cryptobyte.String) error {
	var body cryptobyte.String
	if !s.ReadASN1(&body, asn1.INTEGER) {
		return errors.WithMessage(ErrBadEncoding, "expected an INTEGER")
	}
	neg, ok := checkASN1Integer(body)
	if !ok {
		return errors.WithMessage(ErrBadEncoding, "malformed INTEGER")
	}
	if neg {
		return errors.WithStack(ErrNegativeNumber)
	}
	z.SetBytes(body)
	z.normalize()
	return nil
}

// checkASN1Integer validates the contents octets of a DER INTEGER and
// reports whether it is negative.
func checkASN1Integer(b []byte) (neg, ok bool) {
	if len(b) == 0 {
		return false, false
	}
	neg = b[0]&0x80 != 0
	if len(b) > 1 {
		if b[0] == 0x00 && b[1]&0x80 == 0 {
			return neg, false
		}
		if b[0] == 0xff && b[1]&0x80 != 0 {
			return neg, false
		}
	}
	return neg, true
}

// MarshalASN1 appends x as a DER INTEGER to b. Negative values are rejected.
func (x *Int) MarshalASN1(b *cryptobyte.Builder) error {
	if x.neg {
		return errors.WithStack(ErrNegativeNumber)
	}
	body := x.Bytes()
	b.AddASN1(asn1.INTEGER, func(c *cryptobyte.Builder) {
		// A leading zero keeps the value positive; zero itself is one zero byte.
		if len(body) == 0 || body[0]&0x80 != 0 {
			c.AddUint8(0)
		}
		c.AddBytes(body)
	})
	return nil
}

// FromDER decodes a DER INTEGER that spans all of der.
func FromDER(der []byte) (*Int, error) {
	s := cryptobyte.String(der)
	z := new(Int)
	if err := z.ParseASN1Unsigned(&s); err != nil {
		return nil, err
	}
	if !s.Empty() {
		return nil, errors.WithMessage(ErrBadEncoding, "trailing data after INTEGER")
	}
	return z, nil
}

// DER returns x encoded as a DER INTEGER.
func (x *Int) DER() ([]byte, error) {
	var b cryptobyte.Builder
	if err := x.MarshalASN1(&b); err != nil {
		return nil, err
	}
	out, err := b.Bytes()
	if err != nil {
		return nil, errors.Wrap(err, "encoding INTEGER")
	}
	return out, nil
}
