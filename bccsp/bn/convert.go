/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/pkg/errors"
)

// maxDigits bounds the number of digits accepted by the text parsers.
const maxDigits = maxWords * 16

// SetBytes sets z to the unsigned big-endian integer in buf. The width of z
// is the number of words needed for len(buf) bytes.
func (z *Int) SetBytes(buf []byte) *Int {
	n := (len(buf) + WordBytes - 1) / WordBytes
	z.setWidth(n)
	clear(z.d)
	for i := 0; i < len(buf); i++ {
		b := buf[len(buf)-1-i]
		z.d[i/WordBytes] |= Word(b) << (8 * uint(i%WordBytes))
	}
	z.neg = false
	return z
}

// SetBytesLE sets z to the unsigned little-endian integer in buf.
func (z *Int) SetBytesLE(buf []byte) *Int {
	n := (len(buf) + WordBytes - 1) / WordBytes
	z.setWidth(n)
	clear(z.d)
	for i, b := range buf {
		z.d[i/WordBytes] |= Word(b) << (8 * uint(i%WordBytes))
	}
	z.neg = false
	return z
}

// Bytes returns |x| as a minimal big-endian byte slice. Zero encodes as an
// empty slice.
func (x *Int) Bytes() []byte {
	buf := make([]byte, x.ByteLen())
	x.fillBE(buf)
	return buf
}

// FillBytes writes |x| into buf as a zero-padded big-endian integer. It
// fails with ErrTooSmall if |x| does not fit. The running time depends only
// on len(buf) and the width of x.
func (x *Int) FillBytes(buf []byte) error {
	if !x.fitsInBytes(len(buf)) {
		return errors.WithMessagef(ErrTooSmall, "value does not fit in %d bytes", len(buf))
	}
	x.fillBE(buf)
	return nil
}

// FillBytesLE writes |x| into buf as a zero-padded little-endian integer.
func (x *Int) FillBytesLE(buf []byte) error {
	if !x.fitsInBytes(len(buf)) {
		return errors.WithMessagef(ErrTooSmall, "value does not fit in %d bytes", len(buf))
	}
	for i := range buf {
		buf[i] = x.byteAt(i)
	}
	return nil
}

func (x *Int) fillBE(buf []byte) {
	for i := range buf {
		buf[len(buf)-1-i] = x.byteAt(i)
	}
}

func (x *Int) byteAt(i int) byte {
	w := i / WordBytes
	if w >= len(x.d) {
		return 0
	}
	return byte(x.d[w] >> (8 * uint(i%WordBytes)))
}

// fitsInBytes reports whether |x| fits in n bytes, looking at every word
// beyond the boundary rather than at the minimal width.
func (x *Int) fitsInBytes(n int) bool {
	full, rem := n/WordBytes, uint(n%WordBytes)
	var acc Word
	for i := full; i < len(x.d); i++ {
		w := x.d[i]
		if i == full && rem != 0 {
			w >>= 8 * rem
		}
		acc |= w
	}
	return acc == 0
}

// ParseHex parses an optional '-' followed by hexadecimal digits from the
// start of s into z. It returns the number of bytes consumed; anything after
// the digits is ignored. "-0" parses as zero.
func (z *Int) ParseHex(s string) (int, error) {
	neg, digits := scanDigits(s, isHexDigit)
	if digits == 0 {
		return 0, errors.WithMessage(ErrBadEncoding, "no hexadecimal digits")
	}
	if digits > maxDigits {
		return 0, errors.WithMessagef(ErrBignumTooLong, "%d digits", digits)
	}
	start := 0
	if neg {
		start = 1
	}
	hex := s[start : start+digits]

	d := make([]Word, (digits+15)/16)
	for i := 0; i < digits; i++ {
		c := hex[digits-1-i]
		d[i/16] |= Word(hexValue(c)) << (4 * uint(i%16))
	}
	z.d = d
	z.neg = neg
	z.normalize()
	return start + digits, nil
}

// ParseDec parses an optional '-' followed by decimal digits from the start
// of s into z. It returns the number of bytes consumed.
func (z *Int) ParseDec(s string) (int, error) {
	neg, digits := scanDigits(s, isDecDigit)
	if digits == 0 {
		return 0, errors.WithMessage(ErrBadEncoding, "no decimal digits")
	}
	if digits > maxDigits {
		return 0, errors.WithMessagef(ErrBignumTooLong, "%d digits", digits)
	}
	start := 0
	if neg {
		start = 1
	}
	dec := s[start : start+digits]

	// Consume up to 19 digits at a time, the most that fit in a word.
	t := new(Int)
	chunk := digits % decChunkDigits
	if chunk == 0 {
		chunk = decChunkDigits
	}
	for len(dec) > 0 {
		var w Word
		for _, c := range []byte(dec[:chunk]) {
			w = w*10 + Word(c-'0')
		}
		t.MulWord(pow10[chunk])
		t.AddWord(w)
		dec = dec[chunk:]
		chunk = decChunkDigits
	}
	z.Set(t)
	z.neg = neg
	z.normalize()
	return start + digits, nil
}

// ParseASCII parses a decimal number, or a hexadecimal one when prefixed with
// "0x" or "0X", with an optional leading '-'. Trailing bytes are ignored.
func (z *Int) ParseASCII(s string) error {
	body := strings.TrimPrefix(s, "-")
	neg := len(body) != len(s)
	t := new(Int)
	var err error
	if len(body) >= 2 && body[0] == '0' && (body[1] == 'x' || body[1] == 'X') {
		_, err = t.ParseHex(body[2:])
	} else {
		_, err = t.ParseDec(body)
	}
	if err != nil {
		return err
	}
	t.SetNegative(neg)
	z.Set(t)
	return nil
}

func scanDigits(s string, ok func(byte) bool) (neg bool, digits int) {
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}
	for digits < len(s) && ok(s[digits]) {
		digits++
	}
	return neg, digits
}

func isHexDigit(c byte) bool {
	return isDecDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func isDecDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func hexValue(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	default:
		return c - '0'
	}
}

const decChunkDigits = 19

var pow10 = func() [decChunkDigits + 1]Word {
	var p [decChunkDigits + 1]Word
	p[0] = 1
	for i := 1; i <= decChunkDigits; i++ {
		p[i] = p[i-1] * 10
	}
	return p
}()

const hexDigits = "0123456789abcdef"

// Hex returns x in lowercase hexadecimal with a leading '-' for negative
// values and no leading zeros. Zero is "0".
func (x *Int) Hex() string {
	n := x.MinimalWidth()
	if n == 0 {
		return "0"
	}
	var sb strings.Builder
	if x.neg {
		sb.WriteByte('-')
	}
	top := true
	for i := n - 1; i >= 0; i-- {
		for shift := WordBits - 4; shift >= 0; shift -= 4 {
			v := (x.d[i] >> uint(shift)) & 0xf
			if top && v == 0 {
				continue
			}
			top = false
			sb.WriteByte(hexDigits[v])
		}
	}
	return sb.String()
}

// Dec returns x in decimal with a leading '-' for negative values.
func (x *Int) Dec() string {
	if x.IsZero() {
		return "0"
	}
	t := new(Int).Abs(x)
	var chunks []Word
	for !t.IsZero() {
		rem, _ := t.DivWord(pow10[decChunkDigits])
		chunks = append(chunks, rem)
	}
	var sb strings.Builder
	if x.neg {
		sb.WriteByte('-')
	}
	var buf [decChunkDigits]byte
	for i := len(chunks) - 1; i >= 0; i-- {
		w := chunks[i]
		for j := decChunkDigits - 1; j >= 0; j-- {
			buf[j] = byte('0' + w%10)
			w /= 10
		}
		digits := buf[:]
		if i == len(chunks)-1 {
			digits = []byte(strings.TrimLeft(string(digits), "0"))
		}
		sb.Write(digits)
	}
	return sb.String()
}

// String implements fmt.Stringer using Hex.
func (x *Int) String() string {
	return x.Hex()
}

// MarshalText encodes x in decimal.
func (x *Int) MarshalText() ([]byte, error) {
	return []byte(x.Dec()), nil
}

// UnmarshalText sets z from the decimal encoding written by MarshalText.
func (z *Int) UnmarshalText(text []byte) error {
	t := new(Int)
	n, err := t.ParseDec(string(text))
	if err != nil {
		return err
	}
	if n != len(text) {
		return errors.WithMessagef(ErrBadEncoding, "trailing data at offset %d", n)
	}
	z.Set(t)
	return nil
}

// MPI returns x in the MPI format: a four byte big-endian length followed by
// the big-endian magnitude, with an extra zero byte when the top bit would
// otherwise be set and the sign stored in the top bit of the first byte.
func (x *Int) MPI() ([]byte, error) {
	bits := x.BitLen()
	n := (bits + 7) / 8
	ext := 0
	if n > 0 && bits%8 == 0 {
		ext = 1
	}
	if uint64(n+ext) > math.MaxUint32 {
		return nil, errors.WithMessagef(ErrBignumTooLong, "%d bytes", n)
	}
	out := make([]byte, 4+ext+n)
	binary.BigEndian.PutUint32(out, uint32(n+ext))
	x.fillBE(out[4+ext:])
	if x.neg && n > 0 {
		out[4] |= 0x80
	}
	return out, nil
}

// ParseMPI decodes an MPI encoding into a new Int. The length prefix must
// match the remaining input exactly.
func ParseMPI(in []byte) (*Int, error) {
	if len(in) < 4 {
		return nil, errors.WithMessage(ErrBadEncoding, "MPI shorter than its length prefix")
	}
	n := binary.BigEndian.Uint32(in)
	body := in[4:]
	if uint64(n) != uint64(len(body)) {
		return nil, errors.WithMessagef(ErrBadEncoding, "MPI length %d does not match %d bytes", n, len(body))
	}
	z := new(Int)
	if n == 0 {
		return z, nil
	}
	neg := body[0]&0x80 != 0
	z.SetBytes(body)
	if neg {
		z.ClearBit(8*len(body) - 1)
	}
	z.normalize()
	z.SetNegative(neg)
	return z, nil
}

// Format implements fmt.Formatter. The verbs 'x' and 'v' print hexadecimal,
// 'X' upper-case hexadecimal and 'd' decimal. The '#' flag adds a 0x prefix
// to hexadecimal output.
func (x *Int) Format(s fmt.State, ch rune) {
	var out string
	switch ch {
	case 'd':
		out = x.Dec()
	case 'x', 'v', 's':
		out = x.Hex()
	case 'X':
		out = strings.ToUpper(x.Hex())
	default:
		fmt.Fprintf(s, "%%!%c(bn.Int=%s)", ch, x.Hex())
		return
	}
	if s.Flag('#') && ch != 'd' {
		if strings.HasPrefix(out, "-") {
			out = "-0x" + out[1:]
		} else {
			out = "0x" + out
		}
	}
	io.WriteString(s, out)
}
