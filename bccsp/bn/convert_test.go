/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import (
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"
)

func TestBytes(t *testing.T) {
	t.Parallel()

	x := new(Int).SetBytes([]byte{0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	assert.Equal(t, 2, x.Width())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, x.Bytes())
	assert.Equal(t, "10203040506070809", x.Hex())

	le := new(Int).SetBytesLE([]byte{9, 8, 7, 6, 5, 4, 3, 2, 1, 0})
	assert.True(t, le.Equal(x))

	assert.Empty(t, new(Int).Bytes())
	assert.Equal(t, 0, new(Int).SetBytes(nil).Width())

	buf := make([]byte, 12)
	require.NoError(t, x.FillBytes(buf))
	assert.Equal(t, []byte{0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, buf)
	require.NoError(t, x.FillBytesLE(buf))
	assert.Equal(t, []byte{9, 8, 7, 6, 5, 4, 3, 2, 1, 0, 0, 0}, buf)

	err := x.FillBytes(make([]byte, 8))
	assert.True(t, errors.Is(err, ErrTooSmall))
	err = x.FillBytesLE(make([]byte, 8))
	assert.True(t, errors.Is(err, ErrTooSmall))

	// Leading zero words do not count against the buffer.
	wide := padded(t, NewWord(0xff), 3)
	out := make([]byte, 1)
	require.NoError(t, wide.FillBytes(out))
	assert.Equal(t, []byte{0xff}, out)
	require.NoError(t, new(Int).FillBytes(nil))

	neg := new(Int).SetInt64(-0x1234)
	assert.Equal(t, []byte{0x12, 0x34}, neg.Bytes(), "bytes hold the magnitude")
}

func TestParseHex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		want     string
		consumed int
	}{
		{"0", "0", 1},
		{"-0", "0", 2},
		{"00000000000000000000000000abc", "abc", 29},
		{"ABCdef", "abcdef", 6},
		{"-ff", "-ff", 3},
		{"12xyz", "12", 2},
		{"10000000000000000", "10000000000000000", 17},
	}
	for _, tc := range tests {
		z := new(Int)
		n, err := z.ParseHex(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.consumed, n, tc.in)
		assert.Equal(t, tc.want, z.Hex(), tc.in)
		assert.False(t, z.IsZero() && z.IsNegative())
	}

	for _, in := range []string{"", "-", "xyz", "--1", " 1"} {
		_, err := new(Int).ParseHex(in)
		assert.True(t, errors.Is(err, ErrBadEncoding), "%q", in)
	}
}

func TestParseDec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in       string
		want     string
		consumed int
	}{
		{"0", "0", 1},
		{"-0", "0", 2},
		{"18446744073709551616", "18446744073709551616", 20},
		{"-1000000000000000000000000000000000000001", "-1000000000000000000000000000000000000001", 41},
		{"42abc", "42", 2},
		{"0000000000000000000000000000000007", "7", 34},
	}
	for _, tc := range tests {
		z := new(Int)
		n, err := z.ParseDec(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.consumed, n, tc.in)
		assert.Equal(t, tc.want, z.Dec(), tc.in)
	}
	assert.Equal(t, "10000000000000000", fromDec(t, "18446744073709551616").Hex())

	for _, in := range []string{"", "-", "abc", "+1"} {
		_, err := new(Int).ParseDec(in)
		assert.True(t, errors.Is(err, ErrBadEncoding), "%q", in)
	}
}

func TestParseASCII(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"0x1f", "1f"},
		{"0X1F", "1f"},
		{"-0x10", "-10"},
		{"31", "1f"},
		{"-31", "-1f"},
		{"0", "0"},
		{"-0", "0"},
		{"12 trailing", "c"},
	}
	for _, tc := range tests {
		z := new(Int)
		require.NoError(t, z.ParseASCII(tc.in), tc.in)
		assert.Equal(t, tc.want, z.Hex(), tc.in)
	}

	for _, in := range []string{"", "0x", "-", "zz", "-0xg"} {
		z := NewWord(5)
		err := z.ParseASCII(in)
		assert.True(t, errors.Is(err, ErrBadEncoding), "%q", in)
		assert.True(t, z.IsWord(5), "failed parse leaves the value alone")
	}
}

func TestDecHexOutput(t *testing.T) {
	t.Parallel()

	x := fromDec(t, "-123456789012345678901234567890")
	assert.Equal(t, "-123456789012345678901234567890", x.Dec())
	assert.Equal(t, "-18ee90ff6c373e0ee4e3f0ad2", x.Hex())
	assert.Equal(t, "0", padded(t, new(Int), 2).Hex())
	assert.Equal(t, "1", padded(t, NewWord(1), 2).Hex())
	assert.Equal(t, "10000000000000000000", fromDec(t, "10000000000000000000").Dec())
}

func TestFormat(t *testing.T) {
	t.Parallel()

	x := fromHex(t, "-abc")
	assert.Equal(t, "-abc", fmt.Sprintf("%x", x))
	assert.Equal(t, "-abc", fmt.Sprintf("%v", x))
	assert.Equal(t, "-abc", fmt.Sprintf("%s", x))
	assert.Equal(t, "-ABC", fmt.Sprintf("%X", x))
	assert.Equal(t, "-2748", fmt.Sprintf("%d", x))
	assert.Equal(t, "-0xabc", fmt.Sprintf("%#x", x))
	assert.Equal(t, "0xABC", fmt.Sprintf("%#X", new(Int).Abs(x)))
	assert.Equal(t, "%!q(bn.Int=-abc)", fmt.Sprintf("%q", x))
}

func TestText(t *testing.T) {
	t.Parallel()

	x := fromHex(t, "-1000000000000000000000000000000001")
	text, err := x.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, x.Dec(), string(text))

	z := new(Int)
	require.NoError(t, z.UnmarshalText(text))
	assert.True(t, z.Equal(x), "%s", z)

	err = z.UnmarshalText([]byte("12ab"))
	assert.True(t, errors.Is(err, ErrBadEncoding), "got %v", err)
	assert.True(t, z.Equal(x), "failed decode leaves the value alone")
	err = z.UnmarshalText(nil)
	assert.True(t, errors.Is(err, ErrBadEncoding), "got %v", err)
}

func TestMPI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"0", "00000000"},
		{"1", "0000000101"},
		{"-1", "0000000181"},
		{"80", "000000020080"},
		{"-80", "000000028080"},
		{"7fff", "000000027fff"},
		{"-1234", "000000029234"},
	}
	for _, tc := range tests {
		x := fromHex(t, tc.in)
		b, err := x.MPI()
		require.NoError(t, err)
		assert.Equal(t, tc.want, hex.EncodeToString(b), tc.in)

		back, err := ParseMPI(b)
		require.NoError(t, err)
		assert.True(t, back.Equal(x), tc.in)
	}

	for _, in := range []string{"", "000000", "0000000201", "000000010102"} {
		raw, _ := hex.DecodeString(in)
		_, err := ParseMPI(raw)
		assert.True(t, errors.Is(err, ErrBadEncoding), in)
	}

	// A lone sign byte decodes to zero, never negative zero.
	z, err := ParseMPI([]byte{0, 0, 0, 1, 0x80})
	require.NoError(t, err)
	assert.True(t, z.IsZero())
	assert.False(t, z.IsNegative())
}

func TestDER(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in, want string
	}{
		{"0", "020100"},
		{"7f", "02017f"},
		{"80", "02020080"},
		{"100", "02020100"},
	}
	for _, tc := range tests {
		b, err := fromHex(t, tc.in).DER()
		require.NoError(t, err)
		assert.Equal(t, tc.want, hex.EncodeToString(b))

		back, err := FromDER(b)
		require.NoError(t, err)
		assert.Equal(t, tc.in, back.Hex())
	}

	bad := []struct {
		der  string
		want error
	}{
		{"", ErrBadEncoding},
		{"0200", ErrBadEncoding},
		{"0202007f", ErrBadEncoding},
		{"0202ff80", ErrBadEncoding},
		{"0201ff", ErrNegativeNumber},
		{"020101ff", ErrBadEncoding},
		{"040101", ErrBadEncoding},
	}
	for _, tc := range bad {
		raw, _ := hex.DecodeString(tc.der)
		_, err := FromDER(raw)
		assert.True(t, errors.Is(err, tc.want), "%s: %v", tc.der, err)
	}

	_, err := new(Int).SetInt64(-1).DER()
	assert.True(t, errors.Is(err, ErrNegativeNumber))
}

func TestASN1Sequence(t *testing.T) {
	t.Parallel()

	r, s := fromHex(t, p256Hex), NewWord(0x42)
	var b cryptobyte.Builder
	b.AddASN1(0x30, func(seq *cryptobyte.Builder) {
		require.NoError(t, r.MarshalASN1(seq))
		require.NoError(t, s.MarshalASN1(seq))
	})
	der, err := b.Bytes()
	require.NoError(t, err)

	input := cryptobyte.String(der)
	var seq cryptobyte.String
	require.True(t, input.ReadASN1(&seq, 0x30))
	r2, s2 := new(Int), new(Int)
	require.NoError(t, r2.ParseASN1Unsigned(&seq))
	require.NoError(t, s2.ParseASN1Unsigned(&seq))
	assert.True(t, seq.Empty())
	assert.True(t, r.Equal(r2))
	assert.True(t, s.Equal(s2))
}

func TestEncodingRoundTrips(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 300
	properties := gopter.NewProperties(params)
	words := gen.SliceOf(gen.UInt64())

	properties.Property("hex", prop.ForAll(
		func(a []uint64, neg bool) bool {
			x := fromWords(a, neg)
			z := new(Int)
			n, err := z.ParseHex(x.Hex())
			return err == nil && n == len(x.Hex()) && z.Equal(x)
		},
		words, gen.Bool(),
	))

	properties.Property("dec", prop.ForAll(
		func(a []uint64, neg bool) bool {
			x := fromWords(a, neg)
			z := new(Int)
			_, err := z.ParseDec(x.Dec())
			return err == nil && z.Equal(x) && x.Dec() == toBig(x).String()
		},
		words, gen.Bool(),
	))

	properties.Property("bytes", prop.ForAll(
		func(a []uint64) bool {
			x := fromWords(a, false)
			return new(Int).SetBytes(x.Bytes()).Equal(x)
		},
		words,
	))

	properties.Property("mpi", prop.ForAll(
		func(a []uint64, neg bool) bool {
			x := fromWords(a, neg)
			b, err := x.MPI()
			if err != nil {
				return false
			}
			z, err := ParseMPI(b)
			return err == nil && z.Equal(x)
		},
		words, gen.Bool(),
	))

	properties.Property("der", prop.ForAll(
		func(a []uint64) bool {
			x := fromWords(a, false)
			b, err := x.DER()
			if err != nil {
				return false
			}
			z, err := FromDER(b)
			return err == nil && z.Equal(x)
		},
		words,
	))

	properties.TestingRun(t)
}
