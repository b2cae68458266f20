/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vectors

import (
	"context"
	"os"
	"strings"
	"testing"

	bnprom "github.com/hyperledger/fabric-bignum/common/metrics/prometheus"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckerVectorFile(t *testing.T) {
	f, err := os.Open("testdata/bn_tests.txt")
	require.NoError(t, err)
	defer f.Close()

	registry := prom.NewRegistry()
	checker := NewChecker(NewMetrics(&bnprom.Provider{Registerer: registry}))

	res, err := checker.Run(context.Background(), "bn_tests.txt", f)
	require.NoError(t, err)
	for _, failure := range res.Failures {
		t.Errorf("%s", failure)
	}
	assert.Greater(t, res.Checked, 100)

	samples, err := bnprom.Gather(registry, "bn_vectors_")
	require.NoError(t, err)
	checked := map[string]float64{}
	for _, s := range samples {
		switch s.Name {
		case "bn_vectors_checked":
			checked[s.Labels["type"]] = s.Value
		case "bn_vectors_failed":
			t.Errorf("unexpected failure sample %s", s)
		}
	}
	for typ := range testTypes {
		assert.Positive(t, checked[typ], "no %s vectors", typ)
	}
}

func runVectors(t *testing.T, input string) (Result, *prom.Registry) {
	t.Helper()
	registry := prom.NewRegistry()
	checker := NewChecker(NewMetrics(&bnprom.Provider{Registerer: registry}))
	res, err := checker.Run(context.Background(), "inline", strings.NewReader(input))
	require.NoError(t, err)
	return res, registry
}

func TestCheckerReportsMismatch(t *testing.T) {
	res, registry := runVectors(t, `
Sum = 4
A = 1
B = 2

Product = 6
A = 2
B = 3
`)
	assert.Equal(t, 2, res.Checked)
	require.Len(t, res.Failures, 1)
	assert.True(t, errors.Is(res.Failures[0], ErrMismatch))
	assert.Equal(t, "inline: line 2: A + B: got 3, want 4: vectors: mismatch", res.Failures[0].Error())

	samples, err := bnprom.Gather(registry, "bn_vectors_failed")
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, `bn_vectors_failed{type="Sum"} 1`, samples[0].String())
}

func TestCheckerKeys(t *testing.T) {
	tests := []struct {
		name  string
		input string
		err   string
	}{
		{
			name:  "missing key",
			input: "Product = 6\nA = 2\n",
			err:   "inline: line 1: Product test is missing B",
		},
		{
			name:  "unexpected key",
			input: "Square = 4\nA = 2\nB = 1\nC = 1\n",
			err:   "inline: line 1: Square test has unexpected keys B, C",
		},
		{
			name:  "unknown type",
			input: "Frobnicate = 1\n",
			err:   "inline: line 1: Frobnicate: vectors: unknown test type",
		},
		{
			name:  "bad shift",
			input: "LShift = 0\nA = 0\nN = -1\n",
			err:   "inline: line 1: invalid shift -1",
		},
		{
			name:  "operation error",
			input: "Quotient = 0\nRemainder = 0\nA = 1\nB = 0\n",
			err:   "inline: line 1: A / B: bn: division by zero",
		},
		{
			name:  "square root of non-residue",
			input: "NotModSquare = 4\nP = 7\n",
			err:   "inline: line 1: sqrt(NotModSquare) mod P: got <nil>, want bn: not a square: vectors: mismatch",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, _ := runVectors(t, tc.input)
			require.Len(t, res.Failures, 1)
			assert.EqualError(t, res.Failures[0], tc.err)
		})
	}
}

func TestCheckerAcceptsEitherRoot(t *testing.T) {
	for _, root := range []string{"2", "5"} {
		res, _ := runVectors(t, "ModSqrt = "+root+"\nA = 4\nP = 7\n")
		assert.Empty(t, res.Failures, "root %s", root)
	}
	res, _ := runVectors(t, "ModSqrt = 3\nA = 4\nP = 7\n")
	assert.Len(t, res.Failures, 1)
}

func TestCheckerRunStops(t *testing.T) {
	checker := NewChecker(nil)

	_, err := checker.Run(context.Background(), "broken", strings.NewReader("Sum = 1\nA 1\n"))
	assert.EqualError(t, err, `broken: line 2: expected 'Key = value', got "A 1"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = checker.Run(ctx, "cancelled", strings.NewReader("Sum = 1\nA = 1\nB = 0\n"))
	assert.Equal(t, context.Canceled, err)
}
