/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package primegen

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	bnprom "github.com/hyperledger/fabric-bignum/common/metrics/prometheus"
	"github.com/pkg/errors"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requirePrime(t *testing.T, p *bn.Int) {
	t.Helper()
	ok, err := bn.PrimalityTest(p, bn.ChecksForValidation, true, nil)
	require.NoError(t, err)
	require.True(t, ok, "%s is not prime", p)
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	registry := prom.NewRegistry()
	g := &Generator{
		Bits:    128,
		Workers: 3,
		Metrics: NewMetrics(&bnprom.Provider{Registerer: registry}),
	}
	primes, err := g.Generate(context.Background(), 8)
	require.NoError(t, err)
	require.Len(t, primes, 8)
	for _, p := range primes {
		require.NotNil(t, p)
		assert.Equal(t, 128, p.BitLen())
		requirePrime(t, p)
	}

	samples, err := bnprom.Gather(registry, "bn_primegen_")
	require.NoError(t, err)
	values := map[string]float64{}
	for _, s := range samples {
		assert.Equal(t, "false", s.Labels["safe"], s.String())
		values[s.Name] = s.Value
	}
	assert.Equal(t, float64(8), values["bn_primegen_generated"])
	assert.Equal(t, float64(8), values["bn_primegen_duration_count"])
	assert.GreaterOrEqual(t, values["bn_primegen_candidates"], float64(8))
}

func TestGenerateSafe(t *testing.T) {
	t.Parallel()

	g := &Generator{Bits: 96, Safe: true, Workers: 2}
	primes, err := g.Generate(context.Background(), 2)
	require.NoError(t, err)
	for _, p := range primes {
		assert.Equal(t, 96, p.BitLen())
		requirePrime(t, p)
		requirePrime(t, new(bn.Int).Rsh(p, 1))
	}
}

func TestGenerateProgress(t *testing.T) {
	t.Parallel()

	var candidates, tests, found atomic.Int64
	g := &Generator{
		Bits:    64,
		Safe:    true,
		Workers: 4,
		Progress: func(event bn.GenEvent, n int) {
			switch event {
			case bn.GenGenerated:
				candidates.Add(1)
			case bn.GenPrimeTest:
				tests.Add(1)
			case bn.GenFound:
				found.Add(1)
			}
		},
	}
	primes, err := g.Generate(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, primes, 5)
	assert.Equal(t, int64(5), found.Load())
	assert.GreaterOrEqual(t, candidates.Load(), int64(5))
	assert.GreaterOrEqual(t, tests.Load(), int64(5))
}

func TestGenerateResidue(t *testing.T) {
	t.Parallel()

	g := &Generator{Bits: 80, Add: bn.NewWord(12), Rem: bn.NewWord(5), Checks: 20}
	primes, err := g.Generate(context.Background(), 3)
	require.NoError(t, err)
	for _, p := range primes {
		requirePrime(t, p)
		r, err := p.ModWord(12)
		require.NoError(t, err)
		assert.Equal(t, bn.Word(5), r)
	}
}

func TestGenerateNothing(t *testing.T) {
	t.Parallel()

	g := &Generator{Bits: 64}
	primes, err := g.Generate(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, primes)

	_, err = g.Generate(context.Background(), -1)
	assert.EqualError(t, err, "invalid prime count -1")
}

func TestGenerateErrors(t *testing.T) {
	t.Parallel()

	g := &Generator{Bits: 1}
	_, err := g.Generate(context.Background(), 2)
	assert.True(t, errors.Is(err, bn.ErrBitsTooSmall), "got %v", err)

	g = &Generator{Bits: 64, Safe: true, Add: bn.NewWord(7)}
	_, err = g.Generate(context.Background(), 1)
	assert.True(t, errors.Is(err, bn.ErrInvalidInput), "got %v", err)
}

func TestGenerateCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &Generator{Bits: 64}
	_, err := g.Generate(ctx, 4)
	assert.Equal(t, context.Canceled, err)

	ctx, cancel = context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	g = &Generator{Bits: 4096, Safe: true, Workers: 2}
	start := time.Now()
	_, err = g.Generate(ctx, 2)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), "got %v", err)
	assert.Less(t, time.Since(start), 30*time.Second)
}
