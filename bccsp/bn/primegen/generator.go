/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package primegen generates batches of primes concurrently on top of
// bn.GeneratePrime.
package primegen

import (
	"context"
	"io"
	"runtime"
	"strconv"
	"time"

	"github.com/hyperledger/fabric-bignum/bccsp/bn"
	"github.com/hyperledger/fabric-bignum/common/flogging"
	"github.com/hyperledger/fabric-bignum/common/metrics/disabled"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

var logger = flogging.MustGetLogger("bn.primegen")

// ErrValidation is returned when a generated prime fails re-validation.
var ErrValidation = errors.New("primegen: generated number failed validation")

// Generator produces primes of a fixed size.
type Generator struct {
	// Bits is the exact size of every generated prime.
	Bits int
	// Safe requests primes p for which (p-1)/2 is also prime.
	Safe bool
	// Add and Rem optionally constrain p mod Add == Rem as in bn.GeneratePrime.
	Add *bn.Int
	Rem *bn.Int
	// Checks is the number of Miller-Rabin rounds used to re-validate each
	// prime. Zero means bn.ChecksForValidation.
	Checks int
	// Workers bounds the number of primes generated at once. Zero means
	// runtime.NumCPU().
	Workers int
	// Rand is the randomness source, shared by all workers. It must be safe
	// for concurrent use. Nil means crypto/rand.
	Rand io.Reader
	// Metrics may be nil.
	Metrics *Metrics
	// Progress, if set, receives every bn.GeneratePrime event from all
	// workers. It is called concurrently.
	Progress func(event bn.GenEvent, n int)
}

// Generate returns count primes. The first error from any worker, including
// cancellation of ctx, stops the batch and is returned.
func (g *Generator) Generate(ctx context.Context, count int) ([]*bn.Int, error) {
	if count < 0 {
		return nil, errors.Errorf("invalid prime count %d", count)
	}
	m := g.Metrics
	if m == nil {
		m = NewMetrics(&disabled.Provider{})
	}
	workers := g.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	safe := strconv.FormatBool(g.Safe)
	logger.Debugf("generating %d %d-bit primes with %d workers, safe=%t", count, g.Bits, workers, g.Safe)

	primes := make([]*bn.Int, count)
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < count; i++ {
		if egCtx.Err() != nil {
			break
		}
		i := i
		eg.Go(func() error {
			start := time.Now()
			p, err := g.generateOne(egCtx, m, safe)
			if err != nil {
				return err
			}
			m.Duration.With("safe", safe).Observe(time.Since(start).Seconds())
			m.Generated.With("safe", safe).Add(1)
			primes[i] = p
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return primes, nil
}

func (g *Generator) generateOne(ctx context.Context, m *Metrics, safe string) (*bn.Int, error) {
	cb := func(event bn.GenEvent, n int) error {
		if event == bn.GenGenerated {
			m.Candidates.With("safe", safe).Add(1)
		}
		if g.Progress != nil {
			g.Progress(event, n)
		}
		return ctx.Err()
	}
	p, err := bn.GeneratePrime(g.Bits, g.Safe, g.Add, g.Rem, g.Rand, cb)
	if err != nil {
		return nil, err
	}
	if err := g.validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (g *Generator) validate(p *bn.Int) error {
	checks := g.Checks
	if checks <= 0 {
		checks = bn.ChecksForValidation
	}
	candidates := []*bn.Int{p}
	if g.Safe {
		candidates = append(candidates, new(bn.Int).Rsh(p, 1))
	}
	for _, c := range candidates {
		ok, err := bn.PrimalityTest(c, checks, true, g.Rand)
		if err != nil {
			return err
		}
		if !ok {
			return errors.WithMessagef(ErrValidation, "%d-bit candidate", g.Bits)
		}
	}
	return nil
}
