/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package primegen

import "github.com/hyperledger/fabric-bignum/common/metrics"

var (
	candidatesOpts = metrics.CounterOpts{
		Namespace:  "bn",
		Subsystem:  "primegen",
		Name:       "candidates",
		Help:       "The number of sieved candidates tested while generating primes.",
		LabelNames: []string{"safe"},
	}
	durationOpts = metrics.HistogramOpts{
		Namespace:  "bn",
		Subsystem:  "primegen",
		Name:       "duration",
		Help:       "The time taken to generate and validate a single prime, in seconds.",
		LabelNames: []string{"safe"},
		Buckets:    []float64{0.001, 0.005, 0.025, 0.1, 0.5, 2.5, 10, 60},
	}
	generatedOpts = metrics.CounterOpts{
		Namespace:  "bn",
		Subsystem:  "primegen",
		Name:       "generated",
		Help:       "The number of primes generated.",
		LabelNames: []string{"safe"},
	}
)

type Metrics struct {
	Candidates metrics.Counter
	Duration   metrics.Histogram
	Generated  metrics.Counter
}

func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		Candidates: p.NewCounter(candidatesOpts),
		Duration:   p.NewHistogram(durationOpts),
		Generated:  p.NewCounter(generatedOpts),
	}
}
