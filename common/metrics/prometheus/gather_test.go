/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package prometheus_test

import (
	"github.com/hyperledger/fabric-bignum/common/metrics"
	bnprom "github.com/hyperledger/fabric-bignum/common/metrics/prometheus"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	prom "github.com/prometheus/client_golang/prometheus"
)

var _ = Describe("Gather", func() {
	var (
		registry *prom.Registry
		p        *bnprom.Provider
	)

	BeforeEach(func() {
		registry = prom.NewRegistry()
		p = &bnprom.Provider{Registerer: registry}
	})

	It("flattens counters, gauges and histograms", func() {
		p.NewCounter(metrics.CounterOpts{
			Namespace:  "bn",
			Name:       "ops",
			Help:       "ops",
			LabelNames: []string{"op"},
		}).With("op", "mul").Add(3)
		p.NewGauge(metrics.GaugeOpts{Namespace: "bn", Name: "width", Help: "width"}).Set(4)
		h := p.NewHistogram(metrics.HistogramOpts{
			Namespace: "bn",
			Name:      "seconds",
			Help:      "seconds",
			Buckets:   []float64{1, 2},
		})
		h.Observe(0.5)
		h.Observe(1.5)
		p.NewCounter(metrics.CounterOpts{Namespace: "other", Name: "ignored", Help: "ignored"}).Add(1)

		samples, err := bnprom.Gather(registry, "bn_")
		Expect(err).NotTo(HaveOccurred())

		var rendered []string
		for _, s := range samples {
			rendered = append(rendered, s.String())
		}
		Expect(rendered).To(ConsistOf(
			`bn_ops{op="mul"} 3`,
			`bn_width 4`,
			`bn_seconds_count 2`,
			`bn_seconds_sum 2`,
		))
	})

	It("returns nothing for an empty registry", func() {
		samples, err := bnprom.Gather(registry, "")
		Expect(err).NotTo(HaveOccurred())
		Expect(samples).To(BeEmpty())
	})
})
