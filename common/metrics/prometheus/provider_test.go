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
	dto "github.com/prometheus/client_model/go"
)

var _ = Describe("Provider", func() {
	var (
		registry *prom.Registry
		p        *bnprom.Provider
	)

	BeforeEach(func() {
		registry = prom.NewRegistry()
		p = &bnprom.Provider{Registerer: registry}
	})

	gather := func(name string) *dto.MetricFamily {
		families, err := registry.Gather()
		Expect(err).NotTo(HaveOccurred())
		for _, mf := range families {
			if mf.GetName() == name {
				return mf
			}
		}
		return nil
	}

	It("records counter increments per label value", func() {
		c := p.NewCounter(metrics.CounterOpts{
			Namespace:  "bn",
			Subsystem:  "vectors",
			Name:       "checked",
			Help:       "vectors checked",
			LabelNames: []string{"type"},
		})
		c.With("type", "Sum").Add(2)
		c.With("type", "Product").Add(1)
		c.With("type", "Sum").Add(3)

		mf := gather("bn_vectors_checked")
		Expect(mf).NotTo(BeNil())
		Expect(mf.GetType()).To(Equal(dto.MetricType_COUNTER))
		Expect(mf.GetMetric()).To(HaveLen(2))
		for _, m := range mf.GetMetric() {
			Expect(m.GetLabel()).To(HaveLen(1))
			switch m.GetLabel()[0].GetValue() {
			case "Sum":
				Expect(m.GetCounter().GetValue()).To(Equal(5.0))
			case "Product":
				Expect(m.GetCounter().GetValue()).To(Equal(1.0))
			default:
				Fail("unexpected label " + m.GetLabel()[0].GetValue())
			}
		}
	})

	It("records gauge values", func() {
		g := p.NewGauge(metrics.GaugeOpts{Namespace: "bn", Name: "workers", Help: "busy workers"})
		g.Set(4)
		g.Add(-1)

		mf := gather("bn_workers")
		Expect(mf).NotTo(BeNil())
		Expect(mf.GetMetric()[0].GetGauge().GetValue()).To(Equal(3.0))
	})

	It("records histogram observations", func() {
		h := p.NewHistogram(metrics.HistogramOpts{
			Namespace:  "bn",
			Subsystem:  "primegen",
			Name:       "duration",
			Help:       "generation time",
			Buckets:    []float64{0.1, 1},
			LabelNames: []string{"bits"},
		})
		h.With("bits", "256").Observe(0.05)
		h.With("bits", "256").Observe(0.5)

		mf := gather("bn_primegen_duration")
		Expect(mf).NotTo(BeNil())
		hist := mf.GetMetric()[0].GetHistogram()
		Expect(hist.GetSampleCount()).To(Equal(uint64(2)))
		Expect(hist.GetBucket()).To(HaveLen(2))
		Expect(hist.GetBucket()[0].GetCumulativeCount()).To(Equal(uint64(1)))
	})

	It("panics when the same meter is created twice", func() {
		opts := metrics.CounterOpts{Name: "dup", Help: "duplicate"}
		p.NewCounter(opts)
		Expect(func() { p.NewCounter(opts) }).To(Panic())
	})
})
