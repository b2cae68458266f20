/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package metrics_test

import (
	"testing"

	"github.com/hyperledger/fabric-bignum/common/flogging/metrics"
	commonmetrics "github.com/hyperledger/fabric-bignum/common/metrics"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

type counter struct {
	labels [][]string
	adds   []float64
}

func (c *counter) With(labelValues ...string) commonmetrics.Counter {
	c.labels = append(c.labels, labelValues)
	return c
}

func (c *counter) Add(delta float64) { c.adds = append(c.adds, delta) }

type provider struct {
	counters map[string]*counter
	opts     map[string]commonmetrics.CounterOpts
}

func (p *provider) NewCounter(o commonmetrics.CounterOpts) commonmetrics.Counter {
	c := &counter{}
	p.counters[o.Name] = c
	p.opts[o.Name] = o
	return c
}

func (p *provider) NewGauge(commonmetrics.GaugeOpts) commonmetrics.Gauge { return nil }

func (p *provider) NewHistogram(commonmetrics.HistogramOpts) commonmetrics.Histogram { return nil }

func TestNewObserver(t *testing.T) {
	p := &provider{counters: map[string]*counter{}, opts: map[string]commonmetrics.CounterOpts{}}

	m := metrics.NewObserver(p)
	assert.Len(t, p.counters, 2)
	assert.Equal(t, metrics.CheckedCountOpts, p.opts["entries_checked"])
	assert.Equal(t, metrics.WriteCountOpts, p.opts["entries_written"])
	assert.Same(t, p.counters["entries_checked"], m.CheckedCounter)
	assert.Same(t, p.counters["entries_written"], m.WrittenCounter)
}

func TestCheck(t *testing.T) {
	c := &counter{}
	m := metrics.Observer{CheckedCounter: c}
	m.Check(zapcore.Entry{Level: zapcore.DebugLevel}, &zapcore.CheckedEntry{})

	assert.Equal(t, [][]string{{"level", "debug"}}, c.labels)
	assert.Equal(t, []float64{1}, c.adds)
}

func TestWrite(t *testing.T) {
	c := &counter{}
	m := metrics.Observer{WrittenCounter: c}
	m.WriteEntry(zapcore.Entry{Level: zapcore.WarnLevel}, nil)

	assert.Equal(t, [][]string{{"level", "warn"}}, c.labels)
	assert.Equal(t, []float64{1}, c.adds)
}
