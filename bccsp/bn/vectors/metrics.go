/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package vectors

import "github.com/hyperledger/fabric-bignum/common/metrics"

var (
	checkedOpts = metrics.CounterOpts{
		Namespace:  "bn",
		Subsystem:  "vectors",
		Name:       "checked",
		Help:       "The number of test vectors checked.",
		LabelNames: []string{"type"},
	}
	failedOpts = metrics.CounterOpts{
		Namespace:  "bn",
		Subsystem:  "vectors",
		Name:       "failed",
		Help:       "The number of test vectors that failed.",
		LabelNames: []string{"type"},
	}
)

type Metrics struct {
	Checked metrics.Counter
	Failed  metrics.Counter
}

func NewMetrics(p metrics.Provider) *Metrics {
	return &Metrics{
		Checked: p.NewCounter(checkedOpts),
		Failed:  p.NewCounter(failedOpts),
	}
}
