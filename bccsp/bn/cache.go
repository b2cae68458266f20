/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package bn

import "sync"

// MontCtxCache builds Montgomery contexts on first use and shares them
// between goroutines. The zero value is ready to use.
type MontCtxCache struct {
	// ConstTime selects NewMontCtxConstTime for building contexts.
	ConstTime bool

	mutex sync.RWMutex
	ctxs  map[string]*MontCtx
}

// Get returns the context for n, building it if this is the first request
// for n. Failed builds are not cached.
func (c *MontCtxCache) Get(n *Int) (*MontCtx, error) {
	key := string(n.Bytes())
	if n.neg {
		key = "-" + key
	}

	c.mutex.RLock()
	m, ok := c.ctxs[key]
	c.mutex.RUnlock()
	if ok {
		return m, nil
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if m, ok := c.ctxs[key]; ok {
		return m, nil
	}
	var err error
	if c.ConstTime {
		m, err = NewMontCtxConstTime(n)
	} else {
		m, err = NewMontCtx(n)
	}
	if err != nil {
		return nil, err
	}
	if c.ctxs == nil {
		c.ctxs = map[string]*MontCtx{}
	}
	c.ctxs[key] = m
	return m, nil
}

// Len returns the number of cached contexts.
func (c *MontCtxCache) Len() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return len(c.ctxs)
}

// Reset drops every cached context.
func (c *MontCtxCache) Reset() {
	c.mutex.Lock()
	c.ctxs = nil
	c.mutex.Unlock()
}
