// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package counter

import (
	"sync/atomic"
)

// Counter - type to denote a counter that can be synchronously increments or decremented
// just a 64 bit unsigned integer
type Counter uint64

// Increment - add 1 to a counter, returns new value
func (ic *Counter) Increment() uint64 {
	return atomic.AddUint64((*uint64)(ic), 1)
}

// Decrement - subtract 1 from a counter, returns new value
func (ic *Counter) Decrement() uint64 {
	return atomic.AddUint64((*uint64)(ic), ^uint64(0))
}

// Set - replace the current value, e.g. after restoring a persisted value
func (ic *Counter) Set(n uint64) {
	atomic.StoreUint64((*uint64)(ic), n)
}

// SetIfGreater - raise the counter to n, never lowers it
//
// returns true if the value was changed
func (ic *Counter) SetIfGreater(n uint64) bool {
	for {
		current := atomic.LoadUint64((*uint64)(ic))
		if n <= current {
			return false
		}
		if atomic.CompareAndSwapUint64((*uint64)(ic), current, n) {
			return true
		}
	}
}

// Uint64 - returns current value
func (ic *Counter) Uint64() uint64 {
	return atomic.LoadUint64((*uint64)(ic))
}

// IsZero - check if zero
func (ic *Counter) IsZero() bool {
	return 0 == atomic.LoadUint64((*uint64)(ic))
}
