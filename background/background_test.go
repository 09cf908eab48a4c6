// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package background_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/background"
)

type ticker struct {
	ticks    int64
	finished int64
}

func (state *ticker) Run(args interface{}, shutdown <-chan struct{}) {
	step := args.(int64)
loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-time.After(time.Millisecond):
			atomic.AddInt64(&state.ticks, step)
		}
	}
	atomic.StoreInt64(&state.finished, 1)
}

func TestBackground(t *testing.T) {
	p1 := &ticker{}
	p2 := &ticker{}

	p := background.Start(background.Processes{p1, p2}, int64(3))
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	for i, state := range []*ticker{p1, p2} {
		assert.Equal(t, int64(1), atomic.LoadInt64(&state.finished), "process %d did not finish", i)
		ticks := atomic.LoadInt64(&state.ticks)
		assert.True(t, ticks > 0, "process %d never ran", i)
		assert.Equal(t, int64(0), ticks%3, "process %d wrong args", i)
	}

	// second stop is harmless
	p.Stop()
}
