// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"runtime"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/messagebus"
)

const (
	statsDelay = 60 * time.Second
	mega       = 1048576
)

// periodic memory and queue statistics
type stats struct {
	queue *messagebus.Queue
}

func (s *stats) Run(args interface{}, shutdown <-chan struct{}) {

	log := logger.New("memory")

	ticker := time.NewTicker(statsDelay)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
		}

		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		a := m.Alloc / mega
		t := m.TotalAlloc / mega
		sys := m.Sys / mega
		log.Infof("allocated: %d M  cumulative: %d M  OS virtual: %d M  goroutines: %d", a, t, sys, runtime.NumGoroutine())
		log.Infof("queue pending: %d", s.queue.Pending())
	}
}
