// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package messagebus

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/counter"
	"github.com/bitmark-inc/notaryd/fault"
)

// default sizes
const (
	DefaultQueueSize = 1000
	DefaultWorkers   = 4
)

// Handler - processes one packed request
type Handler func(packed []byte) ([]byte, error)

type result struct {
	data []byte
	err  error
}

type job struct {
	packed []byte
	reply  chan result
}

// Queue - requests waiting for a worker
type Queue struct {
	log     *logger.L
	handler Handler
	workers int
	queue   chan *job
	done    chan struct{}
	once    sync.Once
	pending counter.Counter
}

// New - queue of size entries served by workers goroutines once Run
func New(size int, workers int, handler Handler) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Queue{
		log:     logger.New("messagebus"),
		handler: handler,
		workers: workers,
		queue:   make(chan *job, size),
		done:    make(chan struct{}),
	}
}

// Send - queue a request and wait for its result
func (q *Queue) Send(packed []byte) ([]byte, error) {
	j := &job{
		packed: packed,
		reply:  make(chan result, 1),
	}

	select {
	case <-q.done:
		return nil, fault.ErrShuttingDown
	default:
	}

	q.pending.Increment()
	select {
	case q.queue <- j:
	default:
		n := q.pending.Decrement()
		q.log.Warnf("queue full: %d pending", n)
		return nil, fault.ErrQueueFull
	}

	select {
	case r := <-j.reply:
		return r.data, r.err
	case <-q.done:
		return nil, fault.ErrShuttingDown
	}
}

// Pending - requests queued but not yet finished
func (q *Queue) Pending() uint64 {
	return q.pending.Uint64()
}

// Run - background process serving the queue until shutdown
func (q *Queue) Run(args interface{}, shutdown <-chan struct{}) {
	q.log.Infof("starting %d workers", q.workers)

	var wg sync.WaitGroup
	for i := 0; i < q.workers; i += 1 {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			q.worker(n)
		}(i)
	}

	<-shutdown
	q.once.Do(func() {
		close(q.done)
	})
	wg.Wait()
	q.log.Info("stopped")
}

func (q *Queue) worker(n int) {
	for {
		select {
		case <-q.done:
			return
		case j := <-q.queue:
			data, err := q.handler(j.packed)
			q.pending.Decrement()
			j.reply <- result{data: data, err: err}
			q.log.Debugf("worker: %d  pending: %d", n, q.pending.Uint64())
		}
	}
}
