// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transactor - process wide source of transaction numbers
//
// numbers are unique and increasing, a number taken by a storage
// transaction that later aborts is simply never used
package transactor

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/counter"
	"github.com/bitmark-inc/notaryd/storage"
)

// key of the persisted high water mark
var numberKey = []byte("number")

// Transactor - the number source
type Transactor struct {
	log     *logger.L
	pool    *storage.PoolHandle
	current counter.Counter
}

// New - resume numbering from the value persisted in pool
func New(pool *storage.PoolHandle) *Transactor {
	t := &Transactor{
		log:  logger.New("transactor"),
		pool: pool,
	}
	if n, ok := pool.GetN(numberKey); ok {
		t.current.Set(n)
	}
	t.log.Infof("resume from: %d", t.current.Uint64())
	return t
}

// Next - allocate a number and stage the new high water mark
//
// callers must hold the business mutex so that the staged value is
// committed in allocation order
func (t *Transactor) Next(trx storage.Transaction) uint64 {
	n := t.current.Increment()
	trx.PutN(t.pool, numberKey, n)
	t.log.Debugf("next: %d", n)
	return n
}

// Current - most recently allocated number
func (t *Transactor) Current() uint64 {
	return t.current.Uint64()
}
