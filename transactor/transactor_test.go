// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transactor_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/storage"
	"github.com/bitmark-inc/notaryd/transactor"
)

func TestNextPersists(t *testing.T) {
	tr := transactor.New(storage.Pool.Transactor)
	start := tr.Current()

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction")
	a := tr.Next(trx)
	b := tr.Next(trx)
	assert.Equal(t, start+1, a, "first")
	assert.Equal(t, start+2, b, "second")
	assert.Nil(t, trx.Commit(), "commit")

	resumed := transactor.New(storage.Pool.Transactor)
	assert.Equal(t, b, resumed.Current(), "resumed value")

	// aborted numbers are skipped, never reused
	trx, err = storage.NewDBTransaction()
	assert.Nil(t, err, "transaction")
	c := resumed.Next(trx)
	trx.Abort()

	trx, err = storage.NewDBTransaction()
	assert.Nil(t, err, "transaction")
	d := resumed.Next(trx)
	assert.Nil(t, trx.Commit(), "commit")
	assert.True(t, d > c, "number reused: %d after %d", d, c)
}

func TestNextUnique(t *testing.T) {
	tr := transactor.New(storage.Pool.Transactor)

	const goroutines = 10
	const each = 100

	var mu sync.Mutex
	seen := make(map[uint64]struct{})
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			trx, err := storage.NewDBTransaction()
			if nil != err {
				t.Errorf("transaction error: %s", err)
				return
			}
			defer trx.Abort()
			for j := 0; j < each; j += 1 {
				n := tr.Next(trx)
				mu.Lock()
				seen[n] = struct{}{}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, goroutines*each, len(seen), "duplicate numbers")
}
