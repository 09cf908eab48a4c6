// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/bitmark-inc/notaryd/fault"
)

// Transaction - a batch of writes that is applied atomically
//
// reads through the transaction see its own staged writes
type Transaction interface {
	Put(*PoolHandle, []byte, []byte)
	PutN(*PoolHandle, []byte, uint64)
	Delete(*PoolHandle, []byte)
	Get(*PoolHandle, []byte) []byte
	GetN(*PoolHandle, []byte) (uint64, bool)
	Has(*PoolHandle, []byte) bool
	Commit() error
	Abort()
}

type transactionImpl struct {
	sync.Mutex
	inUse bool
	batch *leveldb.Batch
	cache Cache
}

// NewDBTransaction - start a new write batch
func NewDBTransaction() (Transaction, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		return nil, fault.ErrNotInitialised
	}
	return &transactionImpl{
		inUse: true,
		batch: new(leveldb.Batch),
		cache: newCache(),
	}, nil
}

func (t *transactionImpl) Put(handle *PoolHandle, key []byte, value []byte) {
	t.Lock()
	defer t.Unlock()

	if !t.inUse {
		return
	}
	prefixedKey := handle.prefixKey(key)
	stored := make([]byte, len(value))
	copy(stored, value)
	t.batch.Put(prefixedKey, stored)
	t.cache.Set(dbPut, string(prefixedKey), stored)
}

func (t *transactionImpl) PutN(handle *PoolHandle, key []byte, value uint64) {
	t.Put(handle, key, encodeN(value))
}

func (t *transactionImpl) Delete(handle *PoolHandle, key []byte) {
	t.Lock()
	defer t.Unlock()

	if !t.inUse {
		return
	}
	prefixedKey := handle.prefixKey(key)
	t.batch.Delete(prefixedKey)
	t.cache.Set(dbDelete, string(prefixedKey), nil)
}

func (t *transactionImpl) Get(handle *PoolHandle, key []byte) []byte {
	t.Lock()
	value, staged, deleted := t.cache.Get(string(handle.prefixKey(key)))
	t.Unlock()

	if deleted {
		return nil
	}
	if staged {
		result := make([]byte, len(value))
		copy(result, value)
		return result
	}
	return handle.Get(key)
}

func (t *transactionImpl) GetN(handle *PoolHandle, key []byte) (uint64, bool) {
	return decodeN(key, t.Get(handle, key))
}

func (t *transactionImpl) Has(handle *PoolHandle, key []byte) bool {
	t.Lock()
	_, staged, deleted := t.cache.Get(string(handle.prefixKey(key)))
	t.Unlock()

	if deleted {
		return false
	}
	if staged {
		return true
	}
	return handle.Has(key)
}

// Commit - write all staged data, the transaction cannot be reused
func (t *transactionImpl) Commit() error {
	t.Lock()
	defer t.Unlock()

	if !t.inUse {
		return fault.ErrTransactionNotRunning
	}
	t.inUse = false
	defer t.cache.Clear()

	poolData.RLock()
	defer poolData.RUnlock()
	if nil == poolData.database {
		return fault.ErrNotInitialised
	}

	err := poolData.database.Write(t.batch, nil)
	if nil != err {
		poolData.log.Errorf("commit: %d records failed: %s", t.batch.Len(), err)
		return errors.Wrap(err, "storage commit")
	}
	return nil
}

// Abort - discard all staged data
func (t *transactionImpl) Abort() {
	t.Lock()
	defer t.Unlock()

	t.inUse = false
	t.batch.Reset()
	t.cache.Clear()
}
