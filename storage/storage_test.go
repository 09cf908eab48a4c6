// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/storage"
)

var testDirectory string

func TestMain(m *testing.M) {
	dir, err := ioutil.TempDir("", "storage-test")
	if nil != err {
		panic(fmt.Sprintf("temp dir error: %s", err))
	}
	testDirectory = dir

	logging := logger.Configuration{
		Directory: dir,
		File:      "storage.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		panic(fmt.Sprintf("logger initialise error: %s", err))
	}

	rc := m.Run()

	logger.Finalise()
	os.RemoveAll(dir)
	os.Exit(rc)
}

func setup(t *testing.T) {
	err := storage.InitialiseMemory()
	if nil != err {
		t.Fatalf("storage initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	storage.Finalise()
}

func TestPool(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	assert.Nil(t, p.Get([]byte("missing")), "missing key returned data")
	assert.False(t, p.Has([]byte("missing")), "missing key exists")

	p.Put([]byte("key-one"), []byte("data-one"))
	assert.Equal(t, []byte("data-one"), p.Get([]byte("key-one")), "get after put")
	assert.True(t, p.Has([]byte("key-one")), "has after put")

	p.Delete([]byte("key-one"))
	assert.False(t, p.Has([]byte("key-one")), "has after delete")

	// other pools do not see the data
	p.Put([]byte("key-two"), []byte("data-two"))
	assert.False(t, storage.Pool.Accounts.Has([]byte("key-two")), "pools not separated")
}

func TestTransaction(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData
	p.Put([]byte("old"), []byte("old-data"))

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "new transaction")

	trx.Put(p, []byte("new"), []byte("new-data"))
	trx.PutN(p, []byte("count"), 42)
	trx.Delete(p, []byte("old"))

	// staged writes visible through the transaction only
	assert.Equal(t, []byte("new-data"), trx.Get(p, []byte("new")), "staged put not visible")
	assert.False(t, trx.Has(p, []byte("old")), "staged delete not visible")
	n, ok := trx.GetN(p, []byte("count"))
	assert.True(t, ok, "staged count missing")
	assert.Equal(t, uint64(42), n, "staged count")

	assert.Nil(t, p.Get([]byte("new")), "uncommitted data visible")
	assert.True(t, p.Has([]byte("old")), "uncommitted delete visible")

	err = trx.Commit()
	assert.Nil(t, err, "commit")

	assert.Equal(t, []byte("new-data"), p.Get([]byte("new")), "committed put")
	assert.False(t, p.Has([]byte("old")), "committed delete")
	n, ok = p.GetN([]byte("count"))
	assert.True(t, ok, "committed count missing")
	assert.Equal(t, uint64(42), n, "committed count")

	assert.Equal(t, fault.ErrTransactionNotRunning, trx.Commit(), "second commit")
}

func TestAbort(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "new transaction")

	trx.Put(p, []byte("key"), []byte("value"))
	trx.Abort()

	assert.False(t, p.Has([]byte("key")), "aborted data written")
	assert.Equal(t, fault.ErrTransactionNotRunning, trx.Commit(), "commit after abort")
}

func TestMap(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData
	p.Put([]byte("a1"), []byte("1"))
	p.Put([]byte("a2"), []byte("2"))
	p.Put([]byte("b1"), []byte("3"))
	storage.Pool.Units.Put([]byte("a3"), []byte("x"))

	keys := []string{}
	err := p.Map([]byte("a"), func(key []byte, value []byte) error {
		keys = append(keys, string(key))
		return nil
	})
	assert.Nil(t, err, "map")
	assert.Equal(t, []string{"a1", "a2"}, keys, "prefix keys")

	count := 0
	err = p.Map(nil, func(key []byte, value []byte) error {
		count += 1
		return nil
	})
	assert.Nil(t, err, "map all")
	assert.Equal(t, 3, count, "all keys")

	err = p.Map(nil, func(key []byte, value []byte) error {
		return fault.ErrInvalidCount
	})
	assert.Equal(t, fault.ErrInvalidCount, err, "map error not returned")
}

func TestFileDatabase(t *testing.T) {
	name := filepath.Join(testDirectory, "test.leveldb")

	err := storage.Initialise(name, storage.ReadWrite)
	assert.Nil(t, err, "initialise")

	storage.Pool.TestData.Put([]byte("persist"), []byte("yes"))

	err = storage.Initialise(name, storage.ReadWrite)
	assert.Equal(t, fault.ErrAlreadyInitialised, err, "double initialise")

	storage.Finalise()

	err = storage.Initialise(name, storage.ReadOnly)
	assert.Nil(t, err, "reopen")
	assert.Equal(t, []byte("yes"), storage.Pool.TestData.Get([]byte("persist")), "data not persisted")
	storage.Finalise()
}
