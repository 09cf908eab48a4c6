// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/storage"
)

func TestStoreCreateAndReload(t *testing.T) {
	owner := makeNym(t)
	remote := makeNym(t).ID()
	notary := owner.ID()

	s := consensus.NewStore(storage.Pool.Contexts, owner, notary)

	_, err := s.Acquire(remote, false)
	assert.Equal(t, fault.ErrContextNotFound, err, "missing context acquired")
	assert.False(t, s.Exists(remote), "missing context exists")

	err = s.Mutate(remote, true, func(c *consensus.Context, trx storage.Transaction) error {
		c.Numbers.IncrementRequest()
		c.Numbers.IssueNumber(77)
		return nil
	})
	assert.Nil(t, err, "create")

	// a new store has an empty cache and must read the database
	s2 := consensus.NewStore(storage.Pool.Contexts, owner, notary)
	err = s2.View(remote, func(c *consensus.Context) error {
		assert.Equal(t, uint64(1), c.Numbers.RequestNumber(), "request number")
		assert.Equal(t, []uint64{77}, c.Numbers.Available(), "available")
		assert.Equal(t, notary, c.NotaryID, "notary")
		return nil
	})
	assert.Nil(t, err, "view")
}

func TestStoreFailedMutationChangesNothing(t *testing.T) {
	owner := makeNym(t)
	remote := makeNym(t).ID()

	s := consensus.NewStore(storage.Pool.Contexts, owner, owner.ID())
	err := s.Mutate(remote, true, func(c *consensus.Context, trx storage.Transaction) error {
		c.Numbers.SetRequestNumber(5)
		return nil
	})
	assert.Nil(t, err, "create")

	err = s.Mutate(remote, false, func(c *consensus.Context, trx storage.Transaction) error {
		c.Numbers.IncrementRequest()
		return fault.ErrIncorrectRequestNumber
	})
	assert.Equal(t, fault.ErrIncorrectRequestNumber, err, "error not returned")

	// released without commit
	h, err := s.Acquire(remote, false)
	assert.Nil(t, err, "acquire")
	h.Context().Numbers.IncrementRequest()
	h.Release()

	err = s.View(remote, func(c *consensus.Context) error {
		assert.Equal(t, uint64(5), c.Numbers.RequestNumber(), "failed mutation was kept")
		return nil
	})
	assert.Nil(t, err, "view")
}

func TestStoreHandleCommit(t *testing.T) {
	owner := makeNym(t)
	remote := makeNym(t).ID()

	s := consensus.NewStore(storage.Pool.Contexts, owner, owner.ID())

	h, err := s.Acquire(remote, true)
	assert.Nil(t, err, "acquire")
	h.Context().Numbers.IncrementRequest()

	trx, err := storage.NewDBTransaction()
	assert.Nil(t, err, "transaction")
	h.Stage(trx)
	assert.Nil(t, trx.Commit(), "commit")
	h.Commit()

	// further changes after commit are discarded on release
	h.Context().Numbers.IncrementRequest()
	h.Release()
	h.Release()

	id := consensus.ID(owner.ID(), remote)
	assert.True(t, storage.Pool.Contexts.Has(id[:]), "not persisted")

	err = s.View(remote, func(c *consensus.Context) error {
		assert.Equal(t, uint64(1), c.Numbers.RequestNumber(), "request number")
		return nil
	})
	assert.Nil(t, err, "view")
}

// concurrent mutations of one context are serialised
func TestStoreSerialisation(t *testing.T) {
	owner := makeNym(t)
	remote := identifier.New([]byte("busy client"))

	s := consensus.NewStore(storage.Pool.Contexts, owner, owner.ID())

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i += 1 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.Mutate(remote, true, func(c *consensus.Context, trx storage.Transaction) error {
				c.Numbers.IncrementRequest()
				return nil
			})
			if nil != err {
				t.Errorf("mutate error: %s", err)
			}
		}()
	}
	wg.Wait()

	err := s.View(remote, func(c *consensus.Context) error {
		assert.Equal(t, uint64(workers), c.Numbers.RequestNumber(), "lost update")
		return nil
	})
	assert.Nil(t, err, "view")
}
