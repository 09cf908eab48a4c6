// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

// Store - the contexts of one local nym, each behind its own lock
type Store struct {
	sync.Mutex // protects entries
	log        *logger.L
	pool       *storage.PoolHandle
	owner      nym.Identity
	notaryID   identifier.ID
	entries    map[identifier.ID]*entry
}

type entry struct {
	sync.RWMutex
	context *Context // nil until loaded or created
}

// Handle - exclusive access to one context
//
// changes are made to a working copy that only replaces the stored
// context after Stage and Commit, Release without Commit discards them
type Handle struct {
	store    *Store
	entry    *entry
	working  *Context
	staged   bool
	released bool
}

// NewStore - contexts persisted in pool and signed by owner
func NewStore(pool *storage.PoolHandle, owner nym.Identity, notaryID identifier.ID) *Store {
	return &Store{
		log:      logger.New("consensus"),
		pool:     pool,
		owner:    owner,
		notaryID: notaryID,
		entries:  make(map[identifier.ID]*entry),
	}
}

// Owner - the local nym
func (s *Store) Owner() nym.Identity {
	return s.owner
}

func (s *Store) getEntry(remoteNymID identifier.ID) *entry {
	s.Lock()
	defer s.Unlock()
	id := ID(s.owner.ID(), remoteNymID)
	e, ok := s.entries[id]
	if !ok {
		e = &entry{}
		s.entries[id] = e
	}
	return e
}

// load from the database, entry lock must be held
func (s *Store) load(e *entry, remoteNymID identifier.ID) error {
	if nil != e.context {
		return nil
	}
	id := ID(s.owner.ID(), remoteNymID)
	record := s.pool.Get(id[:])
	if nil == record {
		return fault.ErrContextNotFound
	}
	c, err := Unpack(s.log, record, s.owner)
	if nil != err {
		s.log.Errorf("context: %s  unpack error: %s", id, err)
		return err
	}
	if c.LocalNymID != s.owner.ID() || c.RemoteNymID != remoteNymID {
		s.log.Criticalf("context: %s  stored for wrong nyms", id)
		return fault.ErrContextNotFound
	}
	e.context = c
	return nil
}

// Acquire - lock the context with remoteNymID for exclusive use
//
// if create is set a missing context is started fresh
// the caller must Release the handle, normally by defer
func (s *Store) Acquire(remoteNymID identifier.ID, create bool) (*Handle, error) {
	e := s.getEntry(remoteNymID)
	e.Lock()

	err := s.load(e, remoteNymID)
	var working *Context
	switch {
	case nil == err:
		working = e.context.Clone()
	case fault.ErrContextNotFound == err && create:
		working = New(s.log, s.notaryID, s.owner.ID(), remoteNymID)
	default:
		e.Unlock()
		return nil, err
	}

	return &Handle{
		store:   s,
		entry:   e,
		working: working,
	}, nil
}

// Exists - true if a context with remoteNymID is stored
func (s *Store) Exists(remoteNymID identifier.ID) bool {
	e := s.getEntry(remoteNymID)
	e.Lock()
	defer e.Unlock()
	return nil == s.load(e, remoteNymID)
}

// View - shared read access to a context
//
// the context passed to f must not be modified or retained
func (s *Store) View(remoteNymID identifier.ID, f func(*Context) error) error {
	e := s.getEntry(remoteNymID)

	// loading needs the write lock
	e.Lock()
	err := s.load(e, remoteNymID)
	e.Unlock()
	if nil != err {
		return err
	}

	e.RLock()
	defer e.RUnlock()
	return f(e.context)
}

// Mutate - acquire, apply f, sign and commit in a single transaction
//
// nothing changes if f or the commit fails
func (s *Store) Mutate(remoteNymID identifier.ID, create bool, f func(*Context, storage.Transaction) error) error {
	h, err := s.Acquire(remoteNymID, create)
	if nil != err {
		return err
	}
	defer h.Release()

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return err
	}

	err = f(h.Context(), trx)
	if nil != err {
		trx.Abort()
		return err
	}

	h.Stage(trx)
	err = trx.Commit()
	if nil != err {
		return err
	}
	h.Commit()
	return nil
}

// Context - the working copy
func (h *Handle) Context() *Context {
	return h.working
}

// Stage - sign the working copy and add it to trx
func (h *Handle) Stage(trx storage.Transaction) {
	if h.released {
		logger.Panic("consensus: stage after release")
	}
	record := h.working.Sign(h.store.owner)
	id := h.working.ID()
	trx.Put(h.store.pool, id[:], record)
	h.staged = true
}

// Commit - make the staged working copy the current context
//
// call only after the storage transaction committed
func (h *Handle) Commit() {
	if !h.staged || h.released {
		logger.Panic("consensus: commit of unstaged context")
	}
	h.entry.context = h.working
	h.working = h.working.Clone()
	h.staged = false
}

// Release - give up the lock, uncommitted changes are discarded
func (h *Handle) Release() {
	if h.released {
		return
	}
	h.released = true
	h.entry.Unlock()
}
