// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

const (
	nymExpiry  = 30 * time.Minute
	nymCleanup = 10 * time.Minute
)

// registered public keys, keyed by nym id
type registry struct {
	pool  *storage.PoolHandle
	cache *cache.Cache
}

func newRegistry(pool *storage.PoolHandle) *registry {
	return &registry{
		pool:  pool,
		cache: cache.New(nymExpiry, nymCleanup),
	}
}

// lookup a committed registration
func (r *registry) lookup(nymID identifier.ID) (*nym.Nym, error) {
	key := nymID.String()
	if n, ok := r.cache.Get(key); ok {
		return n.(*nym.Nym), nil
	}

	publicKey := r.pool.Get(nymID[:])
	if nil == publicKey {
		return nil, fault.ErrNotRegistered
	}
	n, err := nym.New(publicKey)
	if nil != err {
		return nil, err
	}
	if n.ID() != nymID {
		return nil, fault.ErrInvalidNymAddress
	}
	r.cache.Set(key, n, cache.DefaultExpiration)
	return n, nil
}

func (r *registry) exists(trx storage.Transaction, nymID identifier.ID) bool {
	return trx.Has(r.pool, nymID[:])
}

func (r *registry) save(trx storage.Transaction, n *nym.Nym) {
	id := n.ID()
	trx.Put(r.pool, id[:], n.PublicKey())
}

// usage credits, one counter per nym
type credits struct {
	pool    *storage.PoolHandle
	enabled bool
	initial uint64
	admins  map[identifier.ID]struct{}
}

func (c *credits) isAdmin(nymID identifier.ID) bool {
	_, ok := c.admins[nymID]
	return ok
}

func (c *credits) open(trx storage.Transaction, nymID identifier.ID) {
	if c.enabled {
		trx.PutN(c.pool, nymID[:], c.initial)
	}
}

// charge - use one credit unless disabled or an administrator
func (c *credits) charge(trx storage.Transaction, nymID identifier.ID) error {
	if !c.enabled || c.isAdmin(nymID) {
		return nil
	}
	n, _ := trx.GetN(c.pool, nymID[:])
	if 0 == n {
		return fault.ErrUsageCreditsExhausted
	}
	trx.PutN(c.pool, nymID[:], n-1)
	return nil
}

// adjust - add a signed amount, the balance never goes below zero
func (c *credits) adjust(trx storage.Transaction, nymID identifier.ID, adjustment int64) uint64 {
	n, _ := trx.GetN(c.pool, nymID[:])
	switch {
	case adjustment >= 0:
		n += uint64(adjustment)
	case uint64(-adjustment) >= n:
		n = 0
	default:
		n -= uint64(-adjustment)
	}
	trx.PutN(c.pool, nymID[:], n)
	return n
}
