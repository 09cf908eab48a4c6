// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

// Store - persistence of accounts and units
type Store struct {
	log      *logger.L
	accounts *storage.PoolHandle
	units    *storage.PoolHandle
	notary   nym.Identity
}

// NewStore - accounts and units signed by notary
func NewStore(accounts *storage.PoolHandle, units *storage.PoolHandle, notary nym.Identity) *Store {
	return &Store{
		log:      logger.New("account"),
		accounts: accounts,
		units:    units,
		notary:   notary,
	}
}

// Load - read and verify an account
func (s *Store) Load(trx storage.Transaction, accountID identifier.ID) (*Account, error) {
	record := trx.Get(s.accounts, accountID[:])
	if nil == record {
		return nil, fault.ErrMissingAccount
	}
	a, err := Unpack(record, s.notary)
	if nil != err {
		s.log.Errorf("account: %s  unpack error: %s", accountID, err)
		return nil, err
	}
	if a.ID != accountID {
		s.log.Criticalf("account: %s  stored under wrong key", accountID)
		return nil, fault.ErrMissingAccount
	}
	return a, nil
}

// LoadOwned - read an account and check its owner
func (s *Store) LoadOwned(trx storage.Transaction, accountID identifier.ID, ownerNymID identifier.ID) (*Account, error) {
	a, err := s.Load(trx, accountID)
	if nil != err {
		return nil, err
	}
	if a.OwnerNymID != ownerNymID {
		return nil, fault.ErrAccountNotOwned
	}
	return a, nil
}

// Save - sign and stage an account
func (s *Store) Save(trx storage.Transaction, a *Account) {
	trx.Put(s.accounts, a.ID[:], a.Sign(s.notary))
}

// Record - the signed record of an account
func (s *Store) Record(trx storage.Transaction, accountID identifier.ID) ([]byte, error) {
	record := trx.Get(s.accounts, accountID[:])
	if nil == record {
		return nil, fault.ErrMissingAccount
	}
	return record, nil
}

// LoadUnit - read and verify a unit definition
func (s *Store) LoadUnit(trx storage.Transaction, unitID identifier.ID) (*Unit, error) {
	record := trx.Get(s.units, unitID[:])
	if nil == record {
		return nil, fault.ErrMissingUnit
	}
	u, err := UnpackUnit(record, s.notary)
	if nil != err {
		s.log.Errorf("unit: %s  unpack error: %s", unitID, err)
		return nil, err
	}
	return u, nil
}

// UnitExists - true if the unit is stored
func (s *Store) UnitExists(trx storage.Transaction, unitID identifier.ID) bool {
	return trx.Has(s.units, unitID[:])
}

// SaveUnit - sign and stage a unit definition
func (s *Store) SaveUnit(trx storage.Transaction, u *Unit) {
	trx.Put(s.units, u.ID[:], u.Sign(s.notary))
}

// UnitRecord - the signed record of a unit
func (s *Store) UnitRecord(trx storage.Transaction, unitID identifier.ID) ([]byte, error) {
	record := trx.Get(s.units, unitID[:])
	if nil == record {
		return nil, fault.ErrMissingUnit
	}
	return record, nil
}
