// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/binary"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

// Store - persistence of boxes and their receipts
//
// boxes are saved abbreviated, each full transaction is a separate
// box receipt keyed by box id and number
type Store struct {
	log      *logger.L
	boxes    *storage.PoolHandle
	receipts *storage.PoolHandle
}

// NewStore - boxes and receipts in the given pools
func NewStore(boxes *storage.PoolHandle, receipts *storage.PoolHandle) *Store {
	return &Store{
		log:      logger.New("ledger"),
		boxes:    boxes,
		receipts: receipts,
	}
}

func receiptKey(boxID identifier.ID, number uint64) []byte {
	key := make([]byte, identifier.Length+8)
	copy(key, boxID[:])
	binary.BigEndian.PutUint64(key[identifier.Length:], number)
	return key
}

// Load - read an abbreviated box
func (s *Store) Load(trx storage.Transaction, kind BoxKind, subject identifier.ID, notaryID identifier.ID, verifier nym.Verifier) (*Box, error) {
	id := BoxID(kind, subject, notaryID)
	record := trx.Get(s.boxes, id[:])
	if nil == record {
		return nil, fault.ErrBoxNotFound
	}
	b, err := UnpackBox(record, verifier)
	if nil != err {
		s.log.Errorf("box: %s  unpack error: %s", id, err)
		return nil, err
	}
	if b.Kind != kind || b.Subject != subject || b.NotaryID != notaryID {
		s.log.Criticalf("box: %s  stored under wrong key", id)
		return nil, fault.ErrBoxNotFound
	}
	return b, nil
}

// LoadOrGenerate - read a box, or create and stage an empty one
//
// the second result is true if the box was generated
func (s *Store) LoadOrGenerate(trx storage.Transaction, kind BoxKind, ownerNymID identifier.ID, subject identifier.ID, notary nym.Identity) (*Box, bool, error) {
	b, err := s.Load(trx, kind, subject, notary.ID(), notary)
	if nil == err {
		if b.OwnerNymID != ownerNymID {
			return nil, false, fault.ErrAccountNotOwned
		}
		return b, false, nil
	}
	if fault.ErrBoxNotFound != err {
		return nil, false, err
	}
	b = NewBox(kind, ownerNymID, subject, notary.ID())
	s.Save(trx, b, notary)
	return b, true, nil
}

// Exists - true if the box is stored
func (s *Store) Exists(trx storage.Transaction, kind BoxKind, subject identifier.ID, notaryID identifier.ID) bool {
	id := BoxID(kind, subject, notaryID)
	return trx.Has(s.boxes, id[:])
}

// Save - sign and stage the box, new receipts and receipt deletions
func (s *Store) Save(trx storage.Transaction, b *Box, signer nym.Signer) {
	id := b.ID()
	for number := range b.removed {
		trx.Delete(s.receipts, receiptKey(id, number))
	}
	b.removed = make(map[uint64]struct{})

	for _, e := range b.entries {
		if nil != e.transaction {
			trx.Put(s.receipts, receiptKey(id, e.Number), e.transaction.record)
		}
	}
	trx.Put(s.boxes, id[:], b.Sign(signer))
}

// Receipt - the signed record of one box receipt
func (s *Store) Receipt(trx storage.Transaction, boxID identifier.ID, number uint64) ([]byte, error) {
	record := trx.Get(s.receipts, receiptKey(boxID, number))
	if nil == record {
		return nil, fault.ErrBoxReceiptNotFound
	}
	return record, nil
}

// LoadBoxReceipts - load every receipt of a stored box
func (s *Store) LoadBoxReceipts(trx storage.Transaction, b *Box, verifier nym.Verifier) error {
	id := b.ID()
	return b.LoadBoxReceipts(func(number uint64) ([]byte, error) {
		return s.Receipt(trx, id, number)
	}, verifier)
}
