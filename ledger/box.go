// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"sort"

	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
)

// record tag for a packed box
const boxTag = 0x42

// maximum entries accepted when decoding a box
const maximumEntries = 1000000

// Entry - the abbreviated form of a transaction in a box
//
// the full transaction is only present once its box receipt is loaded
type Entry struct {
	Number          uint64
	Kind            TransactionKind
	ReferenceNumber uint64
	ReceiptHash     identifier.ID
	transaction     *Transaction
}

// IsAbbreviated - true if the box receipt is not loaded
func (e *Entry) IsAbbreviated() bool {
	return nil == e.transaction
}

// Transaction - the full transaction, nil if abbreviated
func (e *Entry) Transaction() *Transaction {
	return e.transaction
}

// Box - ordered collection of transactions for one nym or account
type Box struct {
	Kind       BoxKind
	OwnerNymID identifier.ID
	Subject    identifier.ID // account id or nym id
	NotaryID   identifier.ID
	Signature  nym.Signature

	entries map[uint64]*Entry
	removed map[uint64]struct{} // receipts to delete on save
}

// BoxID - storage identifier of a box
func BoxID(kind BoxKind, subject identifier.ID, notaryID identifier.ID) identifier.ID {
	return identifier.New(codec.AppendUint64(nil, uint64(kind)), subject[:], notaryID[:])
}

// NewBox - an empty box
func NewBox(kind BoxKind, ownerNymID identifier.ID, subject identifier.ID, notaryID identifier.ID) *Box {
	return &Box{
		Kind:       kind,
		OwnerNymID: ownerNymID,
		Subject:    subject,
		NotaryID:   notaryID,
		entries:    make(map[uint64]*Entry),
		removed:    make(map[uint64]struct{}),
	}
}

// ID - storage identifier of this box
func (b *Box) ID() identifier.ID {
	return BoxID(b.Kind, b.Subject, b.NotaryID)
}

// AddTransaction - insert a signed transaction
//
// fails if a transaction with the same number is present
func (b *Box) AddTransaction(t *Transaction) error {
	if !t.IsSigned() {
		return fault.ErrInvalidSignature
	}
	if _, ok := b.entries[t.Number]; ok {
		return fault.ErrDuplicateTransaction
	}
	b.entries[t.Number] = &Entry{
		Number:          t.Number,
		Kind:            t.Kind,
		ReferenceNumber: t.ReferenceNumber,
		ReceiptHash:     t.ReceiptHash(),
		transaction:     t,
	}
	delete(b.removed, t.Number)
	return nil
}

// RemoveTransaction - delete a transaction by number
func (b *Box) RemoveTransaction(number uint64) error {
	if _, ok := b.entries[number]; !ok {
		return fault.ErrTransactionNotFound
	}
	delete(b.entries, number)
	b.removed[number] = struct{}{}
	return nil
}

// Entry - look up by number
func (b *Box) Entry(number uint64) (*Entry, bool) {
	e, ok := b.entries[number]
	return e, ok
}

// Entries - all entries in number order
func (b *Box) Entries() []*Entry {
	result := make([]*Entry, 0, len(b.entries))
	for _, e := range b.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Number < result[j].Number
	})
	return result
}

// Numbers - all transaction numbers in order
func (b *Box) Numbers() []uint64 {
	entries := b.Entries()
	result := make([]uint64, len(entries))
	for i, e := range entries {
		result[i] = e.Number
	}
	return result
}

// Count - number of transactions
func (b *Box) Count() int {
	return len(b.entries)
}

// FindByReference - entries of a kind referring to a number
func (b *Box) FindByReference(kind TransactionKind, reference uint64) []*Entry {
	result := []*Entry{}
	for _, e := range b.Entries() {
		if kind == e.Kind && reference == e.ReferenceNumber {
			result = append(result, e)
		}
	}
	return result
}

// IsComplete - true if every box receipt is loaded
func (b *Box) IsComplete() bool {
	for _, e := range b.entries {
		if e.IsAbbreviated() {
			return false
		}
	}
	return true
}

// Abbreviate - drop all loaded box receipts
func (b *Box) Abbreviate() {
	for _, e := range b.entries {
		e.transaction = nil
	}
}

// the signed-over packing, identical for abbreviated and full boxes
func (b *Box) pack() []byte {
	return b.packEntries(func(*Entry) bool { return true })
}

func (b *Box) packEntries(include func(*Entry) bool) []byte {
	buffer := codec.AppendUint64(nil, boxTag)
	buffer = codec.AppendUint64(buffer, uint64(b.Kind))
	buffer = codec.AppendID(buffer, b.OwnerNymID)
	buffer = codec.AppendID(buffer, b.Subject)
	buffer = codec.AppendID(buffer, b.NotaryID)
	entries := []*Entry{}
	for _, e := range b.Entries() {
		if include(e) {
			entries = append(entries, e)
		}
	}
	buffer = codec.AppendUint64(buffer, uint64(len(entries)))
	for _, e := range entries {
		buffer = codec.AppendUint64(buffer, e.Number)
		buffer = codec.AppendUint64(buffer, uint64(e.Kind))
		buffer = codec.AppendUint64(buffer, e.ReferenceNumber)
		buffer = codec.AppendID(buffer, e.ReceiptHash)
	}
	return buffer
}

// Hash - content hash used to detect divergence between two copies
func (b *Box) Hash() identifier.ID {
	return identifier.New(b.pack())
}

// NymboxHash - hash compared by client and notary before acting on
// issued numbers
//
// reply notices are left out so a reply can carry the hash of the
// nymbox holding its own notice
func (b *Box) NymboxHash() identifier.ID {
	return identifier.New(b.packEntries(func(e *Entry) bool {
		return ReplyNotice != e.Kind
	}))
}

// Sign - sign the box and return the abbreviated record
func (b *Box) Sign(signer nym.Signer) []byte {
	packed := b.pack()
	b.Signature = signer.Sign(packed)
	return codec.AppendBytes(packed, b.Signature)
}

// UnpackBox - decode an abbreviated record and check the signature
func UnpackBox(record []byte, verifier nym.Verifier) (*Box, error) {
	r := codec.NewReader(record)

	if boxTag != r.Uint64() {
		return nil, fault.ErrUnknownRecordType
	}

	kind := BoxKind(r.Uint64())
	owner := r.ID()
	subject := r.ID()
	notaryID := r.ID()
	b := NewBox(kind, owner, subject, notaryID)

	count := r.Uint64()
	if nil != r.Err() {
		return nil, r.Err()
	}
	if count > maximumEntries {
		return nil, fault.ErrInvalidCount
	}
	for i := uint64(0); i < count; i += 1 {
		e := &Entry{
			Number:          r.Uint64(),
			Kind:            TransactionKind(r.Uint64()),
			ReferenceNumber: r.Uint64(),
			ReceiptHash:     r.ID(),
		}
		if nil != r.Err() {
			return nil, r.Err()
		}
		if _, ok := b.entries[e.Number]; ok {
			return nil, fault.ErrDuplicateTransaction
		}
		b.entries[e.Number] = e
	}
	unsignedLength := r.Offset()
	b.Signature = r.Bytes()
	if err := r.Done(); nil != err {
		return nil, err
	}
	if !kind.IsValid() {
		return nil, fault.ErrInvalidBoxKind
	}
	if err := verifier.Verify(record[:unsignedLength], b.Signature); nil != err {
		return nil, err
	}
	return b, nil
}

// ReceiptLoader - fetch the signed record of one box receipt
type ReceiptLoader func(number uint64) ([]byte, error)

// LoadBoxReceipts - replace abbreviated entries by their full transactions
//
// idempotent, entries already loaded are left alone
// every receipt must match the hash recorded in the box
func (b *Box) LoadBoxReceipts(loader ReceiptLoader, verifier nym.Verifier) error {
	for _, e := range b.Entries() {
		if !e.IsAbbreviated() {
			continue
		}
		record, err := loader(e.Number)
		if nil != err {
			return err
		}
		if identifier.New(record) != e.ReceiptHash {
			return fault.ErrBoxReceiptHashMismatch
		}
		t, err := UnpackTransaction(record, verifier)
		if nil != err {
			return err
		}
		if t.Number != e.Number || t.Kind != e.Kind || t.ReferenceNumber != e.ReferenceNumber {
			return fault.ErrBoxReceiptHashMismatch
		}
		e.transaction = t
	}
	return nil
}
