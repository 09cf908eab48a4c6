// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
)

// record tag for a packed transaction
const transactionTag = 0x54

// maximum items in one transaction
const maximumItems = 1000

// Transaction - a numbered, signed set of items
//
// Account is the account for value transactions and the nym for
// nymbox transactions
type Transaction struct {
	Kind            TransactionKind
	Number          uint64
	ReferenceNumber uint64
	NotaryID        identifier.ID
	OwnerNymID      identifier.ID
	Account         identifier.ID
	Timestamp       int64 // metadata only
	SignerID        identifier.ID
	Items           []*Item
	Signature       nym.Signature

	record []byte // signed packed form, set by Sign or Unpack
}

// Pack - canonical packing without signature
func (t *Transaction) Pack() []byte {
	buffer := codec.AppendUint64(nil, transactionTag)
	buffer = codec.AppendUint64(buffer, uint64(t.Kind))
	buffer = codec.AppendUint64(buffer, t.Number)
	buffer = codec.AppendUint64(buffer, t.ReferenceNumber)
	buffer = codec.AppendID(buffer, t.NotaryID)
	buffer = codec.AppendID(buffer, t.OwnerNymID)
	buffer = codec.AppendID(buffer, t.Account)
	buffer = codec.AppendInt64(buffer, t.Timestamp)
	buffer = codec.AppendID(buffer, t.SignerID)
	buffer = codec.AppendUint64(buffer, uint64(len(t.Items)))
	for _, item := range t.Items {
		buffer = append(buffer, item.Pack()...)
	}
	return buffer
}

// Sign - sign the transaction and return the complete record
func (t *Transaction) Sign(signer nym.Signer) []byte {
	t.SignerID = signer.ID()
	packed := t.Pack()
	t.Signature = signer.Sign(packed)
	t.record = codec.AppendBytes(packed, t.Signature)
	return t.Record()
}

// Record - copy of the signed record, nil if never signed
func (t *Transaction) Record() []byte {
	if nil == t.record {
		return nil
	}
	return append([]byte{}, t.record...)
}

// ReceiptHash - hash of the signed record
func (t *Transaction) ReceiptHash() identifier.ID {
	return identifier.New(t.record)
}

// IsSigned - true after Sign or Unpack
func (t *Transaction) IsSigned() bool {
	return nil != t.record
}

// Item - first item of a kind, nil if none
func (t *Transaction) Item(kind ItemKind) *Item {
	for _, item := range t.Items {
		if kind == item.Kind {
			return item
		}
	}
	return nil
}

// ItemsOfKind - all items of a kind in order
func (t *Transaction) ItemsOfKind(kind ItemKind) []*Item {
	items := []*Item{}
	for _, item := range t.Items {
		if kind == item.Kind {
			items = append(items, item)
		}
	}
	return items
}

// Success - true if every item is acknowledged
func (t *Transaction) Success() bool {
	if 0 == len(t.Items) {
		return false
	}
	for _, item := range t.Items {
		if Acknowledgement != item.Status {
			return false
		}
	}
	return true
}

// UnpackTransaction - decode a signed record and check the signature
//
// the verifier must be the nym named as signer
func UnpackTransaction(record []byte, verifier nym.Verifier) (*Transaction, error) {
	r := codec.NewReader(record)

	if transactionTag != r.Uint64() {
		return nil, fault.ErrUnknownRecordType
	}
	t := &Transaction{
		Kind:            TransactionKind(r.Uint64()),
		Number:          r.Uint64(),
		ReferenceNumber: r.Uint64(),
		NotaryID:        r.ID(),
		OwnerNymID:      r.ID(),
		Account:         r.ID(),
		Timestamp:       r.Int64(),
		SignerID:        r.ID(),
	}
	count := r.Uint64()
	if nil != r.Err() {
		return nil, r.Err()
	}
	if count > maximumItems {
		return nil, fault.ErrInvalidCount
	}
	for i := uint64(0); i < count; i += 1 {
		item, err := unpackItem(r)
		if nil != err {
			return nil, err
		}
		t.Items = append(t.Items, item)
	}
	unsignedLength := r.Offset()
	t.Signature = r.Bytes()
	if err := r.Done(); nil != err {
		return nil, err
	}
	if !t.Kind.IsValid() {
		return nil, fault.ErrInvalidTransactionKind
	}

	if verifier.ID() != t.SignerID {
		return nil, fault.ErrInvalidSignature
	}
	if err := verifier.Verify(record[:unsignedLength], t.Signature); nil != err {
		return nil, err
	}
	t.record = append([]byte{}, record...)
	return t, nil
}
