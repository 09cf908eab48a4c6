// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
)

// record tag for a packed account
const accountTag = 0x41

// Account - balance of one unit held by one nym at a notary
//
// only an issuer account may hold a negative balance, it is the source
// of all units in circulation
type Account struct {
	ID         identifier.ID
	OwnerNymID identifier.ID
	NotaryID   identifier.ID
	UnitID     identifier.ID
	Balance    amount.Amount
	Issuer     bool
	Signature  nym.Signature
}

// NewID - derive the identifier of the serial'th account
func NewID(ownerNymID identifier.ID, unitID identifier.ID, notaryID identifier.ID, serial uint64) identifier.ID {
	return identifier.New([]byte("account"), ownerNymID[:], unitID[:], notaryID[:], codec.AppendUint64(nil, serial))
}

// Debit - remove value, false with no change if not possible
func (a *Account) Debit(value amount.Amount) bool {
	if value.Sign() <= 0 {
		return false
	}
	balance := a.Balance.Sub(value)
	if balance.IsNegative() && !a.Issuer {
		return false
	}
	a.Balance = balance
	return true
}

// Credit - add value, false with no change if not possible
func (a *Account) Credit(value amount.Amount) bool {
	if value.Sign() <= 0 {
		return false
	}
	a.Balance = a.Balance.Add(value)
	return true
}

// Copy - independent copy
func (a *Account) Copy() *Account {
	c := *a
	c.Signature = append(nym.Signature{}, a.Signature...)
	return &c
}

// Pack - canonical packing without signature
func (a *Account) Pack() []byte {
	buffer := codec.AppendUint64(nil, accountTag)
	buffer = codec.AppendID(buffer, a.ID)
	buffer = codec.AppendID(buffer, a.OwnerNymID)
	buffer = codec.AppendID(buffer, a.NotaryID)
	buffer = codec.AppendID(buffer, a.UnitID)
	buffer = codec.AppendString(buffer, a.Balance.Serialize())
	buffer = codec.AppendBool(buffer, a.Issuer)
	return buffer
}

// Sign - sign and return the complete record
func (a *Account) Sign(signer nym.Signer) []byte {
	packed := a.Pack()
	a.Signature = signer.Sign(packed)
	return codec.AppendBytes(packed, a.Signature)
}

// Unpack - decode a record and check the notary signature
func Unpack(record []byte, verifier nym.Verifier) (*Account, error) {
	r := codec.NewReader(record)
	if accountTag != r.Uint64() {
		return nil, fault.ErrUnknownRecordType
	}
	a := &Account{
		ID:         r.ID(),
		OwnerNymID: r.ID(),
		NotaryID:   r.ID(),
		UnitID:     r.ID(),
	}
	balance := r.String()
	a.Issuer = r.Bool()
	unsignedLength := r.Offset()
	a.Signature = r.Bytes()
	if err := r.Done(); nil != err {
		return nil, err
	}

	b, err := amount.FromString(balance)
	if nil != err {
		return nil, err
	}
	a.Balance = b

	if verifier.ID() != a.NotaryID {
		return nil, fault.ErrUnsignedAccount
	}
	if err := verifier.Verify(record[:unsignedLength], a.Signature); nil != err {
		return nil, fault.ErrUnsignedAccount
	}
	return a, nil
}
