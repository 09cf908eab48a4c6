// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"strings"

	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
)

// record tag for a packed unit
const unitTag = 0x55

// limits on unit text fields
const (
	maxNameLength   = 64
	maxSymbolLength = 8
)

// Unit - a unit definition, the currency of an account
type Unit struct {
	ID           identifier.ID
	IssuerNymID  identifier.ID
	NotaryID     identifier.ID
	Name         string
	Symbol       string
	DecimalPower int32
	Signature    nym.Signature
}

// NewUnit - a validated unit with its content derived identifier
func NewUnit(issuerNymID identifier.ID, notaryID identifier.ID, name string, symbol string, decimalPower int32) (*Unit, error) {
	name = strings.TrimSpace(name)
	symbol = strings.TrimSpace(symbol)
	if 0 == len(name) || len(name) > maxNameLength {
		return nil, fault.ErrInvalidUnit
	}
	if 0 == len(symbol) || len(symbol) > maxSymbolLength {
		return nil, fault.ErrInvalidUnit
	}
	if decimalPower < 0 || decimalPower > amount.MaximumDecimalPower {
		return nil, fault.ErrInvalidUnit
	}
	u := &Unit{
		IssuerNymID:  issuerNymID,
		NotaryID:     notaryID,
		Name:         name,
		Symbol:       symbol,
		DecimalPower: decimalPower,
	}
	u.ID = identifier.New(u.content())
	return u, nil
}

// the fields that determine the identifier
func (u *Unit) content() []byte {
	buffer := codec.AppendUint64(nil, unitTag)
	buffer = codec.AppendID(buffer, u.IssuerNymID)
	buffer = codec.AppendID(buffer, u.NotaryID)
	buffer = codec.AppendString(buffer, u.Name)
	buffer = codec.AppendString(buffer, u.Symbol)
	buffer = codec.AppendInt64(buffer, int64(u.DecimalPower))
	return buffer
}

// Format - amount for display in this unit
func (u *Unit) Format(a amount.Amount) string {
	return a.Format(u.DecimalPower) + " " + u.Symbol
}

// Parse - amount from display text in this unit, symbol optional
func (u *Unit) Parse(s string) (amount.Amount, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), u.Symbol))
	return amount.ParseDisplay(s, u.DecimalPower)
}

// Sign - sign and return the complete record
func (u *Unit) Sign(signer nym.Signer) []byte {
	packed := u.content()
	u.Signature = signer.Sign(packed)
	return codec.AppendBytes(packed, u.Signature)
}

// UnpackUnit - decode a record and check the notary signature
func UnpackUnit(record []byte, verifier nym.Verifier) (*Unit, error) {
	r := codec.NewReader(record)
	if unitTag != r.Uint64() {
		return nil, fault.ErrUnknownRecordType
	}
	u := &Unit{
		IssuerNymID:  r.ID(),
		NotaryID:     r.ID(),
		Name:         r.String(),
		Symbol:       r.String(),
		DecimalPower: int32(r.Int64()),
	}
	unsignedLength := r.Offset()
	u.Signature = r.Bytes()
	if err := r.Done(); nil != err {
		return nil, err
	}
	if verifier.ID() != u.NotaryID {
		return nil, fault.ErrInvalidUnit
	}
	if err := verifier.Verify(record[:unsignedLength], u.Signature); nil != err {
		return nil, err
	}
	u.ID = identifier.New(record[:unsignedLength])
	return u, nil
}
