// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/storage"
)

// RegisterUnit - create a unit definition and its issuer account
func (e *Engine) RegisterUnit(trx storage.Transaction, issuerNymID identifier.ID, name string, symbol string, decimalPower int32) (*account.Unit, *account.Account, error) {
	u, err := account.NewUnit(issuerNymID, e.notary.ID(), name, symbol, decimalPower)
	if nil != err {
		return nil, nil, err
	}
	if e.accounts.UnitExists(trx, u.ID) {
		return nil, nil, fault.ErrAlreadyRegistered
	}
	e.accounts.SaveUnit(trx, u)

	a, err := e.newAccount(trx, issuerNymID, u.ID, true)
	if nil != err {
		return nil, nil, err
	}
	e.log.Infof("unit: %s  %q (%s)  issuer account: %s", u.ID, u.Name, u.Symbol, a.ID)
	return u, a, nil
}

// RegisterAccount - open an empty account of an existing unit
func (e *Engine) RegisterAccount(trx storage.Transaction, ownerNymID identifier.ID, unitID identifier.ID) (*account.Account, error) {
	if !e.accounts.UnitExists(trx, unitID) {
		return nil, fault.ErrMissingUnit
	}
	a, err := e.newAccount(trx, ownerNymID, unitID, false)
	if nil != err {
		return nil, err
	}
	e.log.Infof("account: %s  owner: %s  unit: %s", a.ID, ownerNymID, unitID)
	return a, nil
}

func (e *Engine) newAccount(trx storage.Transaction, ownerNymID identifier.ID, unitID identifier.ID, issuer bool) (*account.Account, error) {
	a := &account.Account{
		ID:         account.NewID(ownerNymID, unitID, e.notary.ID(), e.transactor.Next(trx)),
		OwnerNymID: ownerNymID,
		NotaryID:   e.notary.ID(),
		UnitID:     unitID,
		Balance:    amount.Zero(),
		Issuer:     issuer,
	}
	for _, kind := range []ledger.BoxKind{ledger.Inbox, ledger.Outbox, ledger.RecordBox} {
		_, _, err := e.boxes.LoadOrGenerate(trx, kind, ownerNymID, a.ID, e.notary)
		if nil != err {
			return nil, err
		}
	}
	e.accounts.Save(trx, a)
	return a, nil
}

// AccountData - signed records describing an account
type AccountData struct {
	Account  []byte
	Unit     []byte
	Inbox    []byte
	Outbox   []byte
	Receipts map[uint64][]byte // inbox receipts
}

// GetAccountData - everything a client needs to compute a balance
// statement for an account it owns
func (e *Engine) GetAccountData(trx storage.Transaction, ownerNymID identifier.ID, accountID identifier.ID) (*AccountData, error) {
	a, err := e.accounts.LoadOwned(trx, accountID, ownerNymID)
	if nil != err {
		return nil, err
	}
	data := &AccountData{}
	data.Account, err = e.accounts.Record(trx, accountID)
	if nil != err {
		return nil, err
	}
	data.Unit, err = e.accounts.UnitRecord(trx, a.UnitID)
	if nil != err {
		return nil, err
	}
	data.Inbox, data.Receipts, err = e.BoxRecords(trx, ledger.Inbox, ownerNymID, accountID)
	if nil != err {
		return nil, err
	}
	data.Outbox, _, err = e.BoxRecords(trx, ledger.Outbox, ownerNymID, accountID)
	if nil != err {
		return nil, err
	}
	return data, nil
}

// BoxRecords - the signed abbreviated box and all its receipts
func (e *Engine) BoxRecords(trx storage.Transaction, kind ledger.BoxKind, ownerNymID identifier.ID, subject identifier.ID) ([]byte, map[uint64][]byte, error) {
	b, err := e.loadBox(trx, kind, ownerNymID, subject)
	if nil != err {
		return nil, nil, err
	}
	receipts := make(map[uint64][]byte)
	for _, n := range b.Numbers() {
		r, err := e.boxes.Receipt(trx, b.ID(), n)
		if nil != err {
			return nil, nil, err
		}
		receipts[n] = r
	}
	return b.Sign(e.notary), receipts, nil
}

// BoxReceipt - one receipt of a box owned by ownerNymID
func (e *Engine) BoxReceipt(trx storage.Transaction, kind ledger.BoxKind, ownerNymID identifier.ID, subject identifier.ID, number uint64) ([]byte, error) {
	b, err := e.loadBox(trx, kind, ownerNymID, subject)
	if nil != err {
		return nil, err
	}
	if _, ok := b.Entry(number); !ok {
		return nil, fault.ErrBoxReceiptNotFound
	}
	return e.boxes.Receipt(trx, b.ID(), number)
}

func (e *Engine) loadBox(trx storage.Transaction, kind ledger.BoxKind, ownerNymID identifier.ID, subject identifier.ID) (*ledger.Box, error) {
	if !kind.IsValid() {
		return nil, fault.ErrInvalidBoxKind
	}
	b, err := e.boxes.Load(trx, kind, subject, e.notary.ID(), e.notary)
	if nil != err {
		return nil, err
	}
	if b.OwnerNymID != ownerNymID {
		return nil, fault.ErrAccountNotOwned
	}
	return b, nil
}

// Account - load and verify an account
func (e *Engine) Account(trx storage.Transaction, accountID identifier.ID) (*account.Account, error) {
	return e.accounts.Load(trx, accountID)
}

// Unit - load and verify a unit definition
func (e *Engine) Unit(trx storage.Transaction, unitID identifier.ID) (*account.Unit, error) {
	return e.accounts.LoadUnit(trx, unitID)
}
