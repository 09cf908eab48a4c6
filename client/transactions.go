// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"time"

	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/message"
)

// AccountData - verified state of an owned account
type AccountData struct {
	Account *account.Account
	Unit    *account.Unit
	Inbox   *ledger.Box // with receipts
	Outbox  *ledger.Box // abbreviated
}

// RegisterUnit - create a unit definition, the reply carries its
// issuer account
func (s *Session) RegisterUnit(name string, symbol string, decimalPower int32) (*account.Unit, *account.Account, error) {
	var u *account.Unit
	var a *account.Account
	err := s.run(false, func(h *consensus.Handle) error {
		p := &message.UnitPayload{Name: name, Symbol: symbol, DecimalPower: decimalPower}
		reply, err := s.request(h, message.RegisterUnit, p.Pack(), 0)
		if nil != err {
			return err
		}
		if !reply.Success {
			return rejected(reply)
		}
		r, err := message.UnpackUnitReply(reply.Payload)
		if nil != err {
			return err
		}
		u, err = account.UnpackUnit(r.Unit, s.notary)
		if nil != err {
			return err
		}
		a, err = account.Unpack(r.Account, s.notary)
		return err
	})
	if nil != err {
		return nil, nil, err
	}
	return u, a, nil
}

// RegisterAccount - open an account of an existing unit
func (s *Session) RegisterAccount(unitID identifier.ID) (*account.Account, error) {
	var a *account.Account
	err := s.run(false, func(h *consensus.Handle) error {
		p := &message.IDPayload{ID: unitID}
		reply, err := s.request(h, message.RegisterAccount, p.Pack(), 0)
		if nil != err {
			return err
		}
		if !reply.Success {
			return rejected(reply)
		}
		r, err := message.UnpackRecord(reply.Payload)
		if nil != err {
			return err
		}
		a, err = account.Unpack(r.Record, s.notary)
		return err
	})
	return a, err
}

// AccountData - fetch and verify an owned account
func (s *Session) AccountData(accountID identifier.ID) (*AccountData, error) {
	var data *AccountData
	err := s.run(false, func(h *consensus.Handle) error {
		var err error
		data, err = s.accountData(h, accountID)
		return err
	})
	return data, err
}

func (s *Session) accountData(h *consensus.Handle, accountID identifier.ID) (*AccountData, error) {
	p := &message.IDPayload{ID: accountID}
	reply, err := s.request(h, message.GetAccountData, p.Pack(), 0)
	if nil != err {
		return nil, err
	}
	if !reply.Success {
		return nil, rejected(reply)
	}
	r, err := message.UnpackAccountData(reply.Payload)
	if nil != err {
		return nil, err
	}

	data := &AccountData{}
	data.Account, err = account.Unpack(r.Account, s.notary)
	if nil != err {
		return nil, err
	}
	if data.Account.ID != accountID || data.Account.OwnerNymID != s.nym.ID() {
		return nil, fault.ErrReplyMismatch
	}
	data.Unit, err = account.UnpackUnit(r.Unit, s.notary)
	if nil != err {
		return nil, err
	}
	data.Inbox, err = s.accountBox(r.Inbox, ledger.Inbox, accountID)
	if nil != err {
		return nil, err
	}
	err = data.Inbox.LoadBoxReceipts(func(n uint64) ([]byte, error) {
		record, ok := r.Receipts[n]
		if !ok {
			return nil, fault.ErrBoxReceiptNotFound
		}
		return record, nil
	}, s.notary)
	if nil != err {
		return nil, err
	}
	data.Outbox, err = s.accountBox(r.Outbox, ledger.Outbox, accountID)
	if nil != err {
		return nil, err
	}
	return data, nil
}

func (s *Session) accountBox(record []byte, kind ledger.BoxKind, accountID identifier.ID) (*ledger.Box, error) {
	b, err := ledger.UnpackBox(record, s.notary)
	if nil != err {
		return nil, err
	}
	if b.Kind != kind || b.Subject != accountID || b.NotaryID != s.notary.ID() {
		return nil, fault.ErrReplyMismatch
	}
	return b, nil
}

// builds the items of a transaction from fresh account data, issued
// is the set of issued numbers before the transaction
type itemsBuilder func(data *AccountData, issued []uint64, number uint64) ([]*ledger.Item, error)

// sign and notarize one transaction on accountID
//
// the nymbox is synchronised first so both sides agree on the issued
// numbers the balance statement lists
func (s *Session) notarize(kind ledger.TransactionKind, accountID identifier.ID, build itemsBuilder) (*ledger.Transaction, error) {
	var response *ledger.Transaction
	err := s.run(false, func(h *consensus.Handle) error {
		if _, err := s.syncNymbox(h); nil != err {
			return err
		}
		data, err := s.accountData(h, accountID)
		if nil != err {
			return err
		}

		ctx := h.Context()
		number, ok := ctx.Numbers.NextAvailable()
		if !ok {
			return fault.ErrNoTransactionNumbers
		}
		items, err := build(data, ctx.Numbers.Issued(), number)
		if nil != err {
			return err
		}

		txn := &ledger.Transaction{
			Kind:       kind,
			Number:     number,
			NotaryID:   s.notary.ID(),
			OwnerNymID: s.nym.ID(),
			Account:    accountID,
			Timestamp:  time.Now().Unix(),
			Items:      items,
		}
		record := txn.Sign(s.nym)
		ctx.Numbers.ConsumeAvailable(number)

		s.log.Debugf("notarize: %s  number: %d  account: %s", kind, number, accountID)
		reply, err := s.request(h, message.NotarizeTransaction, (&message.RecordPayload{Record: record}).Pack(), number)
		if nil != err {
			return err
		}
		if !reply.Success {
			return rejected(reply)
		}
		response, err = s.response(reply)
		if nil != err {
			return err
		}
		if response.ReferenceNumber != number {
			return fault.ErrReplyMismatch
		}
		return nil
	})
	return response, err
}

// Transfer - send value from an owned account
//
// the notary's response is returned, its Success reports whether the
// transfer was made
func (s *Session) Transfer(from identifier.ID, to identifier.ID, value amount.Amount, note string) (*ledger.Transaction, error) {
	if value.Sign() <= 0 {
		return nil, fault.ErrZeroOrNegativeAmount
	}
	return s.notarize(ledger.Transfer, from, func(data *AccountData, issued []uint64, number uint64) ([]*ledger.Item, error) {
		transfer := &ledger.Item{
			Kind:   ledger.TransferItem,
			Status: ledger.Request,
			Amount: value,
			From:   from,
			To:     to,
			Note:   note,
		}
		statement := ledger.GenerateBalanceStatement(from, data.Account.Balance.Sub(value), ledger.Without(issued, number), data.Outbox)
		return []*ledger.Item{transfer, statement}, nil
	})
}

// ProcessInbox - accept every receipt in an account's inbox into its
// record box
func (s *Session) ProcessInbox(accountID identifier.ID) (*ledger.Transaction, error) {
	return s.notarize(ledger.ProcessInbox, accountID, func(data *AccountData, issued []uint64, number uint64) ([]*ledger.Item, error) {
		entries := data.Inbox.Entries()
		if 0 == len(entries) {
			return nil, fault.ErrTransactionNotFound
		}
		items := make([]*ledger.Item, 0, len(entries)+1)
		for _, e := range entries {
			receipt := e.Transaction()
			item := &ledger.Item{
				Kind:            ledger.AcceptReceiptItem,
				Status:          ledger.Request,
				ReferenceNumber: e.Number,
			}
			if r := receipt.Item(ledger.ReceiptItem); nil != r {
				item.Amount = r.Amount
			}
			items = append(items, item)
		}
		statement := ledger.GenerateBalanceStatement(accountID, data.Account.Balance, ledger.Without(issued, number), data.Outbox)
		return append(items, statement), nil
	})
}

// PaymentPlan - open a plan paying value every period, count times
//
// the plan's number stays issued until its final receipt is accepted
func (s *Session) PaymentPlan(from identifier.ID, to identifier.ID, value amount.Amount, period time.Duration, count uint64) (*ledger.Transaction, error) {
	if value.Sign() <= 0 {
		return nil, fault.ErrZeroOrNegativeAmount
	}
	terms := ledger.PlanTerms{
		Period: uint64(period / time.Second),
		Count:  count,
	}
	if 0 == terms.Period || 0 == terms.Count || terms.Period > ledger.MaximumPlanPeriod {
		return nil, fault.ErrInvalidPeriod
	}
	return s.notarize(ledger.PaymentPlan, from, func(data *AccountData, issued []uint64, number uint64) ([]*ledger.Item, error) {
		plan := &ledger.Item{
			Kind:       ledger.PaymentPlanItem,
			Status:     ledger.Request,
			Amount:     value,
			From:       from,
			To:         to,
			Attachment: terms.Pack(),
		}
		statement := ledger.GenerateBalanceStatement(from, data.Account.Balance, issued, data.Outbox)
		return []*ledger.Item{plan, statement}, nil
	})
}
