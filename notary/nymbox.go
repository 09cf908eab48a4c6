// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/storage"
)

// maximum numbers handed out by one request
const MaximumIssue = 100

// GenerateNymbox - create the nymbox of a newly registered nym
func (e *Engine) GenerateNymbox(trx storage.Transaction, nymID identifier.ID) error {
	_, _, err := e.boxes.LoadOrGenerate(trx, ledger.Nymbox, nymID, nymID, e.notary)
	return err
}

// Nymbox - the nymbox of a registered nym
func (e *Engine) Nymbox(trx storage.Transaction, nymID identifier.ID) (*ledger.Box, error) {
	b, err := e.boxes.Load(trx, ledger.Nymbox, nymID, e.notary.ID(), e.notary)
	if fault.ErrBoxNotFound == err {
		return nil, fault.ErrNymNotFound
	}
	return b, err
}

// NymboxHash - the current nymbox hash of a registered nym
func (e *Engine) NymboxHash(trx storage.Transaction, nymID identifier.ID) (identifier.ID, error) {
	b, err := e.Nymbox(trx, nymID)
	if nil != err {
		return identifier.Zero, err
	}
	return b.NymboxHash(), nil
}

// DropNotice - put a new notary signed transaction into a nymbox
func (e *Engine) DropNotice(trx storage.Transaction, nymID identifier.ID, kind ledger.TransactionKind, reference uint64, item *ledger.Item) (*ledger.Transaction, error) {
	b, err := e.Nymbox(trx, nymID)
	if nil != err {
		return nil, err
	}
	t := e.newTransaction(kind, e.transactor.Next(trx), reference, nymID, nymID, item)
	e.mustAdd(b, t)
	e.boxes.Save(trx, b, e.notary)
	e.log.Debugf("nym: %s  drop: %s  number: %d  ref: %d", nymID, kind, t.Number, reference)
	return t, nil
}

// IssueNumbers - allocate transaction numbers to the remote nym of a
// context and notify them through the nymbox
func (e *Engine) IssueNumbers(trx storage.Transaction, ctx *consensus.Context, count int) ([]uint64, error) {
	if count <= 0 || count > MaximumIssue {
		return nil, fault.ErrInvalidCount
	}
	numbers := make([]uint64, count)
	for i := 0; i < count; i += 1 {
		numbers[i] = e.transactor.Next(trx)
		if !ctx.Numbers.IssueNumber(numbers[i]) {
			e.log.Criticalf("nym: %s  fresh number: %d already issued", ctx.RemoteNymID, numbers[i])
			return nil, fault.ErrCannotAllocateTransactionNo
		}
	}
	_, err := e.DropNotice(trx, ctx.RemoteNymID, ledger.NumbersNotice, 0, &ledger.Item{
		Kind:    ledger.NoticeItem,
		Status:  ledger.Acknowledgement,
		Numbers: numbers,
	})
	if nil != err {
		return nil, err
	}
	return numbers, nil
}

// SendMessage - deliver a note from one nym to another
func (e *Engine) SendMessage(trx storage.Transaction, fromNymID identifier.ID, toNymID identifier.ID, text string) (*ledger.Transaction, error) {
	return e.DropNotice(trx, toNymID, ledger.Message, 0, &ledger.Item{
		Kind:   ledger.NoticeItem,
		Status: ledger.Acknowledgement,
		From:   fromNymID,
		To:     toNymID,
		Note:   text,
	})
}

// NymboxResult - what processing a nymbox did to the remote nym's
// numbers
type NymboxResult struct {
	Issued []uint64 // from accepted numbers notices
	Closed []uint64 // plan numbers of accepted final receipts
}

// ProcessNymbox - remove accepted entries from the nymbox of the
// remote nym of a context
//
// accepting a final receipt closes the plan's transaction number,
// nothing changes unless every number is present
func (e *Engine) ProcessNymbox(trx storage.Transaction, ctx *consensus.Context, numbers []uint64) (*NymboxResult, error) {
	if 0 == len(numbers) {
		return nil, fault.ErrMissingParameters
	}
	b, err := e.Nymbox(trx, ctx.RemoteNymID)
	if nil != err {
		return nil, err
	}

	seen := make(map[uint64]struct{})
	for _, n := range numbers {
		if _, ok := seen[n]; ok {
			return nil, fault.ErrDuplicateTransaction
		}
		seen[n] = struct{}{}
		if _, ok := b.Entry(n); !ok {
			return nil, fault.ErrTransactionNotFound
		}
	}
	err = e.boxes.LoadBoxReceipts(trx, b, e.notary)
	if nil != err {
		return nil, err
	}

	result := &NymboxResult{
		Issued: []uint64{},
		Closed: []uint64{},
	}
	for _, n := range numbers {
		entry, _ := b.Entry(n)
		switch entry.Kind {
		case ledger.NumbersNotice:
			if item := entry.Transaction().Item(ledger.NoticeItem); nil != item {
				result.Issued = append(result.Issued, item.Numbers...)
			}
		case ledger.FinalReceipt:
			if !ctx.Numbers.ConsumeIssued(entry.ReferenceNumber) {
				e.log.Warnf("nym: %s  final receipt: %d  plan number: %d not issued", ctx.RemoteNymID, n, entry.ReferenceNumber)
			}
			result.Closed = append(result.Closed, entry.ReferenceNumber)
		}
		if err := b.RemoveTransaction(n); nil != err {
			return nil, err
		}
	}
	e.boxes.Save(trx, b, e.notary)
	return result, nil
}

// RemoveReplyNotices - drop the reply notices of acknowledged requests
//
// returns the number removed
func (e *Engine) RemoveReplyNotices(trx storage.Transaction, nymID identifier.ID, requestNumbers []uint64) (int, error) {
	if 0 == len(requestNumbers) {
		return 0, nil
	}
	b, err := e.Nymbox(trx, nymID)
	if nil != err {
		return 0, err
	}
	removed := 0
	for _, r := range requestNumbers {
		for _, entry := range b.FindByReference(ledger.ReplyNotice, r) {
			if err := b.RemoveTransaction(entry.Number); nil != err {
				return 0, err
			}
			removed += 1
		}
	}
	if removed > 0 {
		e.boxes.Save(trx, b, e.notary)
	}
	return removed, nil
}

// ClearNotices - drop every reply notice and numbers notice from a
// nymbox, messages and final receipts stay
//
// used when a context is reset, the notices refer to request numbers
// and transaction numbers that no longer exist
func (e *Engine) ClearNotices(trx storage.Transaction, nymID identifier.ID) (int, error) {
	b, err := e.Nymbox(trx, nymID)
	if nil != err {
		return 0, err
	}
	removed := 0
	for _, entry := range b.Entries() {
		if ledger.ReplyNotice != entry.Kind && ledger.NumbersNotice != entry.Kind {
			continue
		}
		if err := b.RemoveTransaction(entry.Number); nil != err {
			return 0, err
		}
		removed += 1
	}
	if removed > 0 {
		e.boxes.Save(trx, b, e.notary)
	}
	return removed, nil
}
