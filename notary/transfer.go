// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/storage"
)

// TransferRequest - movement of value between two accounts
type TransferRequest struct {
	Kind            ledger.TransactionKind // TransferReceipt or PaymentReceipt
	SenderNymID     identifier.ID
	From            identifier.ID
	To              identifier.ID
	Amount          amount.Amount
	ReferenceNumber uint64 // the client transaction or plan number
	Note            string
}

// TransferResult - outcome of a transfer that reached the number
// allocation stage
type TransferResult struct {
	Number           uint64
	Success          bool
	Sender           *account.Account
	Recipient        *account.Account
	SenderReceipt    *ledger.Transaction
	RecipientReceipt *ledger.Transaction
}

// Transfer - debit From and credit To
//
// validation failures return an error and stage nothing, otherwise
// a receipt under one new number goes into both inboxes whatever the
// outcome and the accounts are only staged when both sides applied
//
// the engine must be locked
func (e *Engine) Transfer(trx storage.Transaction, req *TransferRequest) (*TransferResult, error) {
	if ledger.TransferReceipt != req.Kind && ledger.PaymentReceipt != req.Kind {
		return nil, fault.ErrInvalidTransactionKind
	}
	if req.Amount.Sign() <= 0 {
		return nil, fault.ErrZeroOrNegativeAmount
	}
	if req.From == req.To {
		return nil, fault.ErrAccountsNotDistinct
	}

	sender, err := e.accounts.LoadOwned(trx, req.From, req.SenderNymID)
	if nil != err {
		return nil, err
	}
	recipient, err := e.accounts.Load(trx, req.To)
	if nil != err {
		return nil, err
	}
	if sender.UnitID != recipient.UnitID {
		return nil, fault.ErrUnitMismatch
	}

	senderInbox, _, err := e.boxes.LoadOrGenerate(trx, ledger.Inbox, sender.OwnerNymID, sender.ID, e.notary)
	if nil != err {
		return nil, err
	}
	recipientInbox, _, err := e.boxes.LoadOrGenerate(trx, ledger.Inbox, recipient.OwnerNymID, recipient.ID, e.notary)
	if nil != err {
		return nil, err
	}

	number := e.transactor.Next(trx)

	// both mutations are applied to copies, the originals stand for
	// the rolled back state
	debited := sender.Copy()
	credited := recipient.Copy()
	success := debited.Debit(req.Amount)
	if success {
		if !e.credit(credited, req.Amount) {
			if !debited.Credit(req.Amount) {
				logger.Panicf("notary: rollback of debit failed for account: %s", sender.ID)
			}
			success = false
		}
	}

	receipt := func(owner identifier.ID, subject identifier.ID) *ledger.Transaction {
		return e.newTransaction(req.Kind, number, req.ReferenceNumber, owner, subject, &ledger.Item{
			Kind:            ledger.ReceiptItem,
			Status:          ledger.StatusOf(success),
			Amount:          req.Amount,
			From:            req.From,
			To:              req.To,
			ReferenceNumber: req.ReferenceNumber,
			Note:            req.Note,
		})
	}
	senderReceipt := receipt(sender.OwnerNymID, sender.ID)
	recipientReceipt := receipt(recipient.OwnerNymID, recipient.ID)

	e.mustAdd(senderInbox, senderReceipt)
	e.mustAdd(recipientInbox, recipientReceipt)
	e.boxes.Save(trx, senderInbox, e.notary)
	e.boxes.Save(trx, recipientInbox, e.notary)

	result := &TransferResult{
		Number:           number,
		Success:          success,
		Sender:           sender,
		Recipient:        recipient,
		SenderReceipt:    senderReceipt,
		RecipientReceipt: recipientReceipt,
	}
	if success {
		e.accounts.Save(trx, debited)
		e.accounts.Save(trx, credited)
		result.Sender = debited
		result.Recipient = credited
	}

	e.log.Infof("transfer: %d  ref: %d  %s -> %s  amount: %s  success: %t", number, req.ReferenceNumber, req.From, req.To, req.Amount.Unscaled(), success)
	return result, nil
}
