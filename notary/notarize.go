// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/storage"
)

// Notarize - run a client transaction
//
// the transaction number must be available in the context, otherwise
// an error is returned and nothing is staged
//
// once the number is accepted a signed response is always returned,
// its items carry acknowledgement or rejection, and the number is
// closed unless it opened a payment plan that is now running
//
// the engine must be locked and the context held exclusively
func (e *Engine) Notarize(trx storage.Transaction, ctx *consensus.Context, txn *ledger.Transaction) (*ledger.Transaction, error) {
	if txn.NotaryID != e.notary.ID() {
		return nil, fault.ErrIncorrectNotary
	}
	if txn.OwnerNymID != ctx.RemoteNymID || txn.SignerID != ctx.RemoteNymID {
		return nil, fault.ErrAccountNotOwned
	}
	responseKind, ok := txn.Kind.Response()
	if !ok {
		return nil, fault.ErrInvalidTransactionKind
	}
	if !ctx.Numbers.ConsumeAvailable(txn.Number) {
		return nil, fault.ErrTransactionNumberNotUsable
	}

	var items []*ledger.Item
	keepNumber := false
	var err error
	switch txn.Kind {
	case ledger.Transfer:
		items, err = e.notarizeTransfer(trx, ctx, txn)
	case ledger.ProcessInbox:
		items, err = e.notarizeProcessInbox(trx, ctx, txn)
	case ledger.PaymentPlan:
		items, err = e.notarizePaymentPlan(trx, ctx, txn)
		keepNumber = nil == err
	}

	if nil != err {
		e.log.Warnf("nym: %s  transaction: %d  %s  rejected: %s", ctx.RemoteNymID, txn.Number, txn.Kind, err)
		items = rejectAll(txn, err)
	}

	if !keepNumber {
		ctx.Numbers.ConsumeIssued(txn.Number)
	}

	response := e.newTransaction(responseKind, txn.Number, txn.Number, txn.OwnerNymID, txn.Account, items...)
	return response, nil
}

// copies of the request items with success status
func acknowledgeAll(txn *ledger.Transaction, success bool) []*ledger.Item {
	status := ledger.StatusOf(success)
	items := make([]*ledger.Item, len(txn.Items))
	for i, item := range txn.Items {
		items[i] = item.Copy(status)
	}
	return items
}

// rejected copies of the request items plus the reason
func rejectAll(txn *ledger.Transaction, err error) []*ledger.Item {
	items := acknowledgeAll(txn, false)
	return append(items, &ledger.Item{
		Kind:   ledger.NoticeItem,
		Status: ledger.Rejection,
		Note:   err.Error(),
	})
}

// verify the statement submitted with txn against one computed here
func (e *Engine) verifyStatement(trx storage.Transaction, txn *ledger.Transaction, balanceAfter amount.Amount, issuedAfter []uint64) error {
	outbox, _, err := e.boxes.LoadOrGenerate(trx, ledger.Outbox, txn.OwnerNymID, txn.Account, e.notary)
	if nil != err {
		return err
	}
	expected := ledger.GenerateBalanceStatement(txn.Account, balanceAfter, issuedAfter, outbox)
	return ledger.VerifyBalanceStatement(txn.Item(ledger.BalanceStatementItem), expected)
}

func (e *Engine) notarizeTransfer(trx storage.Transaction, ctx *consensus.Context, txn *ledger.Transaction) ([]*ledger.Item, error) {
	item := txn.Item(ledger.TransferItem)
	if nil == item || item.From != txn.Account {
		return nil, fault.ErrMissingParameters
	}
	if item.Amount.Sign() <= 0 {
		return nil, fault.ErrZeroOrNegativeAmount
	}
	sender, err := e.accounts.LoadOwned(trx, txn.Account, txn.OwnerNymID)
	if nil != err {
		return nil, err
	}

	issuedAfter := ledger.Without(ctx.Numbers.Issued(), txn.Number)
	err = e.verifyStatement(trx, txn, sender.Balance.Sub(item.Amount), issuedAfter)
	if nil != err {
		return nil, err
	}

	result, err := e.Transfer(trx, &TransferRequest{
		Kind:            ledger.TransferReceipt,
		SenderNymID:     txn.OwnerNymID,
		From:            item.From,
		To:              item.To,
		Amount:          item.Amount,
		ReferenceNumber: txn.Number,
		Note:            item.Note,
	})
	if nil != err {
		return nil, err
	}
	if !result.Success {
		return rejectAll(txn, fault.ErrInsufficientFunds), nil
	}
	return acknowledgeAll(txn, true), nil
}

func (e *Engine) notarizeProcessInbox(trx storage.Transaction, ctx *consensus.Context, txn *ledger.Transaction) ([]*ledger.Item, error) {
	accepts := txn.ItemsOfKind(ledger.AcceptReceiptItem)
	if 0 == len(accepts) {
		return nil, fault.ErrMissingParameters
	}
	a, err := e.accounts.LoadOwned(trx, txn.Account, txn.OwnerNymID)
	if nil != err {
		return nil, err
	}

	issuedAfter := ledger.Without(ctx.Numbers.Issued(), txn.Number)
	err = e.verifyStatement(trx, txn, a.Balance, issuedAfter)
	if nil != err {
		return nil, err
	}

	inbox, _, err := e.boxes.LoadOrGenerate(trx, ledger.Inbox, a.OwnerNymID, a.ID, e.notary)
	if nil != err {
		return nil, err
	}
	recordBox, _, err := e.boxes.LoadOrGenerate(trx, ledger.RecordBox, a.OwnerNymID, a.ID, e.notary)
	if nil != err {
		return nil, err
	}

	// all or nothing
	seen := make(map[uint64]struct{})
	for _, item := range accepts {
		if _, ok := seen[item.ReferenceNumber]; ok {
			return nil, fault.ErrDuplicateTransaction
		}
		seen[item.ReferenceNumber] = struct{}{}
		if _, ok := inbox.Entry(item.ReferenceNumber); !ok {
			return nil, fault.ErrTransactionNotFound
		}
	}
	err = e.boxes.LoadBoxReceipts(trx, inbox, e.notary)
	if nil != err {
		return nil, err
	}

	for _, item := range accepts {
		entry, _ := inbox.Entry(item.ReferenceNumber)
		receipt := entry.Transaction()
		if err := inbox.RemoveTransaction(receipt.Number); nil != err {
			return nil, err
		}
		e.mustAdd(recordBox, receipt)
	}
	e.boxes.Save(trx, inbox, e.notary)
	e.boxes.Save(trx, recordBox, e.notary)

	return acknowledgeAll(txn, true), nil
}

func (e *Engine) notarizePaymentPlan(trx storage.Transaction, ctx *consensus.Context, txn *ledger.Transaction) ([]*ledger.Item, error) {
	item := txn.Item(ledger.PaymentPlanItem)
	if nil == item || item.From != txn.Account {
		return nil, fault.ErrMissingParameters
	}
	if item.Amount.Sign() <= 0 {
		return nil, fault.ErrZeroOrNegativeAmount
	}
	terms, err := ledger.UnpackPlanTerms(item.Attachment)
	if nil != err {
		return nil, err
	}
	if item.From == item.To {
		return nil, fault.ErrAccountsNotDistinct
	}
	sender, err := e.accounts.LoadOwned(trx, item.From, txn.OwnerNymID)
	if nil != err {
		return nil, err
	}
	recipient, err := e.accounts.Load(trx, item.To)
	if nil != err {
		return nil, err
	}
	if sender.UnitID != recipient.UnitID {
		return nil, fault.ErrUnitMismatch
	}
	if e.plans.Exists(trx, txn.Number) {
		return nil, fault.ErrDuplicateTransaction
	}

	// the plan number stays issued while the plan runs
	err = e.verifyStatement(trx, txn, sender.Balance, ctx.Numbers.Issued())
	if nil != err {
		return nil, err
	}

	plan := &Plan{
		Number:         txn.Number,
		SenderNymID:    txn.OwnerNymID,
		RecipientNymID: recipient.OwnerNymID,
		From:           item.From,
		To:             item.To,
		Amount:         item.Amount,
		Period:         terms.Period,
		Remaining:      terms.Count,
		NextDue:        e.clock().Unix() + int64(terms.Period),
	}
	e.plans.Save(trx, plan)
	e.log.Infof("plan: %d  %s -> %s  count: %d  period: %ds", plan.Number, plan.From, plan.To, plan.Remaining, plan.Period)

	return acknowledgeAll(txn, true), nil
}

// RunPlan - make one payment of a due plan
//
// a finished plan is deleted and a final receipt goes to the sender,
// returns true if the plan finished
//
// the engine must be locked
func (e *Engine) RunPlan(trx storage.Transaction, plan *Plan) (bool, error) {
	success := false
	result, err := e.Transfer(trx, &TransferRequest{
		Kind:            ledger.PaymentReceipt,
		SenderNymID:     plan.SenderNymID,
		From:            plan.From,
		To:              plan.To,
		Amount:          plan.Amount,
		ReferenceNumber: plan.Number,
	})
	if nil == err {
		success = result.Success
	} else {
		// the accounts no longer allow payments so finish early
		e.log.Warnf("plan: %d  transfer error: %s", plan.Number, err)
		plan.Remaining = 1
	}

	if !plan.Advance(success) {
		e.plans.Save(trx, plan)
		return false, nil
	}

	e.plans.Delete(trx, plan.Number)
	_, err = e.DropNotice(trx, plan.SenderNymID, ledger.FinalReceipt, plan.Number, &ledger.Item{
		Kind:            ledger.ReceiptItem,
		Status:          ledger.Acknowledgement,
		Amount:          plan.Amount,
		From:            plan.From,
		To:              plan.To,
		ReferenceNumber: plan.Number,
		Numbers:         []uint64{plan.Paid, plan.Failed},
	})
	if nil != err {
		return false, err
	}
	e.log.Infof("plan: %d  finished  paid: %d  failed: %d", plan.Number, plan.Paid, plan.Failed)
	return true, nil
}
