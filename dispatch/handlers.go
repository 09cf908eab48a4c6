// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/message"
	"github.com/bitmark-inc/notaryd/notary"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

// run one sequenced command and return the reply payload
func (d *Dispatcher) handle(trx storage.Transaction, ctx *consensus.Context, client *nym.Nym, request *message.Message) ([]byte, error) {
	nymID := request.NymID

	switch request.Command {

	case message.PingNotary:
		return nil, nil

	case message.GetTransactionNumbers:
		p, err := message.UnpackCount(request.Payload)
		if nil != err {
			return nil, err
		}
		if p.Count > notary.MaximumIssue {
			return nil, fault.ErrInvalidCount
		}
		numbers, err := d.engine.IssueNumbers(trx, ctx, int(p.Count))
		if nil != err {
			return nil, err
		}
		return (&message.NumbersPayload{Numbers: numbers}).Pack(), nil

	case message.GetNymbox:
		box, receipts, err := d.engine.BoxRecords(trx, ledger.Nymbox, nymID, nymID)
		if nil != err {
			return nil, err
		}
		return (&message.BoxPayload{Box: box, Receipts: receipts}).Pack(), nil

	case message.GetBoxReceipt:
		p, err := message.UnpackBoxReceipt(request.Payload)
		if nil != err {
			return nil, err
		}
		record, err := d.engine.BoxReceipt(trx, ledger.BoxKind(p.Kind), nymID, p.Subject, p.Number)
		if nil != err {
			return nil, err
		}
		return (&message.RecordPayload{Record: record}).Pack(), nil

	case message.ProcessNymbox:
		p, err := message.UnpackNumbers(request.Payload)
		if nil != err {
			return nil, err
		}
		result, err := d.engine.ProcessNymbox(trx, ctx, p.Numbers)
		if nil != err {
			return nil, err
		}
		return (&message.NymboxResultPayload{
			Issued: result.Issued,
			Closed: result.Closed,
		}).Pack(), nil

	case message.RegisterUnit:
		p, err := message.UnpackUnit(request.Payload)
		if nil != err {
			return nil, err
		}
		u, a, err := d.engine.RegisterUnit(trx, nymID, p.Name, p.Symbol, p.DecimalPower)
		if nil != err {
			return nil, err
		}
		return (&message.UnitReplyPayload{
			Unit:    u.Sign(d.engine.Notary()),
			Account: a.Sign(d.engine.Notary()),
		}).Pack(), nil

	case message.RegisterAccount:
		p, err := message.UnpackID(request.Payload)
		if nil != err {
			return nil, err
		}
		a, err := d.engine.RegisterAccount(trx, nymID, p.ID)
		if nil != err {
			return nil, err
		}
		return (&message.RecordPayload{Record: a.Sign(d.engine.Notary())}).Pack(), nil

	case message.GetAccountData:
		p, err := message.UnpackID(request.Payload)
		if nil != err {
			return nil, err
		}
		data, err := d.engine.GetAccountData(trx, nymID, p.ID)
		if nil != err {
			return nil, err
		}
		return (&message.AccountDataPayload{
			Account:  data.Account,
			Unit:     data.Unit,
			Inbox:    data.Inbox,
			Outbox:   data.Outbox,
			Receipts: data.Receipts,
		}).Pack(), nil

	case message.NotarizeTransaction:
		p, err := message.UnpackRecord(request.Payload)
		if nil != err {
			return nil, err
		}
		txn, err := ledger.UnpackTransaction(p.Record, client)
		if nil != err {
			return nil, err
		}
		response, err := d.engine.Notarize(trx, ctx, txn)
		if nil != err {
			return nil, err
		}
		return (&message.RecordPayload{Record: response.Record()}).Pack(), nil

	case message.SendNymMessage:
		p, err := message.UnpackNymMessage(request.Payload)
		if nil != err {
			return nil, err
		}
		_, err = d.engine.SendMessage(trx, nymID, p.To, p.Text)
		return nil, err

	case message.AdjustUsageCredits:
		if !d.credits.isAdmin(nymID) {
			return nil, fault.ErrNotAdministrator
		}
		p, err := message.UnpackCredits(request.Payload)
		if nil != err {
			return nil, err
		}
		if !d.nyms.exists(trx, p.NymID) {
			return nil, fault.ErrNotRegistered
		}
		p.Balance = d.credits.adjust(trx, p.NymID, p.Adjustment)
		d.log.Infof("nym: %s  credits adjusted by: %d  to: %d", p.NymID, p.Adjustment, p.Balance)
		return p.Pack(), nil

	default:
		return nil, fault.ErrInvalidCommand
	}
}
