// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/message"
	"github.com/bitmark-inc/notaryd/storage"
)

// nymbox downloads before giving up on a nymbox that keeps changing
const maximumSyncRounds = 4

// SyncResult - what a nymbox sync did
type SyncResult struct {
	Replies  int // lost replies recovered from reply notices
	Messages int // messages moved to the message box
	Issued   int // transaction numbers received
	Closed   int // payment plans finished
}

// SyncNymbox - download the nymbox and accept everything in it
func (s *Session) SyncNymbox() (*SyncResult, error) {
	var result *SyncResult
	err := s.run(false, func(h *consensus.Handle) error {
		var err error
		result, err = s.syncNymbox(h)
		return err
	})
	return result, err
}

func (s *Session) syncNymbox(h *consensus.Handle) (*SyncResult, error) {
	result := &SyncResult{}
	for round := 0; round < maximumSyncRounds; round += 1 {
		box, err := s.nymbox(h)
		if nil != err {
			return nil, err
		}

		ctx := h.Context()
		accept := []uint64{}
		notices := []uint64{}
		for _, e := range box.Entries() {
			t := e.Transaction()
			switch e.Kind {
			case ledger.ReplyNotice:
				notices = append(notices, e.ReferenceNumber)
				if ctx.Numbers.VerifyAcknowledgedNumber(e.ReferenceNumber) {
					continue
				}
				if err := s.replyNotice(ctx, t); nil != err {
					s.log.Warnf("reply notice: %d  ref: %d  error: %s", e.Number, e.ReferenceNumber, err)
				} else {
					result.Replies += 1
				}
				ctx.Numbers.AddAcknowledgedNumber(e.ReferenceNumber)

			case ledger.Message:
				if err := s.archive(t); nil != err {
					return nil, err
				}
				result.Messages += 1
				accept = append(accept, e.Number)

			case ledger.NumbersNotice:
				if item := t.Item(ledger.NoticeItem); nil != item {
					result.Issued += len(item.Numbers)
				}
				accept = append(accept, e.Number)

			case ledger.FinalReceipt:
				result.Closed += 1
				accept = append(accept, e.Number)

			default:
				s.log.Warnf("nymbox: unexpected %s: %d", e.Kind, e.Number)
			}
		}
		ctx.Numbers.FinishAcknowledgements(notices)
		ctx.LocalNymboxHash = box.NymboxHash()

		if 0 == len(accept) {
			return result, nil
		}

		p := &message.NumbersPayload{Numbers: accept}
		reply, err := s.request(h, message.ProcessNymbox, p.Pack(), 0)
		if fault.ErrNymboxHashMismatch == err {
			continue
		}
		if nil != err {
			return nil, err
		}
		if !reply.Success {
			return nil, rejected(reply)
		}
	}
	return nil, fault.ErrNymboxHashMismatch
}

// download and verify the nymbox with all its receipts
func (s *Session) nymbox(h *consensus.Handle) (*ledger.Box, error) {
	reply, err := s.request(h, message.GetNymbox, nil, 0)
	if nil != err {
		return nil, err
	}
	if !reply.Success {
		return nil, rejected(reply)
	}
	p, err := message.UnpackBox(reply.Payload)
	if nil != err {
		return nil, err
	}
	box, err := ledger.UnpackBox(p.Box, s.notary)
	if nil != err {
		return nil, err
	}
	if ledger.Nymbox != box.Kind || box.Subject != s.nym.ID() || box.NotaryID != s.notary.ID() {
		return nil, fault.ErrReplyMismatch
	}
	err = box.LoadBoxReceipts(func(n uint64) ([]byte, error) {
		record, ok := p.Receipts[n]
		if !ok {
			return nil, fault.ErrBoxReceiptNotFound
		}
		return record, nil
	}, s.notary)
	if nil != err {
		return nil, err
	}
	return box, nil
}

// apply the reply carried by a reply notice
func (s *Session) replyNotice(ctx *consensus.Context, t *ledger.Transaction) error {
	item := t.Item(ledger.NoticeItem)
	if nil == item {
		return fault.ErrMissingParameters
	}
	reply, err := message.Unpack(item.Attachment)
	if nil != err {
		return err
	}
	if err := reply.Verify(s.notary); nil != err {
		return err
	}
	if reply.NymID != s.nym.ID() || reply.RequestNumber != t.ReferenceNumber {
		return fault.ErrReplyMismatch
	}
	number := s.pending[reply.RequestNumber]
	delete(s.pending, reply.RequestNumber)
	s.log.Infof("recovered reply: %s  request: %d  success: %t", reply.Command, reply.RequestNumber, reply.Success)
	return s.apply(ctx, reply, number)
}

// copy a notary signed message into the local message box
func (s *Session) archive(t *ledger.Transaction) error {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		return err
	}
	defer trx.Abort()

	b, _, err := s.boxes.LoadOrGenerate(trx, ledger.MessageBox, s.nym.ID(), s.nym.ID(), s.nym)
	if nil != err {
		return err
	}
	if _, ok := b.Entry(t.Number); ok {
		return nil
	}
	if err := b.AddTransaction(t); nil != err {
		return err
	}
	s.boxes.Save(trx, b, s.nym)
	return trx.Commit()
}

// Messages - everything in the local message box, oldest first
func (s *Session) Messages() ([]*ledger.Transaction, error) {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		return nil, err
	}
	defer trx.Abort()

	b, err := s.boxes.Load(trx, ledger.MessageBox, s.nym.ID(), s.nym.ID(), s.nym)
	if fault.ErrBoxNotFound == err {
		return []*ledger.Transaction{}, nil
	}
	if nil != err {
		return nil, err
	}
	if err := s.boxes.LoadBoxReceipts(trx, b, s.notary); nil != err {
		return nil, err
	}
	messages := make([]*ledger.Transaction, 0, b.Count())
	for _, e := range b.Entries() {
		messages = append(messages, e.Transaction())
	}
	return messages, nil
}

// SendMessage - deliver text to another nym's nymbox
func (s *Session) SendMessage(to identifier.ID, text string) error {
	return s.run(false, func(h *consensus.Handle) error {
		p := &message.NymMessagePayload{To: to, Text: text}
		reply, err := s.request(h, message.SendNymMessage, p.Pack(), 0)
		if nil != err {
			return err
		}
		if !reply.Success {
			return rejected(reply)
		}
		return nil
	})
}

// Numbers - obtain count more transaction numbers, returns every
// number now available
//
// numbers are only usable after the nymbox notice is accepted so the
// nymbox is synchronised before and after the request
func (s *Session) Numbers(count int) ([]uint64, error) {
	var available []uint64
	err := s.run(false, func(h *consensus.Handle) error {
		if _, err := s.syncNymbox(h); nil != err {
			return err
		}
		p := &message.CountPayload{Count: uint64(count)}
		reply, err := s.request(h, message.GetTransactionNumbers, p.Pack(), 0)
		if nil != err {
			return err
		}
		if !reply.Success {
			return rejected(reply)
		}
		if _, err := s.syncNymbox(h); nil != err {
			return err
		}
		available = h.Context().Numbers.Available()
		return nil
	})
	return available, err
}
