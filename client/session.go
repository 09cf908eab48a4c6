// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/message"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

// RejectedError - the notary processed a request and refused it
type RejectedError struct {
	Command message.Command
	Reason  string
}

func (e *RejectedError) Error() string {
	return e.Command.String() + ": " + e.Reason
}

// IsRejected - true if err is a rejection with the reason of target
func IsRejected(err error, target error) bool {
	r, ok := err.(*RejectedError)
	return ok && r.Reason == target.Error()
}

// Session - one client nym talking to one notary
type Session struct {
	log       *logger.L
	nym       *nym.PrivateNym
	notary    *nym.Nym
	transport Transport
	contexts  *consensus.Store
	boxes     *ledger.Store

	// request number -> transaction number of requests whose reply
	// was lost, only touched while the context is held
	pending map[uint64]uint64
}

// New - session for client with notary
func New(client *nym.PrivateNym, notary *nym.Nym, transport Transport) *Session {
	return &Session{
		log:       logger.New("client"),
		nym:       client,
		notary:    notary,
		transport: transport,
		contexts:  consensus.NewStore(storage.Pool.Contexts, client, notary.ID()),
		boxes:     ledger.NewStore(storage.Pool.Boxes, storage.Pool.BoxReceipts),
		pending:   make(map[uint64]uint64),
	}
}

// ID - the client nym
func (s *Session) ID() identifier.ID {
	return s.nym.ID()
}

// NotaryID - the notary nym
func (s *Session) NotaryID() identifier.ID {
	return s.notary.ID()
}

// Context - a copy of the current context
func (s *Session) Context() (*consensus.Context, error) {
	var c *consensus.Context
	err := s.contexts.View(s.notary.ID(), func(ctx *consensus.Context) error {
		c = ctx.Clone()
		return nil
	})
	if fault.ErrContextNotFound == err {
		return nil, fault.ErrNotRegistered
	}
	return c, err
}

// run f with the context held, then save the context whatever the
// outcome since it only ever follows signed replies
//
// a context created for f is only kept if f succeeds
func (s *Session) run(create bool, f func(h *consensus.Handle) error) error {
	h, err := s.contexts.Acquire(s.notary.ID(), create)
	if fault.ErrContextNotFound == err {
		return fault.ErrNotRegistered
	}
	if nil != err {
		return err
	}
	defer h.Release()

	err = f(h)
	if nil != err && create {
		return err
	}

	trx, terr := storage.NewDBTransaction()
	if nil != terr {
		return terr
	}
	h.Stage(trx)
	if terr := trx.Commit(); nil != terr {
		s.log.Errorf("context commit error: %s", terr)
		return fault.ErrPersistenceFailed
	}
	h.Commit()
	return err
}

func (s *Session) newRequest(ctx *consensus.Context, command message.Command, payload []byte) *message.Message {
	request := message.NewRequest(command, s.nym.ID(), s.notary.ID(), ctx.Numbers.RequestNumber(), payload)
	request.NymboxHash = ctx.LocalNymboxHash
	request.Acknowledged = ctx.Numbers.Acknowledged()
	return request
}

// sign and send, the reply must be signed by the notary and answer
// this request
func (s *Session) exchange(request *message.Message) (*message.Message, error) {
	record, err := s.transport.Send(request.Sign(s.nym))
	if nil != err {
		return nil, err
	}
	reply, err := message.Unpack(record)
	if nil != err {
		return nil, err
	}
	if err := reply.Verify(s.notary); nil != err {
		return nil, err
	}
	if err := s.matches(request, reply); nil != err {
		return nil, err
	}
	return reply, nil
}

func (s *Session) matches(request *message.Message, reply *message.Message) error {
	expected, _ := request.Command.Reply()
	if reply.Command != expected ||
		reply.NymID != s.nym.ID() ||
		reply.NotaryID != s.notary.ID() ||
		reply.RequestNumber != request.RequestNumber {
		return fault.ErrReplyMismatch
	}
	return nil
}

// a rejection at the gate leaves the request number unused
func consumed(reply *message.Message) bool {
	if reply.Success {
		return true
	}
	switch reply.Reason {
	case fault.ErrIncorrectRequestNumber.Error(), fault.ErrNymboxHashMismatch.Error():
		return false
	}
	return true
}

func rejected(reply *message.Message) error {
	switch reply.Reason {
	case fault.ErrIncorrectRequestNumber.Error():
		return fault.ErrIncorrectRequestNumber
	case fault.ErrNymboxHashMismatch.Error():
		return fault.ErrNymboxHashMismatch
	}
	return &RejectedError{
		Command: reply.Command,
		Reason:  reply.Reason,
	}
}

// fetch the request number the notary expects and adopt it
func (s *Session) resync(h *consensus.Handle) (uint64, error) {
	ctx := h.Context()
	reply, err := s.exchange(s.newRequest(ctx, message.GetRequestNumber, nil))
	if nil != err {
		return 0, err
	}
	if !reply.Success {
		return 0, rejected(reply)
	}
	p, err := message.UnpackNumber(reply.Payload)
	if nil != err {
		return 0, err
	}
	if p.Number != ctx.Numbers.RequestNumber() {
		s.log.Infof("request number: %d  notary expects: %d", ctx.Numbers.RequestNumber(), p.Number)
	}
	ctx.Numbers.SetRequestNumber(p.Number)
	ctx.RemoteNymboxHash = reply.NymboxHash
	return p.Number, nil
}

// send a sequenced request
//
// number is the transaction number carried by the request, zero if
// none; it was consumed locally by the caller and is recovered here
// whenever the notary cannot have seen it
func (s *Session) call(h *consensus.Handle, command message.Command, payload []byte, number uint64) (*message.Message, error) {
	ctx := h.Context()
	request := s.newRequest(ctx, command, payload)

	reply, err := s.exchange(request)
	if nil != err {
		s.log.Warnf("request: %d  %s  no reply: %s", request.RequestNumber, command, err)
		s.lost(h, request, number)
		return nil, err
	}

	if !consumed(reply) {
		s.log.Debugf("request: %d  %s  refused: %s", request.RequestNumber, command, reply.Reason)
		if 0 != number {
			ctx.Numbers.RecoverAvailable(number)
		}
		if fault.ErrNymboxHashMismatch.Error() == reply.Reason {
			ctx.RemoteNymboxHash = reply.NymboxHash
		}
		return nil, rejected(reply)
	}

	ctx.Numbers.IncrementRequest()
	ctx.RemoteNymboxHash = reply.NymboxHash
	if command.DropsReplyNotice() {
		ctx.Numbers.AddAcknowledgedNumber(request.RequestNumber)
	}
	if err := s.apply(ctx, reply, number); nil != err {
		s.log.Errorf("request: %d  %s  apply error: %s", request.RequestNumber, command, err)
		return nil, err
	}
	return reply, nil
}

// find out whether a request without a reply reached the notary
//
// if it did its outcome arrives later as a reply notice
func (s *Session) lost(h *consensus.Handle, request *message.Message, number uint64) {
	n, err := s.resync(h)
	if nil != err {
		// unknown, keep the number spent
		s.log.Warnf("request: %d  resync error: %s", request.RequestNumber, err)
		return
	}
	if n == request.RequestNumber {
		if 0 != number {
			h.Context().Numbers.RecoverAvailable(number)
		}
		return
	}
	if 0 != number {
		s.pending[request.RequestNumber] = number
	}
}

// request with a single retry after resynchronising a stale request
// number
func (s *Session) request(h *consensus.Handle, command message.Command, payload []byte, number uint64) (*message.Message, error) {
	reply, err := s.call(h, command, payload, number)
	if fault.ErrIncorrectRequestNumber != err {
		return reply, err
	}
	if _, err := s.resync(h); nil != err {
		return nil, err
	}
	if 0 != number && !h.Context().Numbers.ConsumeAvailable(number) {
		return nil, fault.ErrTransactionNumberNotUsable
	}
	return s.call(h, command, payload, number)
}

// bring the local numbers up to date with a processed request
func (s *Session) apply(ctx *consensus.Context, reply *message.Message, number uint64) error {
	switch reply.Command {

	case message.ProcessNymboxReply:
		if !reply.Success {
			return nil
		}
		p, err := message.UnpackNymboxResult(reply.Payload)
		if nil != err {
			return err
		}
		for _, n := range p.Issued {
			ctx.Numbers.IssueNumber(n)
		}
		for _, n := range p.Closed {
			ctx.Numbers.ConsumeIssued(n)
		}

	case message.NotarizeTransactionReply:
		if !reply.Success {
			// the number was refused before use unless the notary
			// no longer holds it as available
			if 0 != number && fault.ErrTransactionNumberNotUsable.Error() != reply.Reason {
				ctx.Numbers.RecoverAvailable(number)
			}
			return nil
		}
		response, err := s.response(reply)
		if nil != err {
			return err
		}
		if ledger.PaymentPlanResponse == response.Kind && response.Success() {
			return nil
		}
		ctx.Numbers.ConsumeIssued(response.Number)
	}
	return nil
}

func (s *Session) response(reply *message.Message) (*ledger.Transaction, error) {
	p, err := message.UnpackRecord(reply.Payload)
	if nil != err {
		return nil, err
	}
	response, err := ledger.UnpackTransaction(p.Record, s.notary)
	if nil != err {
		return nil, err
	}
	if response.OwnerNymID != s.nym.ID() || response.NotaryID != s.notary.ID() {
		return nil, fault.ErrReplyMismatch
	}
	return response, nil
}

// Register - register the nym and adopt the notary's request number
//
// registering again starts the context over, every transaction number
// held is given up
func (s *Session) Register() error {
	return s.run(true, func(h *consensus.Handle) error {
		ctx := h.Context()
		p := &message.RegisterNymPayload{PublicKey: s.nym.PublicKey()}
		reply, err := s.exchange(s.newRequest(ctx, message.RegisterNym, p.Pack()))
		if nil != err {
			return err
		}
		if !reply.Success {
			return rejected(reply)
		}
		n, err := message.UnpackNumber(reply.Payload)
		if nil != err {
			return err
		}
		ctx.Reset()
		ctx.Numbers.SetRequestNumber(n.Number)
		ctx.RemoteNymboxHash = reply.NymboxHash
		s.pending = make(map[uint64]uint64)
		s.log.Infof("registered with notary: %s  request number: %d", s.notary.ID(), n.Number)
		return nil
	})
}

// RequestNumber - resynchronise with the notary's request number
func (s *Session) RequestNumber() (uint64, error) {
	var n uint64
	err := s.run(false, func(h *consensus.Handle) error {
		var err error
		n, err = s.resync(h)
		return err
	})
	return n, err
}

// Ping - a sequenced no-op
func (s *Session) Ping() error {
	return s.run(false, func(h *consensus.Handle) error {
		reply, err := s.request(h, message.PingNotary, nil, 0)
		if nil != err {
			return err
		}
		if !reply.Success {
			return rejected(reply)
		}
		return nil
	})
}

// AdjustUsageCredits - change another nym's credits, administrators only
func (s *Session) AdjustUsageCredits(nymID identifier.ID, adjustment int64) (uint64, error) {
	var balance uint64
	err := s.run(false, func(h *consensus.Handle) error {
		p := &message.CreditsPayload{NymID: nymID, Adjustment: adjustment}
		reply, err := s.request(h, message.AdjustUsageCredits, p.Pack(), 0)
		if nil != err {
			return err
		}
		if !reply.Success {
			return rejected(reply)
		}
		result, err := message.UnpackCredits(reply.Payload)
		if nil != err {
			return err
		}
		balance = result.Balance
		return nil
	})
	return balance, err
}
