// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package dispatch - authenticate, sequence and route client messages
package dispatch

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/message"
	"github.com/bitmark-inc/notaryd/mode"
	"github.com/bitmark-inc/notaryd/notary"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

// Configuration - dispatch options
type Configuration struct {
	Administrators []identifier.ID
	UsageCredits   bool
	InitialCredits uint64
}

// Dispatcher - processes signed requests for one notary
type Dispatcher struct {
	log      *logger.L
	engine   *notary.Engine
	contexts *consensus.Store
	nyms     *registry
	credits  *credits
}

// New - dispatcher for engine, storage must be initialised
func New(engine *notary.Engine, configuration *Configuration) *Dispatcher {
	admins := make(map[identifier.ID]struct{})
	for _, id := range configuration.Administrators {
		admins[id] = struct{}{}
	}
	return &Dispatcher{
		log:      logger.New("dispatch"),
		engine:   engine,
		contexts: consensus.NewStore(storage.Pool.Contexts, engine.Notary(), engine.ID()),
		nyms:     newRegistry(storage.Pool.Nyms),
		credits: &credits{
			pool:    storage.Pool.Credits,
			enabled: configuration.UsageCredits,
			initial: configuration.InitialCredits,
			admins:  admins,
		},
	}
}

// Contexts - the notary's contexts with its clients
func (d *Dispatcher) Contexts() *consensus.Store {
	return d.contexts
}

// Process - handle one packed request and return the signed reply
//
// an error means no reply could be trusted by the sender, nothing was
// changed; every other outcome, including rejection, is a signed reply
func (d *Dispatcher) Process(packed []byte) ([]byte, error) {
	if !mode.Is(mode.Normal) {
		return nil, fault.ErrNotNormalMode
	}

	request, err := message.Unpack(packed)
	if nil != err {
		d.log.Warnf("unpack error: %s", err)
		return nil, err
	}
	if !request.Command.IsRequest() {
		return nil, fault.ErrInvalidCommand
	}
	if request.NotaryID != d.engine.ID() {
		return nil, fault.ErrIncorrectNotary
	}

	d.log.Debugf("nym: %s  command: %s  request: %d", request.NymID, request.Command, request.RequestNumber)

	if message.RegisterNym == request.Command {
		return d.registerNym(request)
	}

	client, err := d.nyms.lookup(request.NymID)
	if nil != err {
		return nil, err
	}
	if err := request.Verify(client); nil != err {
		d.log.Warnf("nym: %s  command: %s  signature error: %s", request.NymID, request.Command, err)
		return nil, err
	}

	if message.GetRequestNumber == request.Command {
		return d.getRequestNumber(request)
	}
	return d.process(request, client)
}

// the sequenced path for all non-bootstrap commands
func (d *Dispatcher) process(request *message.Message, client *nym.Nym) ([]byte, error) {
	h, err := d.acquire(request.NymID, false)
	if nil != err {
		return nil, err
	}
	defer h.Release()
	ctx := h.Context()

	reply := message.NewReply(request)

	expected := ctx.Numbers.RequestNumber()
	if request.RequestNumber != expected {
		d.log.Warnf("nym: %s  request number: %d  expected: %d", request.NymID, request.RequestNumber, expected)
		reply.NymboxHash = ctx.LocalNymboxHash
		return d.reject(reply, fault.ErrIncorrectRequestNumber), nil
	}

	d.engine.Lock()
	defer d.engine.Unlock()

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return nil, err
	}
	defer trx.Abort()

	if request.Command.ChecksNymboxHash() {
		hash, err := d.engine.NymboxHash(trx, request.NymID)
		if nil != err {
			return nil, err
		}
		ctx.LocalNymboxHash = hash
		ctx.RemoteNymboxHash = request.NymboxHash
		if !ctx.NymboxHashMatch() {
			d.log.Warnf("nym: %s  nymbox hash: %s  expected: %s", request.NymID, request.NymboxHash, hash)
			reply.NymboxHash = hash
			return d.reject(reply, fault.ErrNymboxHashMismatch), nil
		}
	}

	// the request is now consumed whatever the outcome
	ctx.Numbers.IncrementRequest()

	if err := d.credits.charge(trx, request.NymID); nil != err {
		d.log.Warnf("nym: %s  command: %s  %s", request.NymID, request.Command, err)
		reply.Fail(err)
		return d.finish(trx, h, request, reply, false)
	}

	err = d.acknowledge(trx, ctx, request.Acknowledged)
	if nil != err {
		return nil, err
	}

	saved := ctx.Numbers.Clone()
	payload, err := d.handle(trx, ctx, client, request)
	if nil != err {
		d.log.Infof("nym: %s  command: %s  failed: %s", request.NymID, request.Command, err)
		ctx.Numbers = saved
		reply.Fail(err)
	} else {
		reply.Success = true
		reply.Payload = payload
	}
	return d.finish(trx, h, request, reply, request.Command.DropsReplyNotice())
}

func (d *Dispatcher) acquire(nymID identifier.ID, create bool) (*consensus.Handle, error) {
	h, err := d.contexts.Acquire(nymID, create)
	if fault.ErrContextNotFound == err {
		return nil, fault.ErrNotRegistered
	}
	return h, err
}

// apply the client's list of replies it has seen
//
// their notices leave the nymbox and the notary's set follows the
// client's so that both sides converge
func (d *Dispatcher) acknowledge(trx storage.Transaction, ctx *consensus.Context, acknowledged []uint64) error {
	_, err := d.engine.RemoveReplyNotices(trx, ctx.RemoteNymID, acknowledged)
	if nil != err {
		return err
	}
	for _, n := range acknowledged {
		ctx.Numbers.AddAcknowledgedNumber(n)
	}
	ctx.Numbers.FinishAcknowledgements(acknowledged)
	return nil
}

// sign a rejection that changes nothing
func (d *Dispatcher) reject(reply *message.Message, err error) []byte {
	reply.Fail(err)
	return reply.Sign(d.engine.Notary())
}

// sign the reply, optionally drop it into the nymbox, then commit the
// context and all staged writes at once
func (d *Dispatcher) finish(trx storage.Transaction, h *consensus.Handle, request *message.Message, reply *message.Message, dropNotice bool) ([]byte, error) {
	ctx := h.Context()

	hash, err := d.engine.NymboxHash(trx, request.NymID)
	if nil != err {
		return nil, err
	}
	ctx.LocalNymboxHash = hash
	ctx.RemoteNymboxHash = request.NymboxHash

	reply.NymboxHash = hash
	reply.Acknowledged = ctx.Numbers.Acknowledged()
	record := reply.Sign(d.engine.Notary())

	if dropNotice {
		_, err := d.engine.DropNotice(trx, request.NymID, ledger.ReplyNotice, request.RequestNumber, &ledger.Item{
			Kind:       ledger.NoticeItem,
			Status:     ledger.StatusOf(reply.Success),
			Attachment: record,
		})
		if nil != err {
			return nil, err
		}
	}

	h.Stage(trx)
	if err := trx.Commit(); nil != err {
		d.log.Errorf("nym: %s  request: %d  commit error: %s", request.NymID, request.RequestNumber, err)
		return nil, fault.ErrPersistenceFailed
	}
	h.Commit()
	return record, nil
}
