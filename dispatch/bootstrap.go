// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package dispatch

import (
	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/message"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

// request number expected after registration
const firstRequestNumber = 1

// register a nym, signed by the key it carries
//
// registering again resets the context, both sides start over from
// request number one with no transaction numbers
func (d *Dispatcher) registerNym(request *message.Message) ([]byte, error) {
	p, err := message.UnpackRegisterNym(request.Payload)
	if nil != err {
		return nil, err
	}
	client, err := nym.New(p.PublicKey)
	if nil != err {
		return nil, err
	}
	if client.ID() != request.NymID {
		return nil, fault.ErrInvalidNymAddress
	}
	if err := request.Verify(client); nil != err {
		d.log.Warnf("nym: %s  register signature error: %s", request.NymID, err)
		return nil, err
	}

	h, err := d.acquire(request.NymID, true)
	if nil != err {
		return nil, err
	}
	defer h.Release()

	d.engine.Lock()
	defer d.engine.Unlock()

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return nil, err
	}
	defer trx.Abort()

	ctx := h.Context()
	if d.nyms.exists(trx, request.NymID) {
		ctx.Reset()
		removed, err := d.engine.ClearNotices(trx, request.NymID)
		if nil != err {
			return nil, err
		}
		d.log.Infof("registered again, context reset: %s  notices removed: %d", request.NymID, removed)
	} else {
		d.nyms.save(trx, client)
		d.credits.open(trx, request.NymID)
		if err := d.engine.GenerateNymbox(trx, request.NymID); nil != err {
			return nil, err
		}
		d.log.Infof("registered nym: %s", request.NymID)
	}
	ctx.Numbers.SetRequestNumber(firstRequestNumber)

	reply := message.NewReply(request)
	reply.Success = true
	reply.Payload = (&message.NumberPayload{
		Number: firstRequestNumber,
	}).Pack()
	return d.finish(trx, h, request, reply, false)
}

// report the request number the notary expects next
func (d *Dispatcher) getRequestNumber(request *message.Message) ([]byte, error) {
	var number uint64
	err := d.contexts.View(request.NymID, func(ctx *consensus.Context) error {
		number = ctx.Numbers.RequestNumber()
		return nil
	})
	if fault.ErrContextNotFound == err {
		return nil, fault.ErrNotRegistered
	}
	if nil != err {
		return nil, err
	}

	d.engine.Lock()
	defer d.engine.Unlock()

	trx, err := storage.NewDBTransaction()
	if nil != err {
		return nil, err
	}
	defer trx.Abort()

	hash, err := d.engine.NymboxHash(trx, request.NymID)
	if nil != err {
		return nil, err
	}

	reply := message.NewReply(request)
	reply.Success = true
	reply.NymboxHash = hash
	reply.Payload = (&message.NumberPayload{Number: number}).Pack()
	return reply.Sign(d.engine.Notary()), nil
}
