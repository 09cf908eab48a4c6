// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/message"
)

func TestSignUnpackVerify(t *testing.T) {
	client := makeNym(t)
	notary := makeNym(t)

	payload := (&message.CountPayload{Count: 5}).Pack()
	m := message.NewRequest(message.GetTransactionNumbers, client.ID(), notary.ID(), 7, payload)
	m.NymboxHash = identifier.New([]byte("nymbox"))
	m.Acknowledged = []uint64{3, 5, 6}
	record := m.Sign(client)

	u, err := message.Unpack(record)
	assert.Nil(t, err, "unpack")
	assert.Nil(t, u.Verify(client), "verify")
	assert.Equal(t, fault.ErrInvalidSignature, u.Verify(notary), "verified by wrong nym")

	assert.Equal(t, message.GetTransactionNumbers, u.Command, "command")
	assert.Equal(t, client.ID(), u.NymID, "nym")
	assert.Equal(t, notary.ID(), u.NotaryID, "notary")
	assert.Equal(t, uint64(7), u.RequestNumber, "request number")
	assert.Equal(t, m.NymboxHash, u.NymboxHash, "nymbox hash")
	assert.Equal(t, []uint64{3, 5, 6}, u.Acknowledged, "acknowledged")
	assert.Equal(t, record, u.Record(), "record")

	count, err := message.UnpackCount(u.Payload)
	assert.Nil(t, err, "payload")
	assert.Equal(t, uint64(5), count.Count, "count")
}

func TestTamperedMessage(t *testing.T) {
	client := makeNym(t)
	m := message.NewRequest(message.PingNotary, client.ID(), identifier.Zero, 1, nil)
	record := m.Sign(client)

	// tag, version, command and id length precede the nym id
	tampered := append([]byte{}, record...)
	tampered[5] ^= 0xff

	u, err := message.Unpack(tampered)
	assert.Nil(t, err, "unpack")
	assert.Equal(t, fault.ErrInvalidSignature, u.Verify(client), "tampered message verified")
}

func TestUnsignedMessage(t *testing.T) {
	m := message.NewRequest(message.PingNotary, identifier.Zero, identifier.Zero, 1, nil)
	assert.Nil(t, m.Record(), "record before signing")
	assert.Equal(t, fault.ErrInvalidSignature, m.Verify(makeNym(t)), "unsigned verified")
}

func TestUnpackRejects(t *testing.T) {
	client := makeNym(t)

	wrongVersion := message.NewRequest(message.PingNotary, client.ID(), identifier.Zero, 1, nil)
	wrongVersion.Version = message.ProtocolVersion + 1

	badCommand := message.NewRequest(message.Command(999), client.ID(), identifier.Zero, 1, nil)

	tooMany := message.NewRequest(message.PingNotary, client.ID(), identifier.Zero, 1, nil)
	tooMany.Acknowledged = make([]uint64, 1001)

	tests := []struct {
		m   *message.Message
		err error
	}{
		{wrongVersion, fault.ErrWrongProtocolVersion},
		{badCommand, fault.ErrInvalidCommand},
		{tooMany, fault.ErrTooManyAcknowledged},
	}
	for i, item := range tests {
		_, err := message.Unpack(item.m.Sign(client))
		assert.Equal(t, item.err, err, "%d: error", i)
	}

	_, err := message.Unpack(codec.AppendUint64(nil, 0x01))
	assert.Equal(t, fault.ErrUnknownRecordType, err, "wrong tag")

	record := message.NewRequest(message.PingNotary, client.ID(), identifier.Zero, 1, nil).Sign(client)
	_, err = message.Unpack(record[:len(record)-3])
	assert.NotNil(t, err, "truncated record")
}

func TestReply(t *testing.T) {
	client := makeNym(t)
	notary := makeNym(t)

	request := message.NewRequest(message.RegisterAccount, client.ID(), notary.ID(), 12, nil)
	reply := message.NewReply(request)
	assert.Equal(t, message.RegisterAccountReply, reply.Command, "command")
	assert.Equal(t, client.ID(), reply.NymID, "nym")
	assert.Equal(t, uint64(12), reply.RequestNumber, "request number")

	reply.Payload = []byte{1, 2, 3}
	reply.Success = true
	reply.Fail(fault.ErrMissingUnit)
	assert.False(t, reply.Success, "success")
	assert.Equal(t, fault.ErrMissingUnit.Error(), reply.Reason, "reason")
	assert.Nil(t, reply.Payload, "payload kept")

	u, err := message.Unpack(reply.Sign(notary))
	assert.Nil(t, err, "unpack")
	assert.Nil(t, u.Verify(notary), "verify")
	assert.Equal(t, fault.ErrMissingUnit.Error(), u.Reason, "reason")
}
