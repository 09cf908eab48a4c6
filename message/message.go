// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
)

// ProtocolVersion - version carried by every message
const ProtocolVersion = 1

// record tag for a packed message
const messageTag = 0x4d

// limits on decoded messages
const (
	maximumAcknowledged = 1000
	maximumReasonLength = 1024
)

// Message - a signed request or reply
//
// NymID is always the client nym, requests are signed by the client
// and replies by the notary
type Message struct {
	Version       uint64
	Command       Command
	NymID         identifier.ID
	NotaryID      identifier.ID
	RequestNumber uint64
	NymboxHash    identifier.ID
	Acknowledged  []uint64
	Success       bool
	Reason        string
	Payload       []byte
	Signature     nym.Signature

	unsignedLength int
	record         []byte
}

// Pack - canonical packing without signature
func (m *Message) Pack() []byte {
	buffer := codec.AppendUint64(nil, messageTag)
	buffer = codec.AppendUint64(buffer, m.Version)
	buffer = codec.AppendUint64(buffer, uint64(m.Command))
	buffer = codec.AppendID(buffer, m.NymID)
	buffer = codec.AppendID(buffer, m.NotaryID)
	buffer = codec.AppendUint64(buffer, m.RequestNumber)
	buffer = codec.AppendID(buffer, m.NymboxHash)
	buffer = codec.AppendNumbers(buffer, m.Acknowledged)
	buffer = codec.AppendBool(buffer, m.Success)
	buffer = codec.AppendString(buffer, m.Reason)
	buffer = codec.AppendBytes(buffer, m.Payload)
	return buffer
}

// Sign - sign and return the complete record
func (m *Message) Sign(signer nym.Signer) []byte {
	packed := m.Pack()
	m.Signature = signer.Sign(packed)
	m.unsignedLength = len(packed)
	m.record = codec.AppendBytes(packed, m.Signature)
	return append([]byte{}, m.record...)
}

// Record - copy of the signed record, nil if never signed or unpacked
func (m *Message) Record() []byte {
	if nil == m.record {
		return nil
	}
	return append([]byte{}, m.record...)
}

// Unpack - decode a record, the signature is not checked
//
// the signer depends on the content so call Verify once it is known
func Unpack(record []byte) (*Message, error) {
	r := codec.NewReader(record)
	if messageTag != r.Uint64() {
		return nil, fault.ErrUnknownRecordType
	}
	m := &Message{
		Version:       r.Uint64(),
		Command:       Command(r.Uint64()),
		NymID:         r.ID(),
		NotaryID:      r.ID(),
		RequestNumber: r.Uint64(),
		NymboxHash:    r.ID(),
		Acknowledged:  r.Numbers(),
		Success:       r.Bool(),
		Reason:        r.String(),
		Payload:       r.Bytes(),
	}
	m.unsignedLength = r.Offset()
	m.Signature = r.Bytes()
	if err := r.Done(); nil != err {
		return nil, err
	}
	if ProtocolVersion != m.Version {
		return nil, fault.ErrWrongProtocolVersion
	}
	if !m.Command.IsValid() {
		return nil, fault.ErrInvalidCommand
	}
	if len(m.Acknowledged) > maximumAcknowledged {
		return nil, fault.ErrTooManyAcknowledged
	}
	if len(m.Reason) > maximumReasonLength {
		return nil, fault.ErrInvalidPayload
	}
	m.record = append([]byte{}, record...)
	return m, nil
}

// Verify - check the signature of an unpacked message
func (m *Message) Verify(verifier nym.Verifier) error {
	if nil == m.record {
		return fault.ErrInvalidSignature
	}
	return verifier.Verify(m.record[:m.unsignedLength], m.Signature)
}

// NewRequest - an unsigned request
func NewRequest(command Command, nymID identifier.ID, notaryID identifier.ID, requestNumber uint64, payload []byte) *Message {
	return &Message{
		Version:       ProtocolVersion,
		Command:       command,
		NymID:         nymID,
		NotaryID:      notaryID,
		RequestNumber: requestNumber,
		Payload:       payload,
	}
}

// NewReply - an unsigned reply to a request
func NewReply(request *Message) *Message {
	command, ok := request.Command.Reply()
	if !ok {
		command = request.Command
	}
	return &Message{
		Version:       ProtocolVersion,
		Command:       command,
		NymID:         request.NymID,
		NotaryID:      request.NotaryID,
		RequestNumber: request.RequestNumber,
	}
}

// Fail - mark a reply as failed with a reason
func (m *Message) Fail(err error) *Message {
	m.Success = false
	m.Reason = err.Error()
	m.Payload = nil
	return m
}
