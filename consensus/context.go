// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/txnumbers"
)

// ProtocolVersion - current version of the packed context
const ProtocolVersion = 1

// record tag for a packed context
const contextTag = 0x43

// Context - the agreed state between a local nym and a remote nym
// at one notary
type Context struct {
	Version          uint64
	NotaryID         identifier.ID
	LocalNymID       identifier.ID
	RemoteNymID      identifier.ID
	LocalNymboxHash  identifier.ID
	RemoteNymboxHash identifier.ID
	Numbers          *txnumbers.Ledger
	Signature        nym.Signature
}

// ID - the context identifier for a pair of nyms
//
// deterministic, the same pair always maps to the same record
func ID(localNymID identifier.ID, remoteNymID identifier.ID) identifier.ID {
	return identifier.New(localNymID[:], remoteNymID[:])
}

// New - a fresh unregistered context
func New(log *logger.L, notaryID identifier.ID, localNymID identifier.ID, remoteNymID identifier.ID) *Context {
	return &Context{
		Version:     ProtocolVersion,
		NotaryID:    notaryID,
		LocalNymID:  localNymID,
		RemoteNymID: remoteNymID,
		Numbers:     txnumbers.New(log),
	}
}

// ID - identifier of this context
func (c *Context) ID() identifier.ID {
	return ID(c.LocalNymID, c.RemoteNymID)
}

// NymboxHashMatch - true if both sides agree on a known nymbox hash
func (c *Context) NymboxHashMatch() bool {
	if c.LocalNymboxHash.IsZero() || c.RemoteNymboxHash.IsZero() {
		return false
	}
	return c.LocalNymboxHash == c.RemoteNymboxHash
}

// Reset - clear all numbers, keeping the identity binding
func (c *Context) Reset() {
	c.Numbers.Reset()
	c.LocalNymboxHash = identifier.Zero
	c.RemoteNymboxHash = identifier.Zero
}

// Clone - independent deep copy
func (c *Context) Clone() *Context {
	n := *c
	n.Numbers = c.Numbers.Clone()
	n.Signature = append(nym.Signature{}, c.Signature...)
	return &n
}

// Pack - canonical packing without signature
func (c *Context) Pack() []byte {
	buffer := codec.AppendUint64(nil, contextTag)
	buffer = codec.AppendUint64(buffer, c.Version)
	buffer = codec.AppendID(buffer, c.NotaryID)
	buffer = codec.AppendID(buffer, c.LocalNymID)
	buffer = codec.AppendID(buffer, c.RemoteNymID)
	buffer = codec.AppendID(buffer, c.LocalNymboxHash)
	buffer = codec.AppendID(buffer, c.RemoteNymboxHash)
	buffer = codec.AppendUint64(buffer, c.Numbers.RequestNumber())
	buffer = codec.AppendNumbers(buffer, c.Numbers.Issued())
	buffer = codec.AppendNumbers(buffer, c.Numbers.Available())
	buffer = codec.AppendNumbers(buffer, c.Numbers.Acknowledged())
	return buffer
}

// Sign - sign the packed context and return the complete record
func (c *Context) Sign(signer nym.Signer) []byte {
	packed := c.Pack()
	c.Signature = signer.Sign(packed)
	return codec.AppendBytes(packed, c.Signature)
}

// Unpack - decode a signed record and check its signature
func Unpack(log *logger.L, record []byte, verifier nym.Verifier) (*Context, error) {
	r := codec.NewReader(record)

	if contextTag != r.Uint64() {
		return nil, fault.ErrUnknownRecordType
	}
	version := r.Uint64()
	notaryID := r.ID()
	localNymID := r.ID()
	remoteNymID := r.ID()
	localHash := r.ID()
	remoteHash := r.ID()
	requestNumber := r.Uint64()
	issued := r.Numbers()
	available := r.Numbers()
	acknowledged := r.Numbers()
	unsignedLength := r.Offset()
	signature := r.Bytes()

	if err := r.Done(); nil != err {
		return nil, err
	}
	if ProtocolVersion != version {
		return nil, fault.ErrWrongProtocolVersion
	}

	if err := verifier.Verify(record[:unsignedLength], signature); nil != err {
		return nil, err
	}

	numbers, ok := txnumbers.Restore(log, requestNumber, issued, available, acknowledged)
	if !ok {
		return nil, fault.ErrTransactionNumberNotIssued
	}

	return &Context{
		Version:          version,
		NotaryID:         notaryID,
		LocalNymID:       localNymID,
		RemoteNymID:      remoteNymID,
		LocalNymboxHash:  localHash,
		RemoteNymboxHash: remoteHash,
		Numbers:          numbers,
		Signature:        signature,
	}, nil
}
