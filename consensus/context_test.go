// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/notaryd/consensus"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
)

func makeNym(t *testing.T) *nym.PrivateNym {
	p, err := nym.Generate()
	if nil != err {
		t.Fatalf("generate nym error: %s", err)
	}
	return p
}

func TestContextID(t *testing.T) {
	local := identifier.New([]byte("local"))
	remote := identifier.New([]byte("remote"))

	assert.Equal(t, identifier.New(local[:], remote[:]), consensus.ID(local, remote), "not hash of concatenation")
	assert.Equal(t, consensus.ID(local, remote), consensus.ID(local, remote), "not deterministic")
	assert.NotEqual(t, consensus.ID(local, remote), consensus.ID(remote, local), "direction ignored")
}

func TestNymboxHashMatch(t *testing.T) {
	log := logger.New("consensus-test")
	c := consensus.New(log, identifier.Zero, identifier.New([]byte("a")), identifier.New([]byte("b")))

	assert.False(t, c.NymboxHashMatch(), "unknown hashes match")

	h := identifier.New([]byte("nymbox"))
	c.LocalNymboxHash = h
	assert.False(t, c.NymboxHashMatch(), "one unknown hash matches")

	c.RemoteNymboxHash = h
	assert.True(t, c.NymboxHashMatch(), "equal hashes do not match")

	c.RemoteNymboxHash = identifier.New([]byte("other"))
	assert.False(t, c.NymboxHashMatch(), "different hashes match")
}

func TestSignedRoundTrip(t *testing.T) {
	log := logger.New("consensus-test")
	owner := makeNym(t)
	notary := identifier.New([]byte("notary"))
	remote := identifier.New([]byte("client"))

	c := consensus.New(log, notary, owner.ID(), remote)
	c.Numbers.IssueNumber(5)
	c.Numbers.IssueNumber(6)
	c.Numbers.ConsumeAvailable(6)
	c.Numbers.AddAcknowledgedNumber(2)
	c.Numbers.SetRequestNumber(3)
	c.LocalNymboxHash = identifier.New([]byte("box"))

	record := c.Sign(owner)

	d, err := consensus.Unpack(log, record, owner)
	assert.Nil(t, err, "unpack")
	assert.Equal(t, c.Pack(), d.Pack(), "packing differs after round trip")
	assert.Equal(t, []uint64{5, 6}, d.Numbers.Issued(), "issued")
	assert.Equal(t, []uint64{5}, d.Numbers.Available(), "available")
	assert.Equal(t, uint64(3), d.Numbers.RequestNumber(), "request number")

	// signed by someone else
	_, err = consensus.Unpack(log, record, makeNym(t))
	assert.Equal(t, fault.ErrInvalidSignature, err, "wrong verifier accepted")

	// tampered request number
	tampered := append([]byte{}, record...)
	c.Numbers.SetRequestNumber(4)
	copy(tampered, c.Pack())
	_, err = consensus.Unpack(log, tampered, owner)
	assert.Equal(t, fault.ErrInvalidSignature, err, "tampered record accepted")

	_, err = consensus.Unpack(log, record[:10], owner)
	assert.Equal(t, fault.ErrTruncatedRecord, err, "truncated record accepted")
}

func TestResetKeepsIdentity(t *testing.T) {
	log := logger.New("consensus-test")
	local := identifier.New([]byte("a"))
	remote := identifier.New([]byte("b"))

	c := consensus.New(log, identifier.Zero, local, remote)
	c.Numbers.IssueNumber(1)
	c.Numbers.SetRequestNumber(10)
	c.Reset()

	assert.Equal(t, 0, c.Numbers.IssuedCount(), "numbers not cleared")
	assert.Equal(t, uint64(0), c.Numbers.RequestNumber(), "request number not zeroed")
	assert.Equal(t, consensus.ID(local, remote), c.ID(), "identity changed")
}
