// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/message"
)

func TestBoxPayloadReceiptOrder(t *testing.T) {
	a := &message.BoxPayload{
		Box: []byte("box"),
		Receipts: map[uint64][]byte{
			9: []byte("nine"),
			2: []byte("two"),
			5: []byte("five"),
		},
	}
	b := &message.BoxPayload{
		Box: []byte("box"),
		Receipts: map[uint64][]byte{
			5: []byte("five"),
			9: []byte("nine"),
			2: []byte("two"),
		},
	}
	assert.Equal(t, a.Pack(), b.Pack(), "packing depends on map order")

	u, err := message.UnpackBox(a.Pack())
	assert.Nil(t, err, "unpack")
	assert.Equal(t, a.Receipts, u.Receipts, "receipts")
}

func TestAccountDataPayload(t *testing.T) {
	p := &message.AccountDataPayload{
		Account:  []byte("account"),
		Unit:     []byte("unit"),
		Inbox:    []byte("inbox"),
		Outbox:   []byte("outbox"),
		Receipts: map[uint64][]byte{},
	}
	u, err := message.UnpackAccountData(p.Pack())
	assert.Nil(t, err, "unpack")
	assert.Equal(t, p.Inbox, u.Inbox, "inbox")
	assert.Equal(t, 0, len(u.Receipts), "receipts")
}

func TestPayloadTrailingData(t *testing.T) {
	p := &message.NymMessagePayload{
		To:   identifier.New([]byte("to")),
		Text: "hello",
	}
	buffer := append(p.Pack(), 0x00)
	_, err := message.UnpackNymMessage(buffer)
	assert.Equal(t, fault.ErrInvalidPayload, err, "trailing data accepted")

	_, err = message.UnpackUnit([]byte{0x05})
	assert.Equal(t, fault.ErrInvalidPayload, err, "short unit payload")
}

func TestCreditsPayload(t *testing.T) {
	p := &message.CreditsPayload{
		NymID:      identifier.New([]byte("nym")),
		Adjustment: -25,
		Balance:    75,
	}
	u, err := message.UnpackCredits(p.Pack())
	assert.Nil(t, err, "unpack")
	assert.Equal(t, p, u, "credits")
}
