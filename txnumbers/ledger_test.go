// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txnumbers_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/logger"
	"github.com/bitmark-inc/notaryd/txnumbers"
)

func newLedger() *txnumbers.Ledger {
	return txnumbers.New(logger.New("txnumbers-test"))
}

func TestIssueAndSpend(t *testing.T) {
	l := newLedger()

	assert.True(t, l.IssueNumber(500), "issue")
	assert.Equal(t, []uint64{500}, l.Available(), "available after issue")
	assert.Equal(t, []uint64{500}, l.Issued(), "issued after issue")

	assert.True(t, l.ConsumeAvailable(500), "consume available")
	assert.Equal(t, []uint64{}, l.Available(), "available after spend")
	assert.Equal(t, []uint64{500}, l.Issued(), "issued after spend")

	assert.True(t, l.ConsumeIssued(500), "consume issued")
	assert.Equal(t, []uint64{}, l.Issued(), "issued after close")

	assert.False(t, l.RecoverAvailable(500), "recovered a closed number")
	assert.Equal(t, []uint64{}, l.Available(), "available after failed recovery")
}

func TestIssueDuplicate(t *testing.T) {
	l := newLedger()

	assert.True(t, l.IssueNumber(7), "issue")
	assert.False(t, l.IssueNumber(7), "duplicate issue")

	// spent but still issued: re-issue must fail and leave nothing extra
	assert.True(t, l.ConsumeAvailable(7), "spend")
	assert.False(t, l.IssueNumber(7), "re-issue of open number")
	assert.False(t, l.VerifyAvailable(7), "re-issue made number available")
	assert.True(t, l.VerifyIssued(7), "re-issue removed issued number")
}

func TestConsume(t *testing.T) {
	l := newLedger()

	assert.False(t, l.ConsumeAvailable(1), "spent unknown number")
	assert.False(t, l.ConsumeIssued(1), "closed unknown number")

	l.IssueNumber(1)
	assert.True(t, l.ConsumeAvailable(1), "spend")
	assert.False(t, l.ConsumeAvailable(1), "double spend")

	// recovery while still issued
	assert.True(t, l.RecoverAvailable(1), "recover")
	assert.True(t, l.VerifyAvailable(1), "not available after recovery")

	// closing an available number removes it from both
	assert.True(t, l.ConsumeIssued(1), "close")
	assert.False(t, l.VerifyAvailable(1), "available after close")
	assert.False(t, l.VerifyIssued(1), "issued after close")

	assert.False(t, l.RecoverAvailable(2), "recovered never issued number")
}

// random sequences never leave a number available but not issued
func TestExactlyOnce(t *testing.T) {
	l := newLedger()
	r := rand.New(rand.NewSource(12345))

	closed := make(map[uint64]bool)
	for i := 0; i < 20000; i += 1 {
		n := uint64(r.Intn(50))
		switch r.Intn(4) {
		case 0:
			if l.IssueNumber(n) {
				delete(closed, n)
			}
		case 1:
			l.ConsumeAvailable(n)
		case 2:
			if l.ConsumeIssued(n) {
				closed[n] = true
				if l.RecoverAvailable(n) {
					t.Fatalf("%d: recovered closed number: %d", i, n)
				}
			}
		case 3:
			ok := l.RecoverAvailable(n)
			if ok && closed[n] {
				t.Fatalf("%d: recovered closed number: %d", i, n)
			}
		}

		for _, a := range l.Available() {
			if !l.VerifyIssued(a) {
				t.Fatalf("%d: number: %d available but not issued", i, a)
			}
		}
	}
}

func TestRequestNumber(t *testing.T) {
	l := newLedger()

	assert.Equal(t, uint64(0), l.RequestNumber(), "initial request number")
	previous := uint64(0)
	for i := 0; i < 10; i += 1 {
		n := l.IncrementRequest()
		assert.Equal(t, previous+1, n, "increment")
		previous = n
	}
	l.SetRequestNumber(100)
	assert.Equal(t, uint64(101), l.IncrementRequest(), "increment after set")
}

func TestAcknowledgedEviction(t *testing.T) {
	l := newLedger()

	for n := uint64(1); n <= 150; n += 1 {
		l.AddAcknowledgedNumber(n)
	}

	acknowledged := l.Acknowledged()
	assert.Equal(t, txnumbers.MaximumAcknowledged, len(acknowledged), "window size")
	assert.Equal(t, uint64(51), acknowledged[0], "oldest kept")
	assert.Equal(t, uint64(150), acknowledged[len(acknowledged)-1], "newest kept")
	assert.False(t, l.VerifyAcknowledgedNumber(50), "evicted number present")
}

func TestFinishAcknowledgements(t *testing.T) {
	l := newLedger()
	for _, n := range []uint64{3, 4, 5, 6} {
		l.AddAcknowledgedNumber(n)
	}

	l.FinishAcknowledgements([]uint64{4, 6, 99})
	assert.Equal(t, []uint64{4, 6}, l.Acknowledged(), "after finish")
}

func TestResetAndClone(t *testing.T) {
	l := newLedger()
	l.IssueNumber(10)
	l.IssueNumber(11)
	l.ConsumeAvailable(11)
	l.AddAcknowledgedNumber(3)
	l.SetRequestNumber(9)

	c := l.Clone()
	c.ConsumeIssued(10)
	c.IncrementRequest()

	assert.Equal(t, []uint64{10, 11}, l.Issued(), "clone changed original")
	assert.Equal(t, uint64(9), l.RequestNumber(), "clone changed request number")
	assert.Equal(t, []uint64{11}, c.Issued(), "clone issued")

	l.Reset()
	assert.Equal(t, 0, l.IssuedCount(), "issued after reset")
	assert.Equal(t, 0, l.AvailableCount(), "available after reset")
	assert.Equal(t, []uint64{}, l.Acknowledged(), "acknowledged after reset")
	assert.Equal(t, uint64(0), l.RequestNumber(), "request number after reset")
}

func TestRestore(t *testing.T) {
	log := logger.New("txnumbers-test")

	l, ok := txnumbers.Restore(log, 5, []uint64{1, 2, 3}, []uint64{2}, []uint64{4})
	assert.True(t, ok, "restore")
	assert.Equal(t, uint64(5), l.RequestNumber(), "request number")
	assert.Equal(t, []uint64{1, 2, 3}, l.Issued(), "issued")
	assert.Equal(t, []uint64{2}, l.Available(), "available")
	assert.Equal(t, []uint64{4}, l.Acknowledged(), "acknowledged")

	n, found := l.NextAvailable()
	assert.True(t, found, "next available")
	assert.Equal(t, uint64(2), n, "next available value")

	_, ok = txnumbers.Restore(log, 1, []uint64{1}, []uint64{9}, nil)
	assert.False(t, ok, "available but not issued accepted")
}
