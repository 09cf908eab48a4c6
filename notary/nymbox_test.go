// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/storage"
)

func TestIssueNumbersNotice(t *testing.T) {
	f := newFixture(t)
	u, _ := f.unit(makeNym(t), "NYM")
	p := newParty(f, u.ID)

	var before identifier.ID
	f.commit(func(trx storage.Transaction) {
		var err error
		before, err = f.engine.NymboxHash(trx, p.nym.ID())
		assert.Nil(t, err, "hash")
	})

	numbers := p.issue(5)
	assert.Equal(t, 5, len(numbers), "count")
	assert.Equal(t, numbers, p.ctx.Numbers.Available(), "available")
	assert.Equal(t, numbers, p.ctx.Numbers.Issued(), "issued")

	nymbox := f.box(ledger.Nymbox, p.nym.ID(), p.nym.ID())
	assert.NotEqual(t, before, nymbox.NymboxHash(), "hash unchanged")
	assert.Equal(t, 1, nymbox.Count(), "notices")
	notice := nymbox.Entries()[0].Transaction()
	assert.Equal(t, ledger.NumbersNotice, notice.Kind, "kind")
	assert.Equal(t, numbers, notice.Items[0].Numbers, "notice numbers")

	f.commit(func(trx storage.Transaction) {
		_, err := f.engine.IssueNumbers(trx, p.ctx, 0)
		assert.Equal(t, fault.ErrInvalidCount, err, "zero count")
		_, err = f.engine.IssueNumbers(trx, p.ctx, 1000)
		assert.Equal(t, fault.ErrInvalidCount, err, "large count")
	})
}

func TestMessagesAndReplyNotices(t *testing.T) {
	f := newFixture(t)
	sender := makeNym(t)
	recipient := makeNym(t)
	f.registerNym(sender)
	f.registerNym(recipient)

	f.commit(func(trx storage.Transaction) {
		_, err := f.engine.SendMessage(trx, sender.ID(), makeNym(t).ID(), "lost")
		assert.Equal(t, fault.ErrNymNotFound, err, "message to unregistered nym")

		_, err = f.engine.SendMessage(trx, sender.ID(), recipient.ID(), "hello")
		assert.Nil(t, err, "message")

		for _, r := range []uint64{3, 4} {
			_, err = f.engine.DropNotice(trx, recipient.ID(), ledger.ReplyNotice, r, &ledger.Item{
				Kind:   ledger.NoticeItem,
				Status: ledger.Acknowledgement,
			})
			assert.Nil(t, err, "reply notice")
		}
	})

	nymbox := f.box(ledger.Nymbox, recipient.ID(), recipient.ID())
	assert.Equal(t, 3, nymbox.Count(), "entries")

	f.commit(func(trx storage.Transaction) {
		removed, err := f.engine.RemoveReplyNotices(trx, recipient.ID(), []uint64{3, 99})
		assert.Nil(t, err, "remove")
		assert.Equal(t, 1, removed, "removed")
	})

	nymbox = f.box(ledger.Nymbox, recipient.ID(), recipient.ID())
	assert.Equal(t, 2, nymbox.Count(), "entries after removal")
	assert.Equal(t, 0, len(nymbox.FindByReference(ledger.ReplyNotice, 3)), "acknowledged notice kept")

	var message *ledger.Transaction
	for _, e := range nymbox.Entries() {
		if ledger.Message == e.Kind {
			message = e.Transaction()
		}
	}
	assert.NotNil(t, message, "message missing")
	assert.Equal(t, "hello", message.Items[0].Note, "text")
	assert.Equal(t, sender.ID(), message.Items[0].From, "from")
}

func TestProcessNymboxAllOrNothing(t *testing.T) {
	f := newFixture(t)
	u, _ := f.unit(makeNym(t), "PNB")
	p := newParty(f, u.ID)
	p.issue(2)

	nymbox := f.box(ledger.Nymbox, p.nym.ID(), p.nym.ID())
	n := nymbox.Numbers()[0]

	f.commit(func(trx storage.Transaction) {
		_, err := f.engine.ProcessNymbox(trx, p.ctx, []uint64{n, n + 1000})
		assert.Equal(t, fault.ErrTransactionNotFound, err, "missing entry")
		_, err = f.engine.ProcessNymbox(trx, p.ctx, []uint64{n, n})
		assert.Equal(t, fault.ErrDuplicateTransaction, err, "duplicate entry")
		_, err = f.engine.ProcessNymbox(trx, p.ctx, nil)
		assert.Equal(t, fault.ErrMissingParameters, err, "empty")
	})
	assert.Equal(t, 1, f.box(ledger.Nymbox, p.nym.ID(), p.nym.ID()).Count(), "nymbox changed")

	f.commit(func(trx storage.Transaction) {
		result, err := f.engine.ProcessNymbox(trx, p.ctx, []uint64{n})
		assert.Nil(t, err, "process")
		assert.Equal(t, p.ctx.Numbers.Issued(), result.Issued, "issued numbers reported")
		assert.Equal(t, 0, len(result.Closed), "closed numbers reported")
	})
	assert.Equal(t, 0, f.box(ledger.Nymbox, p.nym.ID(), p.nym.ID()).Count(), "nymbox not emptied")
	assert.Equal(t, 2, p.ctx.Numbers.IssuedCount(), "numbers notice changed issued numbers")
}

func TestRegisterUnitTwice(t *testing.T) {
	f := newFixture(t)
	issuer := makeNym(t)
	f.unit(issuer, "DUP")
	f.commit(func(trx storage.Transaction) {
		_, _, err := f.engine.RegisterUnit(trx, issuer.ID(), "unit DUP", "DUP", 2)
		assert.Equal(t, fault.ErrAlreadyRegistered, err, "duplicate unit")
		_, err = f.engine.RegisterAccount(trx, issuer.ID(), identifier.New([]byte("none")))
		assert.Equal(t, fault.ErrMissingUnit, err, "account of missing unit")
	})
}
