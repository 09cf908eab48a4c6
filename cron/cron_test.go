// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cron_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/background"
	"github.com/bitmark-inc/notaryd/cron"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/notary"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

type setup struct {
	t      *testing.T
	engine *notary.Engine
	sender *nym.PrivateNym
	from   *account.Account
	to     *account.Account
}

func (s *setup) commit(fn func(trx storage.Transaction) error) {
	s.engine.Lock()
	defer s.engine.Unlock()
	trx, err := storage.NewDBTransaction()
	if nil != err {
		s.t.Fatalf("transaction error: %s", err)
	}
	if err := fn(trx); nil != err {
		s.t.Fatalf("setup error: %s", err)
	}
	if err := trx.Commit(); nil != err {
		s.t.Fatalf("commit error: %s", err)
	}
}

func newSetup(t *testing.T, balance int64) *setup {
	s := &setup{
		t:      t,
		engine: notary.New(makeNym(t)),
		sender: makeNym(t),
	}
	issuer := makeNym(t)
	recipient := makeNym(t)

	s.commit(func(trx storage.Transaction) error {
		if err := s.engine.GenerateNymbox(trx, s.sender.ID()); nil != err {
			return err
		}
		u, issuerAccount, err := s.engine.RegisterUnit(trx, issuer.ID(), "Cron", "CRN", 0)
		if nil != err {
			return err
		}
		s.from, err = s.engine.RegisterAccount(trx, s.sender.ID(), u.ID)
		if nil != err {
			return err
		}
		s.to, err = s.engine.RegisterAccount(trx, recipient.ID(), u.ID)
		if nil != err {
			return err
		}
		_, err = s.engine.Transfer(trx, &notary.TransferRequest{
			Kind:        ledger.TransferReceipt,
			SenderNymID: issuer.ID(),
			From:        issuerAccount.ID,
			To:          s.from.ID,
			Amount:      amount.New(balance),
		})
		return err
	})
	return s
}

func (s *setup) plan(number uint64, value int64, count uint64) {
	s.commit(func(trx storage.Transaction) error {
		s.engine.Plans().Save(trx, &notary.Plan{
			Number:      number,
			SenderNymID: s.sender.ID(),
			From:        s.from.ID,
			To:          s.to.ID,
			Amount:      amount.New(value),
			Period:      1,
			Remaining:   count,
			NextDue:     0,
		})
		return nil
	})
}

func (s *setup) balance(a *account.Account) amount.Amount {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		s.t.Fatalf("transaction error: %s", err)
	}
	defer trx.Abort()
	loaded, err := s.engine.Account(trx, a.ID)
	if nil != err {
		s.t.Fatalf("account error: %s", err)
	}
	return loaded.Balance
}

func (s *setup) finalReceipts(number uint64) int {
	trx, err := storage.NewDBTransaction()
	if nil != err {
		s.t.Fatalf("transaction error: %s", err)
	}
	defer trx.Abort()
	nymbox, err := s.engine.Nymbox(trx, s.sender.ID())
	if nil != err {
		s.t.Fatalf("nymbox error: %s", err)
	}
	return len(nymbox.FindByReference(ledger.FinalReceipt, number))
}

func TestProcess(t *testing.T) {
	s := newSetup(t, 100)
	s.plan(1001, 30, 2)

	c := cron.New(s.engine, time.Second)

	n, err := c.Process()
	assert.Nil(t, err, "first tick")
	assert.Equal(t, 1, n, "first tick payments")
	assert.Equal(t, 0, s.finalReceipts(1001), "finished early")

	n, err = c.Process()
	assert.Nil(t, err, "second tick")
	assert.Equal(t, 1, n, "second tick payments")
	assert.Equal(t, 1, s.finalReceipts(1001), "final receipt")

	n, err = c.Process()
	assert.Nil(t, err, "third tick")
	assert.Equal(t, 0, n, "finished plan still running")

	assert.True(t, amount.New(40).Equal(s.balance(s.from)), "sender balance")
	assert.True(t, amount.New(60).Equal(s.balance(s.to)), "recipient balance")
}

func TestProcessFailedPayment(t *testing.T) {
	s := newSetup(t, 10)
	s.plan(2002, 30, 1)

	n, err := cron.New(s.engine, 0).Process()
	assert.Nil(t, err, "tick")
	assert.Equal(t, 1, n, "payments")
	assert.Equal(t, 1, s.finalReceipts(2002), "final receipt")
	assert.True(t, amount.New(10).Equal(s.balance(s.from)), "sender balance changed")
	assert.True(t, s.balance(s.to).IsZero(), "recipient balance changed")
}

func TestRunInBackground(t *testing.T) {
	s := newSetup(t, 100)
	s.plan(3003, 5, 1)

	p := background.Start(background.Processes{cron.New(s.engine, 10*time.Millisecond)}, nil)
	deadline := time.Now().Add(5 * time.Second)
	for 0 == s.finalReceipts(3003) && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	p.Stop()

	assert.Equal(t, 1, s.finalReceipts(3003), "plan not run")
	assert.True(t, amount.New(95).Equal(s.balance(s.from)), "sender balance")
}
