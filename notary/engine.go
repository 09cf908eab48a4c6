// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
	"github.com/bitmark-inc/notaryd/transactor"
)

// Engine - the notary's business state
//
// the embedded mutex is the business critical section, Lock before
// calling any method that takes a storage transaction
type Engine struct {
	sync.Mutex

	log        *logger.L
	notary     nym.Identity
	accounts   *account.Store
	boxes      *ledger.Store
	plans      *PlanStore
	transactor *transactor.Transactor

	// replaceable for fault injection
	credit func(*account.Account, amount.Amount) bool
	clock  func() time.Time
}

// New - engine signing with the notary identity
//
// storage must be initialised
func New(notary nym.Identity) *Engine {
	e := &Engine{
		log:        logger.New("notary"),
		notary:     notary,
		accounts:   account.NewStore(storage.Pool.Accounts, storage.Pool.Units, notary),
		boxes:      ledger.NewStore(storage.Pool.Boxes, storage.Pool.BoxReceipts),
		plans:      NewPlanStore(storage.Pool.Plans, notary),
		transactor: transactor.New(storage.Pool.Transactor),
		credit: func(a *account.Account, value amount.Amount) bool {
			return a.Credit(value)
		},
		clock: time.Now,
	}
	e.log.Infof("notary: %s", notary.ID())
	return e
}

// ID - the notary identifier
func (e *Engine) ID() identifier.ID {
	return e.notary.ID()
}

// Notary - the notary identity
func (e *Engine) Notary() nym.Identity {
	return e.notary
}

// Plans - the payment plan store
func (e *Engine) Plans() *PlanStore {
	return e.plans
}

// Now - engine time
func (e *Engine) Now() time.Time {
	return e.clock()
}

// NextNumber - allocate a transaction number
func (e *Engine) NextNumber(trx storage.Transaction) uint64 {
	return e.transactor.Next(trx)
}

// sign a new transaction for a box
func (e *Engine) newTransaction(kind ledger.TransactionKind, number uint64, reference uint64, ownerNymID identifier.ID, subject identifier.ID, items ...*ledger.Item) *ledger.Transaction {
	t := &ledger.Transaction{
		Kind:            kind,
		Number:          number,
		ReferenceNumber: reference,
		NotaryID:        e.notary.ID(),
		OwnerNymID:      ownerNymID,
		Account:         subject,
		Timestamp:       e.clock().Unix(),
		Items:           items,
	}
	t.Sign(e.notary)
	return t
}

// add a transaction to a box, a duplicate number means the number
// source is broken and continuing would corrupt the ledger
func (e *Engine) mustAdd(b *ledger.Box, t *ledger.Transaction) {
	err := b.AddTransaction(t)
	logger.PanicIfError("notary: add transaction to box", err)
}
