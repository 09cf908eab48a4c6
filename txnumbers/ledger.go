// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package txnumbers - the transaction number and request number
// book-keeping for one client/notary relationship
//
// a number is issued by the notary, is available until the client
// spends it and remains issued until its transaction is closed
//
// not safe for concurrent use, the owning consensus context
// serialises access
package txnumbers

import (
	"sort"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/limitedset"
)

// MaximumAcknowledged - size of the acknowledged request number window
const MaximumAcknowledged = 100

// Ledger - issued, available and acknowledged numbers plus the request number
type Ledger struct {
	log           *logger.L
	issued        map[uint64]struct{}
	available     map[uint64]struct{}
	acknowledged  *limitedset.LimitedSet
	requestNumber uint64
}

// New - create an empty ledger
func New(log *logger.L) *Ledger {
	return &Ledger{
		log:          log,
		issued:       make(map[uint64]struct{}),
		available:    make(map[uint64]struct{}),
		acknowledged: limitedset.New(MaximumAcknowledged),
	}
}

// IssueNumber - record a newly issued number as both issued and available
//
// fails, leaving no trace, if the number is already tracked in either set
func (l *Ledger) IssueNumber(n uint64) bool {
	_, inIssued := l.issued[n]
	_, inAvailable := l.available[n]
	if inIssued || inAvailable {
		l.log.Warnf("issue number: %d already tracked  issued: %t  available: %t", n, inIssued, inAvailable)
		return false
	}
	l.issued[n] = struct{}{}
	l.available[n] = struct{}{}
	return true
}

// ConsumeAvailable - spend a number, it stays issued until closed
func (l *Ledger) ConsumeAvailable(n uint64) bool {
	if _, ok := l.available[n]; !ok {
		return false
	}
	delete(l.available, n)
	return true
}

// ConsumeIssued - close a number for good
func (l *Ledger) ConsumeIssued(n uint64) bool {
	if _, ok := l.issued[n]; !ok {
		return false
	}
	delete(l.issued, n)

	if _, ok := l.available[n]; ok {
		l.log.Warnf("closed number: %d was still available", n)
		delete(l.available, n)
	}
	return true
}

// RecoverAvailable - make a spent number available again
//
// only possible while the number is still issued
func (l *Ledger) RecoverAvailable(n uint64) bool {
	if _, ok := l.issued[n]; !ok {
		return false
	}
	l.available[n] = struct{}{}
	return true
}

// VerifyIssued - true if n is issued
func (l *Ledger) VerifyIssued(n uint64) bool {
	_, ok := l.issued[n]
	return ok
}

// VerifyAvailable - true if n can be spent
func (l *Ledger) VerifyAvailable(n uint64) bool {
	_, ok := l.available[n]
	return ok
}

// Issued - sorted issued numbers
func (l *Ledger) Issued() []uint64 {
	return sortedKeys(l.issued)
}

// Available - sorted available numbers
func (l *Ledger) Available() []uint64 {
	return sortedKeys(l.available)
}

// AvailableCount - number of spendable numbers
func (l *Ledger) AvailableCount() int {
	return len(l.available)
}

// IssuedCount - number of open numbers
func (l *Ledger) IssuedCount() int {
	return len(l.issued)
}

// NextAvailable - smallest available number, false if none
func (l *Ledger) NextAvailable() (uint64, bool) {
	first := uint64(0)
	found := false
	for n := range l.available {
		if !found || n < first {
			first = n
			found = true
		}
	}
	return first, found
}

// RequestNumber - current request number
func (l *Ledger) RequestNumber() uint64 {
	return l.requestNumber
}

// SetRequestNumber - resynchronise the request number
func (l *Ledger) SetRequestNumber(n uint64) {
	l.requestNumber = n
}

// IncrementRequest - advance and return the request number
func (l *Ledger) IncrementRequest() uint64 {
	l.requestNumber += 1
	return l.requestNumber
}

// AddAcknowledgedNumber - remember that the reply to request n was received
//
// only the most recent MaximumAcknowledged numbers are kept
func (l *Ledger) AddAcknowledgedNumber(n uint64) bool {
	return l.acknowledged.Add(n)
}

// RemoveAcknowledgedNumber - forget one acknowledged number
func (l *Ledger) RemoveAcknowledgedNumber(n uint64) bool {
	return l.acknowledged.Remove(n)
}

// VerifyAcknowledgedNumber - true if n has been acknowledged
func (l *Ledger) VerifyAcknowledgedNumber(n uint64) bool {
	return l.acknowledged.Exists(n)
}

// Acknowledged - sorted acknowledged request numbers
func (l *Ledger) Acknowledged() []uint64 {
	return l.acknowledged.Items()
}

// FinishAcknowledgements - drop local acknowledgements the other side no longer reports
func (l *Ledger) FinishAcknowledgements(remote []uint64) {
	keep := make(map[uint64]struct{}, len(remote))
	for _, n := range remote {
		keep[n] = struct{}{}
	}
	l.acknowledged.Retain(func(n uint64) bool {
		_, ok := keep[n]
		return ok
	})
}

// Reset - clear all numbers and zero the request number
func (l *Ledger) Reset() {
	l.issued = make(map[uint64]struct{})
	l.available = make(map[uint64]struct{})
	l.acknowledged.Clear()
	l.requestNumber = 0
}

// Clone - independent deep copy
func (l *Ledger) Clone() *Ledger {
	c := New(l.log)
	for n := range l.issued {
		c.issued[n] = struct{}{}
	}
	for n := range l.available {
		c.available[n] = struct{}{}
	}
	for _, n := range l.acknowledged.Items() {
		c.acknowledged.Add(n)
	}
	c.requestNumber = l.requestNumber
	return c
}

// Restore - rebuild from persisted lists, every available number must be issued
func Restore(log *logger.L, requestNumber uint64, issued []uint64, available []uint64, acknowledged []uint64) (*Ledger, bool) {
	l := New(log)
	l.requestNumber = requestNumber
	for _, n := range issued {
		l.issued[n] = struct{}{}
	}
	for _, n := range available {
		if _, ok := l.issued[n]; !ok {
			return nil, false
		}
		l.available[n] = struct{}{}
	}
	for _, n := range acknowledged {
		l.acknowledged.Add(n)
	}
	return l, true
}

func sortedKeys(m map[uint64]struct{}) []uint64 {
	result := make([]uint64, 0, len(m))
	for n := range m {
		result = append(result, n)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i] < result[j]
	})
	return result
}
