// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"math"

	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
)

// Item - one instruction or outcome within a transaction
//
// From and To are accounts for value items and nyms for messages
type Item struct {
	Kind            ItemKind
	Status          ItemStatus
	Amount          amount.Amount
	From            identifier.ID
	To              identifier.ID
	ReferenceNumber uint64
	Numbers         []uint64
	Note            string
	Attachment      []byte
}

// Pack - canonical packing of an item
func (i *Item) Pack() []byte {
	buffer := codec.AppendUint64(nil, uint64(i.Kind))
	buffer = codec.AppendUint64(buffer, uint64(i.Status))
	buffer = codec.AppendString(buffer, i.Amount.Serialize())
	buffer = codec.AppendID(buffer, i.From)
	buffer = codec.AppendID(buffer, i.To)
	buffer = codec.AppendUint64(buffer, i.ReferenceNumber)
	buffer = codec.AppendNumbers(buffer, i.Numbers)
	buffer = codec.AppendString(buffer, i.Note)
	buffer = codec.AppendBytes(buffer, i.Attachment)
	return buffer
}

// read an item from a reader
func unpackItem(r *codec.Reader) (*Item, error) {
	i := &Item{
		Kind:   ItemKind(r.Uint64()),
		Status: ItemStatus(r.Uint64()),
	}
	amountText := r.String()
	i.From = r.ID()
	i.To = r.ID()
	i.ReferenceNumber = r.Uint64()
	i.Numbers = r.Numbers()
	i.Note = r.String()
	i.Attachment = r.Bytes()

	if err := r.Err(); nil != err {
		return nil, err
	}
	if !i.Kind.IsValid() {
		return nil, fault.ErrInvalidItemKind
	}
	if !i.Status.IsValid() {
		return nil, fault.ErrInvalidItemStatus
	}
	a, err := amount.FromString(amountText)
	if nil != err {
		return nil, err
	}
	i.Amount = a
	return i, nil
}

// Copy - a response copy of the item with a new status
func (i *Item) Copy(status ItemStatus) *Item {
	c := *i
	c.Status = status
	c.Numbers = append([]uint64{}, i.Numbers...)
	c.Attachment = append([]byte{}, i.Attachment...)
	return &c
}

// longest period between plan payments, in seconds
const MaximumPlanPeriod = math.MaxInt32

// PlanTerms - schedule carried by a payment plan item
type PlanTerms struct {
	Period uint64 // seconds between payments
	Count  uint64 // number of payments
}

// Pack - attachment form of the terms
func (p PlanTerms) Pack() []byte {
	buffer := codec.AppendUint64(nil, p.Period)
	return codec.AppendUint64(buffer, p.Count)
}

// UnpackPlanTerms - decode and validate terms
func UnpackPlanTerms(buffer []byte) (PlanTerms, error) {
	r := codec.NewReader(buffer)
	p := PlanTerms{
		Period: r.Uint64(),
		Count:  r.Uint64(),
	}
	if err := r.Done(); nil != err {
		return PlanTerms{}, err
	}
	if 0 == p.Period || 0 == p.Count || p.Period > MaximumPlanPeriod {
		return PlanTerms{}, fault.ErrInvalidPeriod
	}
	return p, nil
}
