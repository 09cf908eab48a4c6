// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"encoding/binary"
	"sort"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

// record tag for a packed plan
const planTag = 0x50

// Plan - a recurring payment run by cron
//
// Number is the sender's opening transaction number, it stays issued
// until the sender accepts the final receipt
type Plan struct {
	Number         uint64
	SenderNymID    identifier.ID
	RecipientNymID identifier.ID
	From           identifier.ID
	To             identifier.ID
	Amount         amount.Amount
	Period         uint64 // seconds
	Remaining      uint64
	NextDue        int64 // unix seconds
	Paid           uint64
	Failed         uint64
	Signature      nym.Signature
}

// IsDue - true if a payment should run at now
func (p *Plan) IsDue(now int64) bool {
	return now >= p.NextDue
}

// Advance - record one attempt, true when the plan has finished
func (p *Plan) Advance(success bool) bool {
	if success {
		p.Paid += 1
	} else {
		p.Failed += 1
	}
	if p.Remaining > 0 {
		p.Remaining -= 1
	}
	p.NextDue += int64(p.Period)
	return 0 == p.Remaining
}

func (p *Plan) pack() []byte {
	buffer := codec.AppendUint64(nil, planTag)
	buffer = codec.AppendUint64(buffer, p.Number)
	buffer = codec.AppendID(buffer, p.SenderNymID)
	buffer = codec.AppendID(buffer, p.RecipientNymID)
	buffer = codec.AppendID(buffer, p.From)
	buffer = codec.AppendID(buffer, p.To)
	buffer = codec.AppendString(buffer, p.Amount.Serialize())
	buffer = codec.AppendUint64(buffer, p.Period)
	buffer = codec.AppendUint64(buffer, p.Remaining)
	buffer = codec.AppendInt64(buffer, p.NextDue)
	buffer = codec.AppendUint64(buffer, p.Paid)
	buffer = codec.AppendUint64(buffer, p.Failed)
	return buffer
}

func unpackPlan(record []byte, verifier nym.Verifier) (*Plan, error) {
	r := codec.NewReader(record)
	if planTag != r.Uint64() {
		return nil, fault.ErrUnknownRecordType
	}
	p := &Plan{
		Number:         r.Uint64(),
		SenderNymID:    r.ID(),
		RecipientNymID: r.ID(),
		From:           r.ID(),
		To:             r.ID(),
	}
	value := r.String()
	p.Period = r.Uint64()
	p.Remaining = r.Uint64()
	p.NextDue = r.Int64()
	p.Paid = r.Uint64()
	p.Failed = r.Uint64()
	unsignedLength := r.Offset()
	p.Signature = r.Bytes()
	if err := r.Done(); nil != err {
		return nil, err
	}
	a, err := amount.FromString(value)
	if nil != err {
		return nil, err
	}
	p.Amount = a
	if err := verifier.Verify(record[:unsignedLength], p.Signature); nil != err {
		return nil, err
	}
	return p, nil
}

// PlanStore - persistence of active payment plans
type PlanStore struct {
	log    *logger.L
	pool   *storage.PoolHandle
	notary nym.Identity
}

// NewPlanStore - plans signed by notary
func NewPlanStore(pool *storage.PoolHandle, notary nym.Identity) *PlanStore {
	return &PlanStore{
		log:    logger.New("plan"),
		pool:   pool,
		notary: notary,
	}
}

func planKey(number uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, number)
	return key
}

// Save - sign and stage a plan
func (s *PlanStore) Save(trx storage.Transaction, p *Plan) {
	packed := p.pack()
	p.Signature = s.notary.Sign(packed)
	trx.Put(s.pool, planKey(p.Number), codec.AppendBytes(packed, p.Signature))
}

// Delete - stage removal of a plan
func (s *PlanStore) Delete(trx storage.Transaction, number uint64) {
	trx.Delete(s.pool, planKey(number))
}

// Load - read one plan
func (s *PlanStore) Load(trx storage.Transaction, number uint64) (*Plan, error) {
	record := trx.Get(s.pool, planKey(number))
	if nil == record {
		return nil, fault.ErrPaymentPlanNotFound
	}
	return unpackPlan(record, s.notary)
}

// Exists - true if a plan with number is stored
func (s *PlanStore) Exists(trx storage.Transaction, number uint64) bool {
	return trx.Has(s.pool, planKey(number))
}

// Due - committed plans due at now, in number order
//
// a plan that cannot be decoded is logged and skipped
func (s *PlanStore) Due(now int64) ([]*Plan, error) {
	plans := []*Plan{}
	err := s.pool.Map(nil, func(key []byte, value []byte) error {
		p, err := unpackPlan(value, s.notary)
		if nil != err {
			s.log.Errorf("plan key: %x  unpack error: %s", key, err)
			return nil
		}
		if p.IsDue(now) {
			plans = append(plans, p)
		}
		return nil
	})
	if nil != err {
		return nil, err
	}
	sort.Slice(plans, func(i, j int) bool {
		return plans[i].Number < plans[j].Number
	})
	return plans, nil
}
