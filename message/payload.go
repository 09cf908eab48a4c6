// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"sort"

	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
)

// maximum receipts carried with one box
const maximumReceipts = 100000

// finish decoding a payload
func done(r *codec.Reader) error {
	if err := r.Done(); nil != err {
		return fault.ErrInvalidPayload
	}
	return nil
}

// RegisterNymPayload - the public key of the nym to register
type RegisterNymPayload struct {
	PublicKey []byte
}

// Pack - encode
func (p *RegisterNymPayload) Pack() []byte {
	return codec.AppendBytes(nil, p.PublicKey)
}

// UnpackRegisterNym - decode
func UnpackRegisterNym(buffer []byte) (*RegisterNymPayload, error) {
	r := codec.NewReader(buffer)
	p := &RegisterNymPayload{PublicKey: r.Bytes()}
	return p, done(r)
}

// CountPayload - number of transaction numbers wanted
type CountPayload struct {
	Count uint64
}

// Pack - encode
func (p *CountPayload) Pack() []byte {
	return codec.AppendUint64(nil, p.Count)
}

// UnpackCount - decode
func UnpackCount(buffer []byte) (*CountPayload, error) {
	r := codec.NewReader(buffer)
	p := &CountPayload{Count: r.Uint64()}
	return p, done(r)
}

// NumberPayload - a single number, the current request number
type NumberPayload struct {
	Number uint64
}

// Pack - encode
func (p *NumberPayload) Pack() []byte {
	return codec.AppendUint64(nil, p.Number)
}

// UnpackNumber - decode
func UnpackNumber(buffer []byte) (*NumberPayload, error) {
	r := codec.NewReader(buffer)
	p := &NumberPayload{Number: r.Uint64()}
	return p, done(r)
}

// NumbersPayload - list of transaction or box numbers
type NumbersPayload struct {
	Numbers []uint64
}

// Pack - encode
func (p *NumbersPayload) Pack() []byte {
	return codec.AppendNumbers(nil, p.Numbers)
}

// UnpackNumbers - decode
func UnpackNumbers(buffer []byte) (*NumbersPayload, error) {
	r := codec.NewReader(buffer)
	p := &NumbersPayload{Numbers: r.Numbers()}
	return p, done(r)
}

// NymboxResultPayload - reply to processNymbox
type NymboxResultPayload struct {
	Issued []uint64
	Closed []uint64
}

// Pack - encode
func (p *NymboxResultPayload) Pack() []byte {
	buffer := codec.AppendNumbers(nil, p.Issued)
	return codec.AppendNumbers(buffer, p.Closed)
}

// UnpackNymboxResult - decode
func UnpackNymboxResult(buffer []byte) (*NymboxResultPayload, error) {
	r := codec.NewReader(buffer)
	p := &NymboxResultPayload{
		Issued: r.Numbers(),
		Closed: r.Numbers(),
	}
	return p, done(r)
}

// BoxPayload - a signed abbreviated box with its receipts
type BoxPayload struct {
	Box      []byte
	Receipts map[uint64][]byte
}

// Pack - encode, receipts in number order
func (p *BoxPayload) Pack() []byte {
	buffer := codec.AppendBytes(nil, p.Box)
	return appendReceipts(buffer, p.Receipts)
}

func appendReceipts(buffer []byte, receipts map[uint64][]byte) []byte {
	numbers := make([]uint64, 0, len(receipts))
	for n := range receipts {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool {
		return numbers[i] < numbers[j]
	})
	buffer = codec.AppendUint64(buffer, uint64(len(numbers)))
	for _, n := range numbers {
		buffer = codec.AppendUint64(buffer, n)
		buffer = codec.AppendBytes(buffer, receipts[n])
	}
	return buffer
}

func readReceipts(r *codec.Reader) (map[uint64][]byte, error) {
	count := r.Uint64()
	if nil != r.Err() {
		return nil, r.Err()
	}
	if count > maximumReceipts {
		return nil, fault.ErrInvalidCount
	}
	receipts := make(map[uint64][]byte)
	for i := uint64(0); i < count; i += 1 {
		n := r.Uint64()
		receipts[n] = r.Bytes()
	}
	return receipts, r.Err()
}

// UnpackBox - decode
func UnpackBox(buffer []byte) (*BoxPayload, error) {
	r := codec.NewReader(buffer)
	p := &BoxPayload{Box: r.Bytes()}
	receipts, err := readReceipts(r)
	if nil != err {
		return nil, fault.ErrInvalidPayload
	}
	p.Receipts = receipts
	return p, done(r)
}

// BoxReceiptPayload - selects one receipt of a box
type BoxReceiptPayload struct {
	Kind    uint64 // ledger.BoxKind
	Subject identifier.ID
	Number  uint64
}

// Pack - encode
func (p *BoxReceiptPayload) Pack() []byte {
	buffer := codec.AppendUint64(nil, p.Kind)
	buffer = codec.AppendID(buffer, p.Subject)
	return codec.AppendUint64(buffer, p.Number)
}

// UnpackBoxReceipt - decode
func UnpackBoxReceipt(buffer []byte) (*BoxReceiptPayload, error) {
	r := codec.NewReader(buffer)
	p := &BoxReceiptPayload{
		Kind:    r.Uint64(),
		Subject: r.ID(),
		Number:  r.Uint64(),
	}
	return p, done(r)
}

// RecordPayload - a single signed record
type RecordPayload struct {
	Record []byte
}

// Pack - encode
func (p *RecordPayload) Pack() []byte {
	return codec.AppendBytes(nil, p.Record)
}

// UnpackRecord - decode
func UnpackRecord(buffer []byte) (*RecordPayload, error) {
	r := codec.NewReader(buffer)
	p := &RecordPayload{Record: r.Bytes()}
	return p, done(r)
}

// UnitPayload - definition of a new unit
type UnitPayload struct {
	Name         string
	Symbol       string
	DecimalPower int32
}

// Pack - encode
func (p *UnitPayload) Pack() []byte {
	buffer := codec.AppendString(nil, p.Name)
	buffer = codec.AppendString(buffer, p.Symbol)
	return codec.AppendInt64(buffer, int64(p.DecimalPower))
}

// UnpackUnit - decode
func UnpackUnit(buffer []byte) (*UnitPayload, error) {
	r := codec.NewReader(buffer)
	p := &UnitPayload{
		Name:         r.String(),
		Symbol:       r.String(),
		DecimalPower: int32(r.Int64()),
	}
	return p, done(r)
}

// UnitReplyPayload - signed unit and issuer account records
type UnitReplyPayload struct {
	Unit    []byte
	Account []byte
}

// Pack - encode
func (p *UnitReplyPayload) Pack() []byte {
	buffer := codec.AppendBytes(nil, p.Unit)
	return codec.AppendBytes(buffer, p.Account)
}

// UnpackUnitReply - decode
func UnpackUnitReply(buffer []byte) (*UnitReplyPayload, error) {
	r := codec.NewReader(buffer)
	p := &UnitReplyPayload{
		Unit:    r.Bytes(),
		Account: r.Bytes(),
	}
	return p, done(r)
}

// IDPayload - a unit or account identifier
type IDPayload struct {
	ID identifier.ID
}

// Pack - encode
func (p *IDPayload) Pack() []byte {
	return codec.AppendID(nil, p.ID)
}

// UnpackID - decode
func UnpackID(buffer []byte) (*IDPayload, error) {
	r := codec.NewReader(buffer)
	p := &IDPayload{ID: r.ID()}
	return p, done(r)
}

// AccountDataPayload - signed records describing an account
type AccountDataPayload struct {
	Account  []byte
	Unit     []byte
	Inbox    []byte
	Outbox   []byte
	Receipts map[uint64][]byte
}

// Pack - encode
func (p *AccountDataPayload) Pack() []byte {
	buffer := codec.AppendBytes(nil, p.Account)
	buffer = codec.AppendBytes(buffer, p.Unit)
	buffer = codec.AppendBytes(buffer, p.Inbox)
	buffer = codec.AppendBytes(buffer, p.Outbox)
	return appendReceipts(buffer, p.Receipts)
}

// UnpackAccountData - decode
func UnpackAccountData(buffer []byte) (*AccountDataPayload, error) {
	r := codec.NewReader(buffer)
	p := &AccountDataPayload{
		Account: r.Bytes(),
		Unit:    r.Bytes(),
		Inbox:   r.Bytes(),
		Outbox:  r.Bytes(),
	}
	receipts, err := readReceipts(r)
	if nil != err {
		return nil, fault.ErrInvalidPayload
	}
	p.Receipts = receipts
	return p, done(r)
}

// NymMessagePayload - text for another nym
type NymMessagePayload struct {
	To   identifier.ID
	Text string
}

// Pack - encode
func (p *NymMessagePayload) Pack() []byte {
	buffer := codec.AppendID(nil, p.To)
	return codec.AppendString(buffer, p.Text)
}

// UnpackNymMessage - decode
func UnpackNymMessage(buffer []byte) (*NymMessagePayload, error) {
	r := codec.NewReader(buffer)
	p := &NymMessagePayload{
		To:   r.ID(),
		Text: r.String(),
	}
	return p, done(r)
}

// CreditsPayload - usage credit adjustment and result
type CreditsPayload struct {
	NymID      identifier.ID
	Adjustment int64
	Balance    uint64
}

// Pack - encode
func (p *CreditsPayload) Pack() []byte {
	buffer := codec.AppendID(nil, p.NymID)
	buffer = codec.AppendInt64(buffer, p.Adjustment)
	return codec.AppendUint64(buffer, p.Balance)
}

// UnpackCredits - decode
func UnpackCredits(buffer []byte) (*CreditsPayload, error) {
	r := codec.NewReader(buffer)
	p := &CreditsPayload{
		NymID:      r.ID(),
		Adjustment: r.Int64(),
		Balance:    r.Uint64(),
	}
	return p, done(r)
}
