// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package amount

import (
	"encoding/binary"
	"math"
	"math/big"
	"strings"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/fault"
)

// FractionalBits - number of bits to the right of the binary point
const FractionalBits = 128

// BitcoinLength - size of the legacy little endian form
const BitcoinLength = 8

// Amount - signed fixed point value
//
// the internal integer is the displayed value * 2^FractionalBits
// values are immutable, every operation returns a new Amount
// the zero value is zero
type Amount struct {
	value *big.Int
}

var (
	maxInt64  = big.NewInt(math.MaxInt64)
	minInt64  = big.NewInt(math.MinInt64)
	maxUint64 = new(big.Int).SetUint64(math.MaxUint64)
)

var logOnce sync.Once
var log *logger.L

func getLog() *logger.L {
	logOnce.Do(func() {
		log = logger.New("amount")
	})
	return log
}

// multiply by 2^FractionalBits without rounding differently
// either side of zero
func shiftLeft(x *big.Int) *big.Int {
	r := new(big.Int).Abs(x)
	r.Lsh(r, FractionalBits)
	if x.Sign() < 0 {
		r.Neg(r)
	}
	return r
}

// inverse of shiftLeft, truncates toward zero
func shiftRight(x *big.Int) *big.Int {
	r := new(big.Int).Abs(x)
	r.Rsh(r, FractionalBits)
	if x.Sign() < 0 {
		r.Neg(r)
	}
	return r
}

func wrap(x *big.Int) Amount {
	return Amount{value: x}
}

// the internal value, never nil
func (a Amount) raw() *big.Int {
	if nil == a.value {
		return new(big.Int)
	}
	return a.value
}

// Zero - the zero amount
func Zero() Amount {
	return wrap(new(big.Int))
}

// New - create from a signed integer
func New(n int64) Amount {
	return wrap(shiftLeft(big.NewInt(n)))
}

// NewUnsigned - create from an unsigned integer
func NewUnsigned(n uint64) Amount {
	return wrap(shiftLeft(new(big.Int).SetUint64(n)))
}

// NewFromBig - create from an unscaled arbitrary integer
func NewFromBig(n *big.Int) Amount {
	return wrap(shiftLeft(n))
}

// FromString - parse the raw scaled decimal representation
// as produced by Serialize
func FromString(s string) (Amount, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fault.ErrInvalidAmount
	}
	return wrap(x), nil
}

// FromStringNormalized - parse a decimal integer of whole units
func FromStringNormalized(s string) (Amount, error) {
	x, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, fault.ErrInvalidAmount
	}
	return wrap(shiftLeft(x)), nil
}

// Copy - a distinct Amount with the same value
func (a Amount) Copy() Amount {
	return wrap(new(big.Int).Set(a.raw()))
}

// Add - a + b
func (a Amount) Add(b Amount) Amount {
	return wrap(new(big.Int).Add(a.raw(), b.raw()))
}

// Sub - a - b
func (a Amount) Sub(b Amount) Amount {
	return wrap(new(big.Int).Sub(a.raw(), b.raw()))
}

// Mul - a * b
//
// the product of two scaled values carries the scale twice
// so it is shifted back once
func (a Amount) Mul(b Amount) Amount {
	return wrap(shiftRight(new(big.Int).Mul(a.raw(), b.raw())))
}

// Div - a / b, truncated toward zero
//
// the quotient of two scaled values has no scale so it is
// shifted back once
func (a Amount) Div(b Amount) (Amount, error) {
	if 0 == b.raw().Sign() {
		return Amount{}, fault.ErrDivisionByZero
	}
	return wrap(shiftLeft(new(big.Int).Quo(a.raw(), b.raw()))), nil
}

// Mod - remainder of a / b with the sign of a
func (a Amount) Mod(b Amount) (Amount, error) {
	if 0 == b.raw().Sign() {
		return Amount{}, fault.ErrDivisionByZero
	}
	return wrap(new(big.Int).Rem(a.raw(), b.raw())), nil
}

// Neg - -a
func (a Amount) Neg() Amount {
	return wrap(new(big.Int).Neg(a.raw()))
}

// Abs - |a|
func (a Amount) Abs() Amount {
	return wrap(new(big.Int).Abs(a.raw()))
}

// Cmp - -1, 0, +1 as a <, ==, > b
func (a Amount) Cmp(b Amount) int {
	return a.raw().Cmp(b.raw())
}

// Equal - a == b
func (a Amount) Equal(b Amount) bool {
	return 0 == a.Cmp(b)
}

// Less - a < b
func (a Amount) Less(b Amount) bool {
	return a.Cmp(b) < 0
}

// Sign - -1, 0, +1
func (a Amount) Sign() int {
	return a.raw().Sign()
}

// IsZero - a == 0
func (a Amount) IsZero() bool {
	return 0 == a.raw().Sign()
}

// IsNegative - a < 0
func (a Amount) IsNegative() bool {
	return a.raw().Sign() < 0
}

// Unscaled - the integer part as an arbitrary integer
func (a Amount) Unscaled() *big.Int {
	return shiftRight(a.raw())
}

// Serialize - exact raw scaled decimal representation
func (a Amount) Serialize() string {
	return a.raw().String()
}

// String - for the fmt package, the integer part
func (a Amount) String() string {
	return a.Unscaled().String()
}

// ExtractInt64 - integer part as int64
//
// returns false if out of range
func (a Amount) ExtractInt64() (int64, bool) {
	n := a.Unscaled()
	if n.Cmp(maxInt64) > 0 || n.Cmp(minInt64) < 0 {
		getLog().Warnf("amount: %s does not fit int64", n)
		return 0, false
	}
	return n.Int64(), true
}

// ExtractUInt64 - integer part as uint64
//
// returns false if negative or out of range
func (a Amount) ExtractUInt64() (uint64, bool) {
	n := a.Unscaled()
	if n.Sign() < 0 || n.Cmp(maxUint64) > 0 {
		getLog().Warnf("amount: %s does not fit uint64", n)
		return 0, false
	}
	return n.Uint64(), true
}

// SerializeBitcoin - integer part as 8 byte little endian
//
// returns false if negative or larger than int64
func (a Amount) SerializeBitcoin() ([]byte, bool) {
	n := a.Unscaled()
	if n.Sign() < 0 || n.Cmp(maxInt64) > 0 {
		return nil, false
	}
	buffer := make([]byte, BitcoinLength)
	binary.LittleEndian.PutUint64(buffer, n.Uint64())
	return buffer, true
}

// FromBitcoin - decode the 8 byte little endian form
func FromBitcoin(buffer []byte) (Amount, error) {
	if BitcoinLength != len(buffer) {
		return Amount{}, fault.ErrCannotDecodeAmount
	}
	n := int64(binary.LittleEndian.Uint64(buffer))
	if n < 0 {
		return Amount{}, fault.ErrCannotDecodeAmount
	}
	return New(n), nil
}

// SerializeEthereum - integer part as "0x" prefixed minimal big endian hex
//
// zero is "0x0", returns false if negative
func (a Amount) SerializeEthereum() (string, bool) {
	n := a.Unscaled()
	if n.Sign() < 0 {
		return "", false
	}
	return "0x" + n.Text(16), true
}

// FromEthereum - decode the "0x" prefixed hex form
func FromEthereum(s string) (Amount, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return Amount{}, fault.ErrCannotDecodeAmount
	}
	digits := s[2:]
	if "" == digits || strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		return Amount{}, fault.ErrCannotDecodeAmount
	}
	n, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return Amount{}, fault.ErrCannotDecodeAmount
	}
	return NewFromBig(n), nil
}

// MarshalText - raw scaled decimal for JSON
func (a Amount) MarshalText() ([]byte, error) {
	return []byte(a.Serialize()), nil
}

// UnmarshalText - raw scaled decimal from JSON
func (a *Amount) UnmarshalText(s []byte) error {
	v, err := FromString(string(s))
	if nil != err {
		return err
	}
	*a = v
	return nil
}
