// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package amount_test

import (
	"encoding/json"
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/fault"
)

func TestScale(t *testing.T) {
	one := amount.New(1)
	expected := new(big.Int).Lsh(big.NewInt(1), amount.FractionalBits)
	assert.Equal(t, expected.String(), one.Serialize(), "scale of one")

	minusOne := amount.New(-1)
	assert.Equal(t, "-"+expected.String(), minusOne.Serialize(), "scale of minus one")

	var zero amount.Amount
	assert.Equal(t, "0", zero.Serialize(), "zero value")
	assert.True(t, zero.Equal(amount.Zero()), "zero value is not Zero()")
}

func TestDecimalRoundTrip(t *testing.T) {
	values := []string{
		"0",
		"1",
		"-1",
		"340282366920938463463374607431768211456",
		"-123456789012345678901234567890123456789012345678901234567890",
		"98765432109876543210987654321098765432109876543210987654321098765432109876543210",
	}
	for i, s := range values {
		a, err := amount.FromString(s)
		if nil != err {
			t.Fatalf("%d: from string: %q error: %s", i, s, err)
		}
		if s != a.Serialize() {
			t.Errorf("%d: serialize: %q  expected: %q", i, a.Serialize(), s)
		}
	}

	_, err := amount.FromString("12a")
	assert.Equal(t, fault.ErrInvalidAmount, err, "malformed string accepted")
	_, err = amount.FromStringNormalized("")
	assert.Equal(t, fault.ErrInvalidAmount, err, "empty string accepted")

	a, err := amount.FromStringNormalized("500")
	assert.Nil(t, err, "normalized error")
	assert.True(t, amount.New(500).Equal(a), "normalized parse")
}

func TestExtract(t *testing.T) {
	values := []int64{0, 1, -1, 1000000000, math.MaxInt64, math.MinInt64}
	for i, v := range values {
		n, ok := amount.New(v).ExtractInt64()
		if !ok {
			t.Errorf("%d: extract: %d failed", i, v)
		} else if v != n {
			t.Errorf("%d: extract: %d  expected: %d", i, n, v)
		}
	}

	over := amount.New(math.MaxInt64).Add(amount.New(1))
	_, ok := over.ExtractInt64()
	assert.False(t, ok, "overflow extracted")

	u, ok := over.ExtractUInt64()
	assert.True(t, ok, "uint64 extract")
	assert.Equal(t, uint64(math.MaxInt64)+1, u, "uint64 value")

	_, ok = amount.New(-1).ExtractUInt64()
	assert.False(t, ok, "negative extracted as uint64")

	_, ok = amount.NewUnsigned(math.MaxUint64).Add(amount.New(1)).ExtractUInt64()
	assert.False(t, ok, "uint64 overflow extracted")
}

func TestArithmetic(t *testing.T) {
	pairs := []struct {
		a int64
		b int64
	}{
		{0, 1},
		{1, 1},
		{7, 6},
		{-7, 6},
		{7, -6},
		{-7, -6},
		{1000000000, 250000000},
		{3037000499, 3037000499},
	}
	for i, p := range pairs {
		a := amount.New(p.a)
		b := amount.New(p.b)
		product := amount.New(p.a * p.b)

		if !a.Mul(b).Equal(product) {
			t.Errorf("%d: %d * %d = %s", i, p.a, p.b, a.Mul(b))
		}

		q, err := product.Div(b)
		if nil != err {
			t.Fatalf("%d: divide error: %s", i, err)
		}
		if !q.Equal(a) {
			t.Errorf("%d: %d / %d = %s", i, p.a*p.b, p.b, q)
		}

		if !a.Add(b).Equal(amount.New(p.a + p.b)) {
			t.Errorf("%d: %d + %d = %s", i, p.a, p.b, a.Add(b))
		}
		if !a.Sub(b).Equal(amount.New(p.a - p.b)) {
			t.Errorf("%d: %d - %d = %s", i, p.a, p.b, a.Sub(b))
		}
	}

	_, err := amount.New(5).Div(amount.Zero())
	assert.Equal(t, fault.ErrDivisionByZero, err, "divide by zero")

	r, err := amount.New(17).Mod(amount.New(5))
	assert.Nil(t, err, "mod error")
	assert.True(t, amount.New(2).Equal(r), "17 mod 5 = %s", r)

	r, err = amount.New(-17).Mod(amount.New(5))
	assert.Nil(t, err, "mod error")
	assert.True(t, amount.New(-2).Equal(r), "-17 mod 5 = %s", r)
}

// shifts must truncate toward zero on both sides of zero
func TestSignSymmetry(t *testing.T) {
	half, err := amount.FromString(new(big.Int).Lsh(big.NewInt(3), amount.FractionalBits-1).String())
	assert.Nil(t, err, "from string")

	n, ok := half.ExtractInt64()
	assert.True(t, ok, "extract")
	assert.Equal(t, int64(1), n, "1.5 truncates to 1")

	n, ok = half.Neg().ExtractInt64()
	assert.True(t, ok, "extract")
	assert.Equal(t, int64(-1), n, "-1.5 truncates to -1")
}

func TestComparison(t *testing.T) {
	assert.True(t, amount.New(-3).Less(amount.New(2)), "-3 < 2")
	assert.Equal(t, 1, amount.New(5).Cmp(amount.New(4)), "5 > 4")
	assert.Equal(t, 0, amount.New(5).Cmp(amount.NewUnsigned(5)), "5 == 5")
	assert.True(t, amount.New(-5).IsNegative(), "negative")
	assert.True(t, amount.New(-5).Abs().Equal(amount.New(5)), "abs")
	assert.Equal(t, 0, amount.Zero().Sign(), "sign of zero")
}

func TestBitcoin(t *testing.T) {
	buffer, ok := amount.New(0x0102030405).SerializeBitcoin()
	assert.True(t, ok, "serialize")
	assert.Equal(t, []byte{0x05, 0x04, 0x03, 0x02, 0x01, 0x00, 0x00, 0x00}, buffer, "little endian")

	back, err := amount.FromBitcoin(buffer)
	assert.Nil(t, err, "decode")
	assert.True(t, amount.New(0x0102030405).Equal(back), "round trip")

	buffer, ok = amount.New(math.MaxInt64).SerializeBitcoin()
	assert.True(t, ok, "int64 maximum")
	assert.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, buffer, "int64 maximum bytes")

	_, ok = amount.New(math.MaxInt64).Add(amount.New(1)).SerializeBitcoin()
	assert.False(t, ok, "above int64 maximum")

	_, ok = amount.New(-1).SerializeBitcoin()
	assert.False(t, ok, "negative")

	_, err = amount.FromBitcoin([]byte{1, 2, 3})
	assert.Equal(t, fault.ErrCannotDecodeAmount, err, "short buffer")
}

func TestEthereum(t *testing.T) {
	values := []struct {
		a        amount.Amount
		expected string
	}{
		{amount.Zero(), "0x0"},
		{amount.New(1), "0x1"},
		{amount.New(15), "0xf"},
		{amount.New(255), "0xff"},
		{amount.New(256), "0x100"},
		{amount.NewUnsigned(math.MaxUint64), "0xffffffffffffffff"},
		{amount.NewUnsigned(math.MaxUint64).Mul(amount.New(16)), "0xffffffffffffffff0"},
	}
	for i, v := range values {
		s, ok := v.a.SerializeEthereum()
		if !ok {
			t.Errorf("%d: serialize failed", i)
			continue
		}
		if v.expected != s {
			t.Errorf("%d: hex: %q  expected: %q", i, s, v.expected)
		}
		back, err := amount.FromEthereum(s)
		if nil != err {
			t.Errorf("%d: decode error: %s", i, err)
		} else if !back.Equal(v.a) {
			t.Errorf("%d: round trip: %s  expected: %s", i, back, v.a)
		}
	}

	_, ok := amount.New(-255).SerializeEthereum()
	assert.False(t, ok, "negative accepted")

	for _, s := range []string{"", "ff", "0x", "0x-1", "0xzz"} {
		_, err := amount.FromEthereum(s)
		assert.Equal(t, fault.ErrCannotDecodeAmount, err, "accepted: %q", s)
	}
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "123.45", amount.New(12345).Format(2), "two decimals")
	assert.Equal(t, "-0.05", amount.New(-5).Format(2), "negative")
	assert.Equal(t, "7", amount.New(7).Format(0), "no decimals")

	a, err := amount.ParseDisplay("123.45", 2)
	assert.Nil(t, err, "parse")
	assert.True(t, amount.New(12345).Equal(a), "parse value: %s", a)

	a, err = amount.ParseDisplay("1", 3)
	assert.Nil(t, err, "parse")
	assert.True(t, amount.New(1000).Equal(a), "parse value: %s", a)

	_, err = amount.ParseDisplay("1.234", 2)
	assert.Equal(t, fault.ErrInvalidAmount, err, "excess precision accepted")

	_, err = amount.ParseDisplay("abc", 2)
	assert.Equal(t, fault.ErrInvalidAmount, err, "garbage accepted")
}

func TestJSON(t *testing.T) {
	type holder struct {
		Balance amount.Amount `json:"balance"`
	}
	h := holder{Balance: amount.New(-42)}

	buffer, err := json.Marshal(h)
	assert.Nil(t, err, "marshal")

	var back holder
	err = json.Unmarshal(buffer, &back)
	assert.Nil(t, err, "unmarshal")
	assert.True(t, h.Balance.Equal(back.Balance), "round trip: %s", back.Balance)
}
