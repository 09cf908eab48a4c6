// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package amount

import (
	"github.com/shopspring/decimal"

	"github.com/bitmark-inc/notaryd/fault"
)

// MaximumDecimalPower - largest supported number of display decimals
const MaximumDecimalPower = 18

// Format - show the integer part as a unit value with a fixed
// number of decimal places, e.g. 12345 with 2 decimals is "123.45"
func (a Amount) Format(decimals int32) string {
	if decimals < 0 || decimals > MaximumDecimalPower {
		decimals = 0
	}
	return decimal.NewFromBigInt(a.Unscaled(), -decimals).StringFixed(decimals)
}

// ParseDisplay - inverse of Format
//
// rejects values with more precision than the unit supports
func ParseDisplay(s string, decimals int32) (Amount, error) {
	if decimals < 0 || decimals > MaximumDecimalPower {
		return Amount{}, fault.ErrInvalidUnit
	}
	d, err := decimal.NewFromString(s)
	if nil != err {
		return Amount{}, fault.ErrInvalidAmount
	}
	d = d.Shift(decimals)
	if !d.IsInteger() {
		return Amount{}, fault.ErrInvalidAmount
	}
	return NewFromBig(d.BigInt()), nil
}
