// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"bytes"
	"sort"

	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/codec"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
)

// record tag for a packed balance statement
const statementTag = 0x53

// packStatement - the part of a balance statement both sides compute
func packStatement(accountID identifier.ID, balance amount.Amount, issued []uint64, outboxHash identifier.ID) []byte {
	sorted := append([]uint64{}, issued...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	buffer := codec.AppendUint64(nil, statementTag)
	buffer = codec.AppendID(buffer, accountID)
	buffer = codec.AppendString(buffer, balance.Serialize())
	buffer = codec.AppendNumbers(buffer, sorted)
	buffer = codec.AppendID(buffer, outboxHash)
	return buffer
}

// GenerateBalanceStatement - item summarising an account after a
// proposed transaction
//
// balanceAfter and issuedAfter are the values once the transaction
// completes, the outbox is the account's current outbox
func GenerateBalanceStatement(accountID identifier.ID, balanceAfter amount.Amount, issuedAfter []uint64, outbox *Box) *Item {
	packed := packStatement(accountID, balanceAfter, issuedAfter, outbox.Hash())
	return &Item{
		Kind:       BalanceStatementItem,
		Status:     Request,
		Amount:     balanceAfter,
		From:       accountID,
		Numbers:    append([]uint64{}, issuedAfter...),
		Attachment: packed,
	}
}

// VerifyBalanceStatement - compare a submitted statement with the one
// computed independently, they must be identical
func VerifyBalanceStatement(submitted *Item, expected *Item) error {
	if nil == submitted || BalanceStatementItem != submitted.Kind {
		return fault.ErrBalanceStatementMismatch
	}
	if !bytes.Equal(submitted.Attachment, expected.Attachment) {
		return fault.ErrBalanceStatementMismatch
	}
	return nil
}

// Without - copy of numbers with n removed
func Without(numbers []uint64, n uint64) []uint64 {
	result := make([]uint64, 0, len(numbers))
	for _, v := range numbers {
		if v != n {
			result = append(result, v)
		}
	}
	return result
}
