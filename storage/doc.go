// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the on-disk data store
//
// maintain separate pools of a number of elements in key->value form
//
// This maintains a LevelDB database split into a series of tables.
// Each table is defined by a prefix byte that is obtained from the
// prefix tag in the struct defining the available tables.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++           = concatenation of byte data
// 3. id           = 32 byte SHA3-256 identifier
// 4. number       = big endian uint64 (8 bytes)
// 5. all records other than counters are signed packed records
//
// Identities:
//
//   N ++ nym id                - registered nyms
//                                data: ed25519 public key
//   K ++ nym id                - usage credits
//                                data: count (8 bytes)
//
// Consensus:
//
//   C ++ context id            - per (local nym, remote nym) consensus context
//                                data: signed packed context
//
// Boxes:
//
//   B ++ box id                - abbreviated box
//                                data: signed packed box
//   R ++ box id ++ number      - box receipt, full transaction
//                                data: signed packed transaction
//
// Accounts:
//
//   A ++ account id            - asset account
//                                data: signed packed account
//   U ++ unit id               - unit definition
//                                data: signed packed unit
//
// Cron:
//
//   P ++ number                - active payment plan
//                                data: packed plan
//   T ++ "transactor"          - last issued transaction number
//                                data: number (8 bytes)
//
// Testing:
//   Z ++ key                   - testing data
package storage
