// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package client - the client side of the notary protocol
//
// a session keeps its own signed copy of the consensus context with
// the notary: request numbers, transaction numbers and acknowledged
// replies, all updated only from notary signed replies
//
// storage must be initialised before a session is created; a client
// normally has a database of its own
package client
