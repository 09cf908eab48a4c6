// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package messagebus - a bounded queue of packed requests served by a
// fixed set of workers
//
// senders block until their request has been handled, a full queue
// refuses new requests rather than growing
package messagebus
