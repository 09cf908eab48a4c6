// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package notary - the notarization engine
//
// every operation that changes balances or boxes runs with the
// engine locked, both for inbound requests and for cron processing
//
// operations only stage writes into the storage transaction passed
// in, the caller commits or aborts
package notary
