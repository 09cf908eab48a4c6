// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package fault - error instances shared by notary and client
//
// each error is a single typed value so callers compare by identity
// and classify with the IsErrXxx functions; a rejection reason
// carried in a reply is the Error() text of one of these
package fault
