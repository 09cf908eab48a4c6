// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package notary

import (
	"time"

	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/amount"
)

func SetCredit(e *Engine, credit func(*account.Account, amount.Amount) bool) {
	e.credit = credit
}

func SetClock(e *Engine, clock func() time.Time) {
	e.clock = clock
}
