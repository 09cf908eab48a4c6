// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message_test

import (
	"testing"

	"github.com/bitmark-inc/notaryd/nym"
)

func makeNym(t *testing.T) *nym.PrivateNym {
	n, err := nym.Generate()
	if nil != err {
		t.Fatalf("generate nym error: %s", err)
	}
	return n
}
