// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
)

func TestViewTransaction(t *testing.T) {
	issuer := identifier.New([]byte("issuer"))
	notary := identifier.New([]byte("notary"))
	u, err := account.NewUnit(issuer, notary, "Test Dollar", "TD", 2)
	if nil != err {
		t.Fatalf("unit error: %s", err)
	}

	from := identifier.New([]byte("from"))
	to := identifier.New([]byte("to"))
	txn := &ledger.Transaction{
		Kind:      ledger.Transfer,
		Number:    7,
		Timestamp: 1000,
		Items: []*ledger.Item{
			{
				Kind:   ledger.TransferItem,
				Status: ledger.Request,
				Amount: amount.New(1200),
				From:   from,
				To:     to,
				Note:   "rent",
			},
		},
	}

	v := viewTransaction(txn, u)
	assert.Equal(t, ledger.Transfer.String(), v.Kind, "kind")
	assert.Equal(t, uint64(7), v.Number, "number")
	assert.Equal(t, int64(1000), v.Timestamp.Unix(), "timestamp")
	assert.Equal(t, 1, len(v.Items), "items")
	assert.Equal(t, "12.00 TD", v.Items[0].Amount, "amount")
	assert.Equal(t, from, *v.Items[0].From, "from")
	assert.Equal(t, to, *v.Items[0].To, "to")

	var buffer bytes.Buffer
	err = printJson(&buffer, v)
	assert.Nil(t, err, "print")

	var decoded map[string]interface{}
	err = json.Unmarshal(buffer.Bytes(), &decoded)
	assert.Nil(t, err, "decode")
	assert.Equal(t, "rent", decoded["items"].([]interface{})[0].(map[string]interface{})["note"], "note")
}

func TestViewAccount(t *testing.T) {
	issuer := identifier.New([]byte("issuer"))
	notary := identifier.New([]byte("notary"))
	u, err := account.NewUnit(issuer, notary, "Test Dollar", "TD", 2)
	if nil != err {
		t.Fatalf("unit error: %s", err)
	}

	a := &account.Account{
		ID:      identifier.New([]byte("account")),
		UnitID:  u.ID,
		Balance: amount.New(-500),
	}
	assert.Equal(t, "-5.00 TD", viewAccount(a, u).Balance, "display balance")
	assert.Equal(t, a.Balance.Serialize(), viewAccount(a, nil).Balance, "raw balance")
}
