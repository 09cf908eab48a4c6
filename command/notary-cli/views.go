// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/client"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
)

// JSON forms of the records printed

type unitView struct {
	UnitID   identifier.ID `json:"unitId"`
	Issuer   identifier.ID `json:"issuer"`
	Name     string        `json:"name"`
	Symbol   string        `json:"symbol"`
	Decimals int32         `json:"decimals"`
}

type accountView struct {
	AccountID identifier.ID `json:"accountId"`
	UnitID    identifier.ID `json:"unitId"`
	Balance   string        `json:"balance"`
	Issuer    bool          `json:"issuer"`
}

type itemView struct {
	Kind      string         `json:"kind"`
	Status    string         `json:"status"`
	Amount    string         `json:"amount,omitempty"`
	From      *identifier.ID `json:"from,omitempty"`
	To        *identifier.ID `json:"to,omitempty"`
	Reference uint64         `json:"reference,omitempty"`
	Note      string         `json:"note,omitempty"`
}

type transactionView struct {
	Kind      string     `json:"kind"`
	Number    uint64     `json:"number"`
	Reference uint64     `json:"reference,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
	Success   bool       `json:"success"`
	Items     []itemView `json:"items"`
}

type accountDataView struct {
	Account accountView       `json:"account"`
	Unit    unitView          `json:"unit"`
	Inbox   []transactionView `json:"inbox"`
	Outbox  int               `json:"outbox"`
}

func viewUnit(u *account.Unit) unitView {
	return unitView{
		UnitID:   u.ID,
		Issuer:   u.IssuerNymID,
		Name:     u.Name,
		Symbol:   u.Symbol,
		Decimals: u.DecimalPower,
	}
}

func viewAccount(a *account.Account, u *account.Unit) accountView {
	v := accountView{
		AccountID: a.ID,
		UnitID:    a.UnitID,
		Balance:   a.Balance.Serialize(),
		Issuer:    a.Issuer,
	}
	if nil != u {
		v.Balance = u.Format(a.Balance)
	}
	return v
}

// u formats amounts when known
func viewTransaction(t *ledger.Transaction, u *account.Unit) transactionView {
	v := transactionView{
		Kind:      t.Kind.String(),
		Number:    t.Number,
		Reference: t.ReferenceNumber,
		Timestamp: time.Unix(t.Timestamp, 0).UTC(),
		Success:   t.Success(),
		Items:     make([]itemView, 0, len(t.Items)),
	}
	for _, item := range t.Items {
		i := itemView{
			Kind:      item.Kind.String(),
			Status:    item.Status.String(),
			Reference: item.ReferenceNumber,
			Note:      item.Note,
		}
		if !item.Amount.IsZero() {
			if nil != u {
				i.Amount = u.Format(item.Amount)
			} else {
				i.Amount = item.Amount.Serialize()
			}
		}
		if !item.From.IsZero() {
			from := item.From
			i.From = &from
		}
		if !item.To.IsZero() {
			to := item.To
			i.To = &to
		}
		v.Items = append(v.Items, i)
	}
	return v
}

func viewAccountData(data *client.AccountData) accountDataView {
	v := accountDataView{
		Account: viewAccount(data.Account, data.Unit),
		Unit:    viewUnit(data.Unit),
		Inbox:   []transactionView{},
		Outbox:  data.Outbox.Count(),
	}
	for _, e := range data.Inbox.Entries() {
		v.Inbox = append(v.Inbox, viewTransaction(e.Transaction(), data.Unit))
	}
	return v
}

func printJson(handle io.Writer, message interface{}) error {

	b, err := json.MarshalIndent(message, "", "  ")
	if nil != err {
		return err
	}

	fmt.Fprintf(handle, "%s\n", b)
	return nil
}
