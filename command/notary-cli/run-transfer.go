// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/notaryd/account"
	"github.com/bitmark-inc/notaryd/amount"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/ledger"
)

func runTransfer(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	from, to, value, unit, err := payment(c, m)
	if nil != err {
		return err
	}

	response, err := m.session.Transfer(from, to, value, c.String("note"))
	if nil != err {
		return err
	}
	return printResponse(m, response, unit)
}

func runProcessInbox(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	accountID, err := idFlag(c, "account")
	if nil != err {
		return err
	}

	response, err := m.session.ProcessInbox(accountID)
	if nil != err {
		return err
	}
	return printResponse(m, response, nil)
}

func runPaymentPlan(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	from, to, value, unit, err := payment(c, m)
	if nil != err {
		return err
	}

	response, err := m.session.PaymentPlan(from, to, value, c.Duration("period"), c.Uint64("count"))
	if nil != err {
		return err
	}
	return printResponse(m, response, unit)
}

// the accounts and amount of a transfer or plan, the amount is given
// in the display form of the source account's unit
func payment(c *cli.Context, m *metadata) (identifier.ID, identifier.ID, amount.Amount, *account.Unit, error) {
	from, err := idFlag(c, "from")
	if nil != err {
		return identifier.Zero, identifier.Zero, amount.Zero(), nil, err
	}
	to, err := idFlag(c, "to")
	if nil != err {
		return identifier.Zero, identifier.Zero, amount.Zero(), nil, err
	}
	s := c.String("amount")
	if "" == s {
		return identifier.Zero, identifier.Zero, amount.Zero(), nil, fmt.Errorf("amount is required")
	}

	data, err := m.session.AccountData(from)
	if nil != err {
		return identifier.Zero, identifier.Zero, amount.Zero(), nil, err
	}
	value, err := data.Unit.Parse(s)
	if nil != err {
		return identifier.Zero, identifier.Zero, amount.Zero(), nil, err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "%s  from: %s  to: %s\n", data.Unit.Format(value), from, to)
	}
	return from, to, value, data.Unit, nil
}

func printResponse(m *metadata, response *ledger.Transaction, unit *account.Unit) error {
	printJson(m.w, viewTransaction(response, unit))
	if !response.Success() {
		return fmt.Errorf("%s was refused by the notary", response.Kind)
	}
	return nil
}
