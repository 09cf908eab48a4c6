// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
)

type registerUnitReply struct {
	Unit    unitView    `json:"unit"`
	Account accountView `json:"account"`
}

func runRegisterUnit(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	name := c.String("name")
	if "" == name {
		return fmt.Errorf("unit name is required")
	}
	symbol := c.String("symbol")
	if "" == symbol {
		return fmt.Errorf("unit symbol is required")
	}

	u, a, err := m.session.RegisterUnit(name, symbol, int32(c.Int("decimals")))
	if nil != err {
		return err
	}

	printJson(m.w, registerUnitReply{
		Unit:    viewUnit(u),
		Account: viewAccount(a, u),
	})
	return nil
}

func runRegisterAccount(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	unitID, err := idFlag(c, "unit")
	if nil != err {
		return err
	}

	a, err := m.session.RegisterAccount(unitID)
	if nil != err {
		return err
	}

	printJson(m.w, viewAccount(a, nil))
	return nil
}

func runAccount(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	accountID, err := idFlag(c, "account")
	if nil != err {
		return err
	}

	data, err := m.session.AccountData(accountID)
	if nil != err {
		return err
	}

	printJson(m.w, viewAccountData(data))
	return nil
}

// a required identifier option
func idFlag(c *cli.Context, name string) (identifier.ID, error) {
	s := c.String(name)
	if "" == s {
		return identifier.Zero, fmt.Errorf("%s is required", name)
	}
	id, err := identifier.FromString(s)
	if nil != err {
		return identifier.Zero, fault.ErrInvalidIdentifier
	}
	return id, nil
}
