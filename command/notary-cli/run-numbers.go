// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/notaryd/fault"
)

type numbersReply struct {
	Available []uint64 `json:"available"`
	Issued    []uint64 `json:"issued"`
}

func runNumbers(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	count := c.Int("count")
	if count <= 0 {
		return fault.ErrInvalidCount
	}
	if m.verbose {
		fmt.Fprintf(m.e, "requesting: %d numbers\n", count)
	}

	if _, err := m.session.Numbers(count); nil != err {
		return err
	}
	return printNumbers(m)
}

func runSync(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	result, err := m.session.SyncNymbox()
	if nil != err {
		return err
	}
	if m.verbose {
		printJson(m.e, result)
	}
	return printNumbers(m)
}

func printNumbers(m *metadata) error {
	ctx, err := m.session.Context()
	if nil != err {
		return err
	}
	printJson(m.w, numbersReply{
		Available: ctx.Numbers.Available(),
		Issued:    ctx.Numbers.Issued(),
	})
	return nil
}
