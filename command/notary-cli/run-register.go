// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"github.com/urfave/cli"

	"github.com/bitmark-inc/notaryd/identifier"
)

type registerReply struct {
	NymID         identifier.ID `json:"nymId"`
	NotaryID      identifier.ID `json:"notaryId"`
	RequestNumber uint64        `json:"requestNumber"`
}

func runInfo(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	info, err := m.transport.Info()
	if nil != err {
		return err
	}

	printJson(m.w, info)
	return nil
}

func runRegister(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	if err := m.session.Register(); nil != err {
		return err
	}
	ctx, err := m.session.Context()
	if nil != err {
		return err
	}

	printJson(m.w, registerReply{
		NymID:         m.session.ID(),
		NotaryID:      m.session.NotaryID(),
		RequestNumber: ctx.Numbers.RequestNumber(),
	})
	return nil
}

func runRequestNumber(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	n, err := m.session.RequestNumber()
	if nil != err {
		return err
	}

	printJson(m.w, registerReply{
		NymID:         m.session.ID(),
		NotaryID:      m.session.NotaryID(),
		RequestNumber: n,
	})
	return nil
}
