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
	"github.com/bitmark-inc/notaryd/nym"
)

type generateReply struct {
	KeyFile string        `json:"keyFile"`
	NymID   identifier.ID `json:"nymId"`
	Address string        `json:"address"`
}

func runGenerate(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	fileName := c.GlobalString("key")
	if _, err := nym.ReadSeedFile(fileName); nil == err {
		return fault.ErrKeyFileAlreadyExists
	}

	n, err := nym.Generate()
	if nil != err {
		return err
	}
	if err := nym.WriteSeedFile(fileName, n); nil != err {
		return err
	}

	if m.verbose {
		fmt.Fprintf(m.e, "wrote: %q\n", fileName)
	}

	printJson(m.w, generateReply{
		KeyFile: fileName,
		NymID:   n.ID(),
		Address: n.Public().Address(),
	})
	return nil
}
