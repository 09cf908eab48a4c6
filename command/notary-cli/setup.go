// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/logger"
	"github.com/urfave/cli"

	"github.com/bitmark-inc/notaryd/client"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

const (
	databaseName = "notary-cli.leveldb"
	logFile      = "notary-cli.log"
)

// local state lives in directory: logs and the client's contexts and
// message box
func setup(c *cli.Context, m *metadata) error {

	directory, err := filepath.Abs(c.GlobalString("directory"))
	if nil != err {
		return err
	}
	if err := os.MkdirAll(directory, 0700); nil != err {
		return err
	}

	levels := map[string]string{
		logger.DefaultTag: "error",
	}
	if m.verbose {
		levels[logger.DefaultTag] = "info"
	}
	err = logger.Initialise(logger.Configuration{
		Directory: directory,
		File:      logFile,
		Size:      1024 * 1024,
		Count:     10,
		Console:   false,
		Levels:    levels,
	})
	if nil != err {
		return err
	}

	self, err := nym.ReadSeedFile(c.GlobalString("key"))
	if nil != err {
		return fmt.Errorf("key: %q  error: %s", c.GlobalString("key"), err)
	}

	address := c.GlobalString("notary")
	if "" == address {
		return fmt.Errorf("notary address is required")
	}
	notary, err := nym.FromAddress(address)
	if nil != err {
		return fmt.Errorf("notary: %q  error: %s", address, err)
	}

	fingerprint := c.GlobalString("fingerprint")
	if "" == fingerprint {
		return fmt.Errorf("certificate fingerprint is required")
	}

	database := filepath.Join(directory, databaseName)
	if m.verbose {
		fmt.Fprintf(m.e, "database: %q\n", database)
	}
	if err := storage.Initialise(database, storage.ReadWrite); nil != err {
		return err
	}

	transport, err := client.NewRPCTransport(c.GlobalString("connect"), fingerprint)
	if nil != err {
		return err
	}
	m.transport = transport
	m.session = client.New(self, notary, transport)

	if m.verbose {
		fmt.Fprintf(m.e, "client: %s\n", m.session.ID())
		fmt.Fprintf(m.e, "notary: %s\n", m.session.NotaryID())
	}
	return nil
}

func finish(m *metadata) {
	if nil == m.session {
		return
	}
	m.transport.Close()
	storage.Finalise()
	logger.Finalise()
}
