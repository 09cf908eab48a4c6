// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/urfave/cli"
)

func runMessage(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	to, err := idFlag(c, "to")
	if nil != err {
		return err
	}
	text := c.String("text")
	if "" == text {
		return fmt.Errorf("text is required")
	}

	if err := m.session.SendMessage(to, text); nil != err {
		return err
	}
	if m.verbose {
		fmt.Fprintf(m.e, "sent to: %s\n", to)
	}
	return nil
}

// sync first so anything waiting in the nymbox is included
func runMessages(c *cli.Context) error {

	m := c.App.Metadata["config"].(*metadata)

	if _, err := m.session.SyncNymbox(); nil != err {
		return err
	}
	messages, err := m.session.Messages()
	if nil != err {
		return err
	}

	views := make([]transactionView, 0, len(messages))
	for _, t := range messages {
		views = append(views, viewTransaction(t, nil))
	}
	printJson(m.w, views)
	return nil
}
