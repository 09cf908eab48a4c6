// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli"

	"github.com/bitmark-inc/notaryd/client"
)

type metadata struct {
	session   *client.Session
	transport *client.RPCTransport
	verbose   bool
	e         io.Writer
	w         io.Writer
}

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

func main() {

	app := cli.NewApp()
	app.Name = "notary-cli"
	app.Usage = "talk to a notaryd"
	app.Version = version
	app.HideVersion = true

	app.Writer = os.Stdout
	app.ErrWriter = os.Stderr

	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "verbose, v",
			Usage: " verbose result",
		},
		cli.StringFlag{
			Name:   "directory, D",
			Value:  ".",
			Usage:  " local state `DIR`",
			EnvVar: "NOTARY_CLI_DIRECTORY",
		},
		cli.StringFlag{
			Name:   "key, k",
			Value:  "client.private",
			Usage:  " client key `FILE` from generate",
			EnvVar: "NOTARY_CLI_KEY",
		},
		cli.StringFlag{
			Name:   "notary, n",
			Value:  "",
			Usage:  "*notary `ADDRESS` as shown by: notaryd nym",
			EnvVar: "NOTARY_CLI_NOTARY",
		},
		cli.StringFlag{
			Name:   "connect, c",
			Value:  "127.0.0.1:2140",
			Usage:  " notaryd `HOST:PORT`",
			EnvVar: "NOTARY_CLI_CONNECT",
		},
		cli.StringFlag{
			Name:   "fingerprint, f",
			Value:  "",
			Usage:  "*notaryd certificate SHA3-256 `HEX`",
			EnvVar: "NOTARY_CLI_FINGERPRINT",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "generate",
			Usage:     "generate a client key file",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runGenerate,
		},
		{
			Name:      "info",
			Usage:     "display notary status",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runInfo,
		},
		{
			Name:      "register",
			Usage:     "register the client nym with the notary",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runRegister,
		},
		{
			Name:      "request-number",
			Usage:     "resynchronise the request number",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runRequestNumber,
		},
		{
			Name:      "numbers",
			Usage:     "obtain more transaction numbers",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "count, n",
					Value: 10,
					Usage: " how many `COUNT`",
				},
			},
			Action: runNumbers,
		},
		{
			Name:      "sync",
			Usage:     "download and process the nymbox",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runSync,
		},
		{
			Name:      "register-unit",
			Usage:     "create a unit and its issuer account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "name, n",
					Value: "",
					Usage: "*unit `NAME`",
				},
				cli.StringFlag{
					Name:  "symbol, s",
					Value: "",
					Usage: "*unit `SYMBOL`",
				},
				cli.IntFlag{
					Name:  "decimals, d",
					Value: 2,
					Usage: " display `DIGITS` after the decimal point",
				},
			},
			Action: runRegisterUnit,
		},
		{
			Name:      "register-account",
			Usage:     "open an account of a unit",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "unit, u",
					Value: "",
					Usage: "*unit `ID`",
				},
			},
			Action: runRegisterAccount,
		},
		{
			Name:      "account",
			Usage:     "display an owned account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*account `ID`",
				},
			},
			Action: runAccount,
		},
		{
			Name:      "transfer",
			Usage:     "send value to another account",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, f",
					Value: "",
					Usage: "*owned account `ID`",
				},
				cli.StringFlag{
					Name:  "to, t",
					Value: "",
					Usage: "*destination account `ID`",
				},
				cli.StringFlag{
					Name:  "amount, a",
					Value: "",
					Usage: "*value in unit display form `AMOUNT`",
				},
				cli.StringFlag{
					Name:  "note, m",
					Value: "",
					Usage: " `TEXT` for the receipt",
				},
			},
			Action: runTransfer,
		},
		{
			Name:      "process-inbox",
			Usage:     "accept every receipt in an account's inbox",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "account, a",
					Value: "",
					Usage: "*owned account `ID`",
				},
			},
			Action: runProcessInbox,
		},
		{
			Name:      "payment-plan",
			Usage:     "pay another account periodically",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "from, f",
					Value: "",
					Usage: "*owned account `ID`",
				},
				cli.StringFlag{
					Name:  "to, t",
					Value: "",
					Usage: "*destination account `ID`",
				},
				cli.StringFlag{
					Name:  "amount, a",
					Value: "",
					Usage: "*value of each payment `AMOUNT`",
				},
				cli.DurationFlag{
					Name:  "period, p",
					Usage: "*time between payments `DURATION`",
				},
				cli.Uint64Flag{
					Name:  "count, n",
					Value: 1,
					Usage: " number of payments `COUNT`",
				},
			},
			Action: runPaymentPlan,
		},
		{
			Name:      "message",
			Usage:     "send a message to another nym",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "to, t",
					Value: "",
					Usage: "*recipient nym `ID`",
				},
				cli.StringFlag{
					Name:  "text, m",
					Value: "",
					Usage: "*message `TEXT`",
				},
			},
			Action: runMessage,
		},
		{
			Name:      "messages",
			Usage:     "list received messages",
			ArgsUsage: "\n   (* = required)",
			Flags:     []cli.Flag{},
			Action:    runMessages,
		},
		{
			Name:  "version",
			Usage: "display notary-cli version",
			Action: func(c *cli.Context) error {
				fmt.Fprintf(c.App.Writer, "%s\n", version)
				return nil
			},
		},
	}

	// open the local state and connect to the notary
	app.Before = func(c *cli.Context) error {

		m := &metadata{
			verbose: c.GlobalBool("verbose"),
			e:       c.App.ErrWriter,
			w:       c.App.Writer,
		}
		c.App.Metadata["config"] = m

		// commands that need neither state nor connection
		switch c.Args().Get(0) {
		case "", "version", "generate", "help", "h":
			return nil
		}

		return setup(c, m)
	}

	app.After = func(c *cli.Context) error {
		if m, ok := c.App.Metadata["config"].(*metadata); ok {
			finish(m)
		}
		return nil
	}

	err := app.Run(os.Args)
	if nil != err {
		fmt.Fprintf(app.ErrWriter, "terminated with error: %s\n", err)
		os.Exit(1)
	}
}
