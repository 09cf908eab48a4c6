// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/certgen"
	"github.com/bitmark-inc/exitwithstatus"

	"github.com/bitmark-inc/notaryd/configuration"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/rpc"
)

const (
	notaryPrivateKeyFilename = "notary.private"

	rpcCertificateKeyFilename = "rpc.crt"
	rpcPrivateKeyFilename     = "rpc.key"
)

// setup command handler
//
// commands that run to create key and certificate files these
// commands cannot access any internal database or states or the
// configuration file
func processSetupCommand(program string, arguments []string) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
		arguments = arguments[1:]
	}

	switch command {
	case "generate-identity", "id":
		privateKeyFilename := getFilenameWithDirectory(arguments, notaryPrivateKeyFilename)

		if configuration.FileExists(privateKeyFilename) {
			fmt.Printf("generate private key: %q error: %s\n", privateKeyFilename, fault.ErrKeyFileAlreadyExists)
			exitwithstatus.Exit(1)
		}

		notary, err := nym.Generate()
		if nil != err {
			fmt.Printf("generate private key: %q error: %s\n", privateKeyFilename, err)
			exitwithstatus.Exit(1)
		}
		if err := nym.WriteSeedFile(privateKeyFilename, notary); nil != err {
			_ = os.Remove(privateKeyFilename)
			fmt.Printf("generate private key: %q error: %s\n", privateKeyFilename, err)
			exitwithstatus.Exit(1)
		}

		fmt.Printf("generated private key: %q\n", privateKeyFilename)
		fmt.Printf("notary nym: %s\n", notary.ID())
		fmt.Printf("address:    %s\n", notary.Public().Address())

	case "generate-certificate", "rpc":
		certificateFilename := getFilenameWithDirectory(arguments, rpcCertificateKeyFilename)
		privateKeyFilename := getFilenameWithDirectory(arguments, rpcPrivateKeyFilename)

		addresses := []string{}
		if len(arguments) >= 2 {
			for _, a := range arguments[1:] {
				if "" != a {
					addresses = append(addresses, a)
				}
			}
		}

		fingerprint, err := makeSelfSignedCertificate("rpc", certificateFilename, privateKeyFilename, 0 != len(addresses), addresses)
		if nil != err {
			fmt.Printf("generate RPC key: %q and certificate: %q error: %s\n", privateKeyFilename, certificateFilename, err)
			exitwithstatus.Exit(1)
		}
		fmt.Printf("generated RPC key: %q and certificate: %q\n", privateKeyFilename, certificateFilename)
		fmt.Printf("SHA3-256 fingerprint: %x\n", fingerprint)

	case "start", "run":
		return false // continue processing

	case "config-test", "cfg", "nym":
		return false // defer processing until configuration is read

	case "version", "v":
		fmt.Printf("%s\n", version)
		return true

	default:
		switch command {
		case "help", "h", "?":
		case "", " ":
			fmt.Printf("error: missing command\n")
		default:
			fmt.Printf("error: no such command: %q\n", command)
		}
		fmt.Printf("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE [[command|help] arguments...]\n", program)

		fmt.Printf("supported commands:\n\n")
		fmt.Printf("  help                       (h)      - display this message\n\n")
		fmt.Printf("  version                    (v)      - display version sting\n\n")

		fmt.Printf("  generate-identity [DIR]    (id)     - create notary private key in: %q\n", "DIR/"+notaryPrivateKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  generate-certificate [DIR] [IPs...]\n")
		fmt.Printf("                             (rpc)    - create private key in:  %q\n", "DIR/"+rpcPrivateKeyFilename)
		fmt.Printf("                                        and the certificate in: %q\n", "DIR/"+rpcCertificateKeyFilename)
		fmt.Printf("\n")

		fmt.Printf("  nym                                 - display the notary nym and address\n")
		fmt.Printf("\n")

		fmt.Printf("  start                      (run)    - just run the program, same as no arguments\n")
		fmt.Printf("                                        for convienience when passing script arguments\n")
		fmt.Printf("\n")

		fmt.Printf("  config-test                (cfg)    - just check the configuration file\n")
		fmt.Printf("\n")

		exitwithstatus.Exit(1)
	}

	// indicate processing complete and preform normal exit from main
	return true
}

// configuration file enquiry commands
// have configuration file read and decoded, but nothing else
func processConfigCommand(arguments []string, options *Configuration) bool {

	command := "help"
	if len(arguments) > 0 {
		command = arguments[0]
	}

	switch command {
	case "nym":
		notary, err := nym.ReadSeedFile(options.Notary.PrivateKey)
		if nil != err {
			exitwithstatus.Message("error: cannot read notary key: %q  error: %s", options.Notary.PrivateKey, err)
		}
		fmt.Printf("notary nym: %s\n", notary.ID())
		fmt.Printf("address:    %s\n", notary.Public().Address())

	case "config-test", "cfg":
		b, err := json.Marshal(options)
		if err != nil {
			exitwithstatus.Message("error: %s", err)
		}
		var out bytes.Buffer
		json.Indent(&out, b, "", "  ")
		out.WriteTo(os.Stdout)
		os.Stdout.WriteString("\n")

	default: // unknown commands fall through to normal start
		return false
	}

	// indicate processing complete and perform normal exit from main
	return true
}

// create a self-signed certificate
func makeSelfSignedCertificate(name string, certificateFileName string, privateKeyFileName string, override bool, extraHosts []string) ([32]byte, error) {

	if configuration.FileExists(certificateFileName) {
		return [32]byte{}, fault.ErrCertificateAlreadyExists
	}

	if configuration.FileExists(privateKeyFileName) {
		return [32]byte{}, fault.ErrKeyFileAlreadyExists
	}

	org := "notaryd self signed cert for: " + name
	validUntil := time.Now().Add(10 * 365 * 24 * time.Hour)
	cert, key, err := certgen.NewTLSCertPair(org, validUntil, override, extraHosts)
	if err != nil {
		return [32]byte{}, err
	}

	if err = ioutil.WriteFile(certificateFileName, cert, 0666); err != nil {
		return [32]byte{}, err
	}

	if err = ioutil.WriteFile(privateKeyFileName, key, 0600); err != nil {
		os.Remove(certificateFileName)
		return [32]byte{}, err
	}

	keyPair, err := tls.X509KeyPair(cert, key)
	if nil != err {
		return [32]byte{}, err
	}
	return rpc.Fingerprint(keyPair.Certificate[0]), nil
}

// a file name in the directory given as the first argument if any
func getFilenameWithDirectory(arguments []string, name string) string {
	directory := "."
	if len(arguments) > 0 && "" != arguments[0] {
		directory = arguments[0]
	}
	return filepath.Join(directory, name)
}
