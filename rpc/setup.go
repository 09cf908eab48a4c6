// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"net/rpc"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/counter"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
)

// globals
type rpcData struct {
	sync.RWMutex // to allow locking

	log *logger.L // logger

	listener *Listener
	count    counter.Counter

	// set once during initialise
	initialised bool
}

// global data
var globalData rpcData

// Initialise - start the TLS JSON RPC listeners
func Initialise(configuration *Configuration, processor Processor, notaryID identifier.ID, version string) error {

	globalData.Lock()
	defer globalData.Unlock()

	// no need to Start if already started
	if globalData.initialised {
		return fault.ErrAlreadyInitialised
	}

	log := logger.New("rpc")
	globalData.log = log
	log.Info("starting…")

	tlsConfig, fingerprint, err := Certificate(log, logName, configuration.Certificate, configuration.PrivateKey)
	if nil != err {
		return err
	}

	server := rpc.NewServer()
	notary := NewNotary(log, processor, notaryID, version, &globalData.count, configuration.RateLimit, configuration.RateBurst)
	if err := server.Register(notary); nil != err {
		return err
	}

	listener, err := NewListener(configuration, log, &globalData.count, server, tlsConfig, fingerprint)
	if nil != err {
		return err
	}
	if err := listener.Serve(); nil != err {
		return err
	}
	globalData.listener = listener

	// all data initialised
	globalData.initialised = true

	return nil
}

// Finalise - stop accepting connections
func Finalise() error {

	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.ErrNotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()

	globalData.listener.Close()
	globalData.listener = nil

	// finally...
	globalData.initialised = false

	globalData.log.Info("finished")
	globalData.log.Flush()

	return nil
}
