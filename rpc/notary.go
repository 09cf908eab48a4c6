// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc

import (
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/notaryd/counter"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/mode"
)

// default limits
const (
	rateLimitNotary = 200
	rateBurstNotary = 100
)

// Processor - handles one packed request and returns the packed reply
type Processor interface {
	Process(packed []byte) ([]byte, error)
}

// ProcessorFunc - adapt a function to a Processor
type ProcessorFunc func(packed []byte) ([]byte, error)

// Process - call f
func (f ProcessorFunc) Process(packed []byte) ([]byte, error) {
	return f(packed)
}

// Notary - type for RPC
type Notary struct {
	Log       *logger.L
	Limiter   *rate.Limiter
	Processor Processor
	NotaryID  identifier.ID
	Version   string
	Start     time.Time
	Count     *counter.Counter
}

// NewNotary - RPC service in front of processor
//
// zero limit or burst select the defaults
func NewNotary(log *logger.L, processor Processor, notaryID identifier.ID, version string, count *counter.Counter, limit float64, burst int) *Notary {
	if limit <= 0 {
		limit = rateLimitNotary
	}
	if burst <= 0 {
		burst = rateBurstNotary
	}
	return &Notary{
		Log:       log,
		Limiter:   rate.NewLimiter(rate.Limit(limit), burst),
		Processor: processor,
		NotaryID:  notaryID,
		Version:   version,
		Start:     time.Now().UTC(),
		Count:     count,
	}
}

// Process a signed message
// ------------------------

// ProcessArguments - a packed signed request
type ProcessArguments struct {
	Request []byte `json:"request"`
}

// ProcessReply - the packed signed reply
type ProcessReply struct {
	Reply []byte `json:"reply"`
}

// Process - pass a request to the notary
func (notary *Notary) Process(arguments *ProcessArguments, reply *ProcessReply) error {
	if err := rateLimit(notary.Limiter); nil != err {
		return err
	}

	if nil == arguments || 0 == len(arguments.Request) {
		return fault.ErrMissingParameters
	}

	data, err := notary.Processor.Process(arguments.Request)
	if nil != err {
		notary.Log.Debugf("Notary.Process error: %s", err)
		return err
	}
	reply.Reply = data
	return nil
}

// Information about the notary
// ----------------------------

// InfoArguments - empty
type InfoArguments struct{}

// InfoReply - notary status
type InfoReply struct {
	NotaryID    identifier.ID `json:"notaryId"`
	Version     string        `json:"version"`
	Mode        string        `json:"mode"`
	Uptime      string        `json:"uptime"`
	Connections uint64        `json:"connections"`
}

// Info - identity and status of the notary
func (notary *Notary) Info(arguments *InfoArguments, reply *InfoReply) error {
	if err := rateLimit(notary.Limiter); nil != err {
		return err
	}

	reply.NotaryID = notary.NotaryID
	reply.Version = notary.Version
	reply.Mode = mode.String()
	reply.Uptime = time.Since(notary.Start).String()
	if nil != notary.Count {
		reply.Connections = notary.Count.Uint64()
	}
	return nil
}
