// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpc_test

import (
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"github.com/bitmark-inc/notaryd/counter"
	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/rpc"
	"github.com/bitmark-inc/notaryd/rpc/mocks"
)

func TestNotaryProcess(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	n := rpc.NewNotary(logger.New(logCategory), p, identifier.Zero, "v1", nil, 0, 0)

	request := []byte{1, 2, 3}
	p.EXPECT().Process(request).Return([]byte{4, 5}, nil).Times(1)

	var reply rpc.ProcessReply
	err := n.Process(&rpc.ProcessArguments{Request: request}, &reply)
	assert.Nil(t, err, "wrong Process")
	assert.Equal(t, []byte{4, 5}, reply.Reply, "wrong reply")
}

func TestNotaryProcessError(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	n := rpc.NewNotary(logger.New(logCategory), p, identifier.Zero, "v1", nil, 0, 0)

	p.EXPECT().Process(gomock.Any()).Return(nil, fault.ErrNotRegistered).Times(1)

	var reply rpc.ProcessReply
	err := n.Process(&rpc.ProcessArguments{Request: []byte{9}}, &reply)
	assert.Equal(t, fault.ErrNotRegistered, err, "wrong error")
	assert.Nil(t, reply.Reply, "reply set on error")
}

func TestNotaryProcessMissingRequest(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	n := rpc.NewNotary(logger.New(logCategory), p, identifier.Zero, "v1", nil, 0, 0)

	var reply rpc.ProcessReply
	err := n.Process(&rpc.ProcessArguments{}, &reply)
	assert.Equal(t, fault.ErrMissingParameters, err, "wrong error")
}

func TestNotaryRateLimit(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	n := rpc.NewNotary(logger.New(logCategory), p, identifier.Zero, "v1", nil, 0, 0)

	// a zero burst can never be satisfied
	n.Limiter = rate.NewLimiter(1, 0)

	var reply rpc.ProcessReply
	err := n.Process(&rpc.ProcessArguments{Request: []byte{1}}, &reply)
	assert.Equal(t, fault.ErrRateLimiting, err, "wrong error")
}

func TestNotaryInfo(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	count := counter.Counter(3)
	id := identifier.New([]byte("notary"))
	n := rpc.NewNotary(logger.New(logCategory), mocks.NewMockProcessor(ctl), id, "v1.2", &count, 0, 0)

	var reply rpc.InfoReply
	err := n.Info(&rpc.InfoArguments{}, &reply)
	assert.Nil(t, err, "wrong Info")
	assert.Equal(t, id, reply.NotaryID, "wrong notary")
	assert.Equal(t, "v1.2", reply.Version, "wrong version")
	assert.Equal(t, uint64(3), reply.Connections, "wrong connections")
}

func TestNotaryRateLimitBacklog(t *testing.T) {
	ctl := gomock.NewController(t)
	defer ctl.Finish()

	p := mocks.NewMockProcessor(ctl)
	p.EXPECT().Process([]byte{1}).Return([]byte{2}, nil).Times(1)
	n := rpc.NewNotary(logger.New(logCategory), p, identifier.Zero, "v1", nil, 0, 0)

	// one token every minute: the first request passes, the next
	// would wait far too long
	n.Limiter = rate.NewLimiter(rate.Every(time.Minute), 1)

	var reply rpc.ProcessReply
	err := n.Process(&rpc.ProcessArguments{Request: []byte{1}}, &reply)
	assert.Nil(t, err, "first request")
	assert.Equal(t, []byte{2}, reply.Reply, "reply")

	err = n.Process(&rpc.ProcessArguments{Request: []byte{1}}, &reply)
	assert.Equal(t, fault.ErrRateLimiting, err, "wrong error")
}
