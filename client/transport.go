// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package client

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"net"
	netrpc "net/rpc"
	"net/rpc/jsonrpc"
	"time"

	"github.com/pkg/errors"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/message"
	"github.com/bitmark-inc/notaryd/rpc"
)

// Transport - carry one packed request to the notary and return the
// packed reply
type Transport interface {
	Send(packed []byte) ([]byte, error)
}

// LocalTransport - deliver to an in-process notary
//
// the drop hooks simulate a lost request or a lost reply
type LocalTransport struct {
	Processor    rpc.Processor
	DropOutgoing func(*message.Message) bool
	DropIncoming func(*message.Message) bool
}

// Send - process the request directly
func (t *LocalTransport) Send(packed []byte) ([]byte, error) {
	if dropped(t.DropOutgoing, packed) {
		return nil, fault.ErrMessageDropped
	}
	reply, err := t.Processor.Process(packed)
	if nil != err {
		return nil, err
	}
	if dropped(t.DropIncoming, reply) {
		return nil, fault.ErrMessageDropped
	}
	return reply, nil
}

func dropped(hook func(*message.Message) bool, packed []byte) bool {
	if nil == hook {
		return false
	}
	m, err := message.Unpack(packed)
	if nil != err {
		return false
	}
	return hook(m)
}

// timeout for connecting to a notary
const dialTimeout = 10 * time.Second

// RPCTransport - JSON RPC connection to a notary
type RPCTransport struct {
	conn   net.Conn
	client *netrpc.Client
}

// NewRPCTransport - connect to a notary over TLS
//
// if fingerprint is not empty it is the hex SHA3-256 of the notary's
// DER certificate and the connection is refused on a mismatch
func NewRPCTransport(connect string, fingerprint string) (*RPCTransport, error) {
	var expected []byte
	if "" != fingerprint {
		var err error
		expected, err = hex.DecodeString(fingerprint)
		if nil != err {
			return nil, errors.Wrap(err, "fingerprint")
		}
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: true,
		VerifyPeerCertificate: func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			if nil == expected {
				return nil
			}
			if 0 == len(rawCerts) {
				return fault.ErrInvalidSignature
			}
			fin := rpc.Fingerprint(rawCerts[0])
			if !bytes.Equal(expected, fin[:]) {
				return fault.ErrIncorrectNotary
			}
			return nil
		},
	}

	conn, err := tls.DialWithDialer(&net.Dialer{Timeout: dialTimeout}, "tcp", connect, tlsConfig)
	if nil != err {
		return nil, err
	}

	return &RPCTransport{
		conn:   conn,
		client: jsonrpc.NewClient(conn),
	}, nil
}

// Send - call Notary.Process
func (t *RPCTransport) Send(packed []byte) ([]byte, error) {
	var reply rpc.ProcessReply
	err := t.client.Call("Notary.Process", &rpc.ProcessArguments{Request: packed}, &reply)
	if nil != err {
		return nil, err
	}
	return reply.Reply, nil
}

// Info - the notary's status
func (t *RPCTransport) Info() (*rpc.InfoReply, error) {
	var reply rpc.InfoReply
	err := t.client.Call("Notary.Info", &rpc.InfoArguments{}, &reply)
	if nil != err {
		return nil, err
	}
	return &reply, nil
}

// Close - shutdown the connection
func (t *RPCTransport) Close() {
	t.client.Close()
	t.conn.Close()
}
