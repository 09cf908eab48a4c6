// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package message

import (
	"github.com/bitmark-inc/notaryd/fault"
)

// Command - type of a message
type Command uint64

// all commands, each request has one reply
const (
	RegisterNym Command = iota + 1
	RegisterNymReply
	GetRequestNumber
	GetRequestNumberReply
	GetTransactionNumbers
	GetTransactionNumbersReply
	GetNymbox
	GetNymboxReply
	GetBoxReceipt
	GetBoxReceiptReply
	ProcessNymbox
	ProcessNymboxReply
	RegisterUnit
	RegisterUnitReply
	RegisterAccount
	RegisterAccountReply
	GetAccountData
	GetAccountDataReply
	NotarizeTransaction
	NotarizeTransactionReply
	SendNymMessage
	SendNymMessageReply
	AdjustUsageCredits
	AdjustUsageCreditsReply
	PingNotary
	PingNotaryReply

	commandLimit
)

var commandNames = map[Command]string{
	RegisterNym:                "registerNym",
	RegisterNymReply:           "registerNymReply",
	GetRequestNumber:           "getRequestNumber",
	GetRequestNumberReply:      "getRequestNumberReply",
	GetTransactionNumbers:      "getTransactionNumbers",
	GetTransactionNumbersReply: "getTransactionNumbersReply",
	GetNymbox:                  "getNymbox",
	GetNymboxReply:             "getNymboxReply",
	GetBoxReceipt:              "getBoxReceipt",
	GetBoxReceiptReply:         "getBoxReceiptReply",
	ProcessNymbox:              "processNymbox",
	ProcessNymboxReply:         "processNymboxReply",
	RegisterUnit:               "registerUnit",
	RegisterUnitReply:          "registerUnitReply",
	RegisterAccount:            "registerAccount",
	RegisterAccountReply:       "registerAccountReply",
	GetAccountData:             "getAccountData",
	GetAccountDataReply:        "getAccountDataReply",
	NotarizeTransaction:        "notarizeTransaction",
	NotarizeTransactionReply:   "notarizeTransactionReply",
	SendNymMessage:             "sendNymMessage",
	SendNymMessageReply:        "sendNymMessageReply",
	AdjustUsageCredits:         "adjustUsageCredits",
	AdjustUsageCreditsReply:    "adjustUsageCreditsReply",
	PingNotary:                 "pingNotary",
	PingNotaryReply:            "pingNotaryReply",
}

// commands whose outcome is also dropped into the nymbox as a reply
// notice
var replyNoticeCommands = map[Command]struct{}{
	GetTransactionNumbers: {},
	ProcessNymbox:         {},
	RegisterUnit:          {},
	RegisterAccount:       {},
	NotarizeTransaction:   {},
	SendNymMessage:        {},
}

// commands that must carry the nymbox hash last declared by the notary
var hashCheckedCommands = map[Command]struct{}{
	GetTransactionNumbers: {},
	ProcessNymbox:         {},
	NotarizeTransaction:   {},
}

// IsValid - true for a known command
func (c Command) IsValid() bool {
	return c >= RegisterNym && c < commandLimit
}

// IsRequest - true for a request command
func (c Command) IsRequest() bool {
	return c.IsValid() && 1 == c%2
}

// Reply - the reply command of a request
func (c Command) Reply() (Command, bool) {
	if !c.IsRequest() {
		return 0, false
	}
	return c + 1, true
}

// IsBootstrap - true for commands accepted without a matching
// request number
func (c Command) IsBootstrap() bool {
	return RegisterNym == c || GetRequestNumber == c
}

// DropsReplyNotice - true if the reply is also sent through the nymbox
func (c Command) DropsReplyNotice() bool {
	_, ok := replyNoticeCommands[c]
	return ok
}

// ChecksNymboxHash - true if the request must agree on the nymbox hash
func (c Command) ChecksNymboxHash() bool {
	_, ok := hashCheckedCommands[c]
	return ok
}

// String - command name
func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "*unknown*"
}

// MarshalText - command name as JSON text
func (c Command) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, fault.ErrInvalidCommand
	}
	return []byte(c.String()), nil
}

// UnmarshalText - command from its name
func (c *Command) UnmarshalText(s []byte) error {
	for k, v := range commandNames {
		if v == string(s) {
			*c = k
			return nil
		}
	}
	return fault.ErrInvalidCommand
}
