// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"github.com/bitmark-inc/notaryd/fault"
)

// BoxKind - type of a box
type BoxKind uint64

// all possible box kinds
const (
	Nymbox BoxKind = iota + 1
	Inbox
	Outbox
	MessageBox
	PaymentInbox
	RecordBox
	ExpiredBox
	boxKindLimit
)

var boxKindNames = map[BoxKind]string{
	Nymbox:       "nymbox",
	Inbox:        "inbox",
	Outbox:       "outbox",
	MessageBox:   "messagebox",
	PaymentInbox: "paymentinbox",
	RecordBox:    "recordbox",
	ExpiredBox:   "expiredbox",
}

// IsValid - true for a known kind
func (k BoxKind) IsValid() bool {
	return k >= Nymbox && k < boxKindLimit
}

// IsAccountBox - true for boxes that belong to an asset account
// rather than to a nym
func (k BoxKind) IsAccountBox() bool {
	switch k {
	case Inbox, Outbox, RecordBox:
		return true
	default:
		return false
	}
}

func (k BoxKind) String() string {
	if s, ok := boxKindNames[k]; ok {
		return s
	}
	return "*unknown*"
}

// MarshalText - name for JSON
func (k BoxKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fault.ErrInvalidBoxKind
	}
	return []byte(k.String()), nil
}

// UnmarshalText - kind from JSON name
func (k *BoxKind) UnmarshalText(s []byte) error {
	for kind, name := range boxKindNames {
		if name == string(s) {
			*k = kind
			return nil
		}
	}
	return fault.ErrInvalidBoxKind
}

// TransactionKind - type of a transaction
type TransactionKind uint64

// all possible transaction kinds
const (
	// client requests
	Transfer TransactionKind = iota + 1
	ProcessInbox
	PaymentPlan

	// notary responses to requests
	TransferResponse
	ProcessInboxResponse
	PaymentPlanResponse

	// receipts and notices placed in boxes
	TransferReceipt
	PaymentReceipt
	FinalReceipt
	ReplyNotice
	NumbersNotice
	Message

	transactionKindLimit
)

var transactionKindNames = map[TransactionKind]string{
	Transfer:             "transfer",
	ProcessInbox:         "processInbox",
	PaymentPlan:          "paymentPlan",
	TransferResponse:     "transferResponse",
	ProcessInboxResponse: "processInboxResponse",
	PaymentPlanResponse:  "paymentPlanResponse",
	TransferReceipt:      "transferReceipt",
	PaymentReceipt:       "paymentReceipt",
	FinalReceipt:         "finalReceipt",
	ReplyNotice:          "replyNotice",
	NumbersNotice:        "numbersNotice",
	Message:              "message",
}

// response kind for each request kind
var responseKinds = map[TransactionKind]TransactionKind{
	Transfer:     TransferResponse,
	ProcessInbox: ProcessInboxResponse,
	PaymentPlan:  PaymentPlanResponse,
}

// IsValid - true for a known kind
func (k TransactionKind) IsValid() bool {
	return k >= Transfer && k < transactionKindLimit
}

// IsRequest - true for kinds a client may submit for notarization
func (k TransactionKind) IsRequest() bool {
	_, ok := responseKinds[k]
	return ok
}

// Response - the kind of the notary response to a request kind
func (k TransactionKind) Response() (TransactionKind, bool) {
	r, ok := responseKinds[k]
	return r, ok
}

func (k TransactionKind) String() string {
	if s, ok := transactionKindNames[k]; ok {
		return s
	}
	return "*unknown*"
}

// MarshalText - name for JSON
func (k TransactionKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fault.ErrInvalidTransactionKind
	}
	return []byte(k.String()), nil
}

// UnmarshalText - kind from JSON name
func (k *TransactionKind) UnmarshalText(s []byte) error {
	for kind, name := range transactionKindNames {
		if name == string(s) {
			*k = kind
			return nil
		}
	}
	return fault.ErrInvalidTransactionKind
}

// ItemKind - type of an item within a transaction
type ItemKind uint64

// all possible item kinds
const (
	TransferItem ItemKind = iota + 1
	BalanceStatementItem
	AcceptReceiptItem
	PaymentPlanItem
	ReceiptItem
	NoticeItem
	itemKindLimit
)

var itemKindNames = map[ItemKind]string{
	TransferItem:         "transfer",
	BalanceStatementItem: "balanceStatement",
	AcceptReceiptItem:    "acceptReceipt",
	PaymentPlanItem:      "paymentPlan",
	ReceiptItem:          "receipt",
	NoticeItem:           "notice",
}

// IsValid - true for a known kind
func (k ItemKind) IsValid() bool {
	return k >= TransferItem && k < itemKindLimit
}

func (k ItemKind) String() string {
	if s, ok := itemKindNames[k]; ok {
		return s
	}
	return "*unknown*"
}

// ItemStatus - outcome recorded on an item
type ItemStatus uint64

// all possible item status values
const (
	Request ItemStatus = iota + 1
	Acknowledgement
	Rejection
	Error
	itemStatusLimit
)

var itemStatusNames = map[ItemStatus]string{
	Request:         "request",
	Acknowledgement: "acknowledgement",
	Rejection:       "rejection",
	Error:           "error",
}

// IsValid - true for a known status
func (s ItemStatus) IsValid() bool {
	return s >= Request && s < itemStatusLimit
}

func (s ItemStatus) String() string {
	if n, ok := itemStatusNames[s]; ok {
		return n
	}
	return "*unknown*"
}

// StatusOf - acknowledgement for success, rejection otherwise
func StatusOf(success bool) ItemStatus {
	if success {
		return Acknowledgement
	}
	return Rejection
}
