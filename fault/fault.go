// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault

// GenericError - error base
type GenericError string

// to allow for different classes of errors
type ExistsError GenericError
type InvalidError GenericError
type LengthError GenericError
type NotFoundError GenericError
type ProcessError GenericError
type RecordError GenericError
type ProtocolError GenericError
type ResourceError GenericError

// common errors - keep in alphabetic order
var (
	ErrAccountNotOwned             = InvalidError("account not owned by nym")
	ErrAccountsNotDistinct         = InvalidError("accounts are not distinct")
	ErrAlreadyInitialised          = ExistsError("already initialised")
	ErrAlreadyRegistered           = ExistsError("already registered")
	ErrBalanceStatementMismatch    = InvalidError("balance statement mismatch")
	ErrBoxReceiptHashMismatch      = RecordError("box receipt hash mismatch")
	ErrBoxReceiptNotFound          = NotFoundError("box receipt not found")
	ErrBoxNotFound                 = NotFoundError("box not found")
	ErrCannotDecodeAmount          = InvalidError("cannot decode amount")
	ErrCertificateAlreadyExists    = ExistsError("certificate file already exists")
	ErrConfigurationFileNotFound   = NotFoundError("configuration file not found")
	ErrContextNotFound             = NotFoundError("context not found")
	ErrDivisionByZero              = InvalidError("division by zero")
	ErrDuplicateTransaction        = ExistsError("duplicate transaction")
	ErrIncorrectNotary             = InvalidError("incorrect notary")
	ErrIncorrectRequestNumber      = ProtocolError("incorrect request number")
	ErrInsufficientFunds           = ProcessError("insufficient funds")
	ErrInvalidAccount              = InvalidError("invalid account")
	ErrInvalidAmount               = InvalidError("invalid amount")
	ErrInvalidBoxKind              = InvalidError("invalid box kind")
	ErrInvalidCommand              = InvalidError("invalid command")
	ErrInvalidConfiguration        = InvalidError("configuration did not return a table")
	ErrInvalidCount                = InvalidError("invalid count")
	ErrInvalidIdentifier           = InvalidError("invalid identifier")
	ErrInvalidIPAddress            = InvalidError("invalid IP address")
	ErrInvalidItemKind             = InvalidError("invalid item kind")
	ErrInvalidItemStatus           = InvalidError("invalid item status")
	ErrInvalidKeyLength            = LengthError("invalid key length")
	ErrInvalidKeyType              = InvalidError("invalid key type")
	ErrInvalidLoggerChannel        = InvalidError("invalid logger channel")
	ErrInvalidNymAddress           = InvalidError("invalid nym address")
	ErrInvalidPayload              = InvalidError("invalid payload")
	ErrInvalidPeriod               = InvalidError("invalid period")
	ErrInvalidSignature            = ProtocolError("invalid signature")
	ErrInvalidTransactionKind      = InvalidError("invalid transaction kind")
	ErrInvalidUnit                 = InvalidError("invalid unit")
	ErrKeyFileAlreadyExists        = ExistsError("key file already exists")
	ErrMessageDropped              = ProcessError("message dropped")
	ErrMissingAccount              = NotFoundError("account not found")
	ErrMissingParameters           = InvalidError("missing parameters")
	ErrMissingUnit                 = NotFoundError("unit not found")
	ErrNoTransactionNumbers        = ResourceError("no transaction numbers available")
	ErrNotAdministrator            = InvalidError("not administrator")
	ErrNotInitialised              = NotFoundError("not initialised")
	ErrNotNormalMode               = ProcessError("not normal mode")
	ErrNotRegistered               = NotFoundError("nym not registered")
	ErrNymNotFound                 = NotFoundError("nym not found")
	ErrNymboxHashMismatch          = ProtocolError("nymbox hash mismatch")
	ErrPaymentPlanNotFound         = NotFoundError("payment plan not found")
	ErrPersistenceFailed           = ProcessError("persistence failed")
	ErrQueueFull                   = ResourceError("queue full")
	ErrRateLimiting                = InvalidError("rate limiting")
	ErrReplyFailed                 = ProcessError("reply failed")
	ErrReplyMismatch               = ProtocolError("reply does not match request")
	ErrShuttingDown                = ProcessError("shutting down")
	ErrSignatureTooLong            = LengthError("signature too long")
	ErrTooManyAcknowledged         = LengthError("too many acknowledged request numbers")
	ErrTransactionAlreadyRunning   = ProcessError("transaction already running")
	ErrTransactionNotFound         = NotFoundError("transaction not found")
	ErrTransactionNotRunning       = ProcessError("transaction not running")
	ErrTransactionNumberNotIssued  = InvalidError("transaction number not issued")
	ErrTransactionNumberNotUsable  = ResourceError("transaction number not available")
	ErrTruncatedRecord             = RecordError("truncated record")
	ErrUnitMismatch                = InvalidError("accounts have different units")
	ErrUnknownRecordType           = RecordError("unknown record type")
	ErrUnsignedAccount             = InvalidError("account not signed by notary")
	ErrUsageCreditsExhausted       = ResourceError("usage credits exhausted")
	ErrWrongNetworkForPublicKey    = InvalidError("wrong network for public key")
	ErrWrongProtocolVersion        = ProtocolError("wrong protocol version")
	ErrZeroOrNegativeAmount        = InvalidError("amount must be positive")
	ErrCannotAllocateTransactionNo = ProcessError("cannot allocate transaction number")
)

// the error interface base method
func (e GenericError) Error() string { return string(e) }

// the error interface methods
func (e ExistsError) Error() string   { return string(e) }
func (e InvalidError) Error() string  { return string(e) }
func (e LengthError) Error() string   { return string(e) }
func (e NotFoundError) Error() string { return string(e) }
func (e ProcessError) Error() string  { return string(e) }
func (e RecordError) Error() string   { return string(e) }
func (e ProtocolError) Error() string { return string(e) }
func (e ResourceError) Error() string { return string(e) }

// determine the class of an error
func IsErrExists(e error) bool   { _, ok := e.(ExistsError); return ok }
func IsErrInvalid(e error) bool  { _, ok := e.(InvalidError); return ok }
func IsErrLength(e error) bool   { _, ok := e.(LengthError); return ok }
func IsErrNotFound(e error) bool { _, ok := e.(NotFoundError); return ok }
func IsErrProcess(e error) bool  { _, ok := e.(ProcessError); return ok }
func IsErrRecord(e error) bool   { _, ok := e.(RecordError); return ok }
func IsErrProtocol(e error) bool { _, ok := e.(ProtocolError); return ok }
func IsErrResource(e error) bool { _, ok := e.(ResourceError); return ok }
