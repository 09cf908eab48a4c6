// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier

import (
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/notaryd/fault"
)

// Length - number of bytes in an identifier
const Length = 32

// ID - content derived identifier
//
// stored as the raw SHA3-256 bytes
// represented as Base58 text for print and JSON encoding
// to convert to bytes just use id[:]
type ID [Length]byte

// Zero - the unset identifier
var Zero ID

// New - derive an identifier from the concatenation of the parts
func New(parts ...[]byte) ID {
	h := sha3.New256()
	for _, p := range parts {
		h.Write(p)
	}
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// FromBytes - convert and validate a binary byte slice to an identifier
func FromBytes(buffer []byte) (ID, error) {
	var id ID
	if Length != len(buffer) {
		return id, fault.ErrInvalidIdentifier
	}
	copy(id[:], buffer)
	return id, nil
}

// FromString - convert Base58 text to an identifier
func FromString(s string) (ID, error) {
	buffer, err := base58.Decode(s)
	if nil != err {
		return Zero, fault.ErrInvalidIdentifier
	}
	return FromBytes(buffer)
}

// IsZero - true if the identifier was never set
func (id ID) IsZero() bool {
	return Zero == id
}

// Bytes - copy of the identifier as a byte slice
func (id ID) Bytes() []byte {
	b := make([]byte, Length)
	copy(b, id[:])
	return b
}

// String - Base58 representation for the fmt package (for %s)
func (id ID) String() string {
	return base58.Encode(id[:])
}

// GoString - representation for the fmt package (for %#v)
func (id ID) GoString() string {
	return "<ID:" + base58.Encode(id[:]) + ">"
}

// MarshalText - convert identifier to Base58 text
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText - convert Base58 text into an identifier
func (id *ID) UnmarshalText(s []byte) error {
	i, err := FromString(string(s))
	if nil != err {
		return err
	}
	*id = i
	return nil
}
