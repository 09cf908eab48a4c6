// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nym

import (
	"bytes"

	"github.com/gogo/protobuf/proto"
	"github.com/mr-tron/base58"
	"golang.org/x/crypto/ed25519"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
)

// enumeration of supported key algorithms
const (
	Nothing = iota // zero keytype **Just for Testing**
	ED25519 = iota
	// end of list (one greater than last item)
	algorithmLimit = iota
)

// miscellaneous constants
const (
	checksumLength = 4

	// bits in key code starting from LSB
	publicKeyCode = 0x01

	algorithmShift = 4 // shift 4 bits to get algorithm
)

// Signer - anything that can sign on behalf of a nym
type Signer interface {
	ID() identifier.ID
	Sign(message []byte) Signature
}

// Verifier - anything that can check a nym's signature
type Verifier interface {
	ID() identifier.ID
	Verify(message []byte, signature Signature) error
}

// Identity - a nym that can both sign and check its own signatures
type Identity interface {
	ID() identifier.ID
	Sign(message []byte) Signature
	Verify(message []byte, signature Signature) error
}

// Nym - the public half of a cryptographic identity
type Nym struct {
	publicKey ed25519.PublicKey
	id        identifier.ID
}

// New - create a nym from a raw ed25519 public key
func New(publicKey []byte) (*Nym, error) {
	if ed25519.PublicKeySize != len(publicKey) {
		return nil, fault.ErrInvalidKeyLength
	}
	pk := make([]byte, ed25519.PublicKeySize)
	copy(pk, publicKey)
	return &Nym{
		publicKey: pk,
		id:        identifier.New(pk),
	}, nil
}

// FromAddress - this converts a Base58 encoded address and returns a nym
func FromAddress(address string) (*Nym, error) {
	decoded, err := base58.Decode(address)
	if nil != err || 0 == len(decoded) {
		return nil, fault.ErrInvalidNymAddress
	}

	// Parse the key variant
	keyVariant, keyVariantLength := proto.DecodeVarint(decoded)

	// Check key type
	if 0 == keyVariantLength || keyVariant&publicKeyCode != publicKeyCode {
		return nil, fault.ErrInvalidKeyType
	}

	// compute algorithm
	if ED25519 != keyVariant>>algorithmShift {
		return nil, fault.ErrInvalidKeyType
	}

	// Compute key length
	keyLength := len(decoded) - keyVariantLength - checksumLength
	if ed25519.PublicKeySize != keyLength {
		return nil, fault.ErrInvalidKeyLength
	}

	// Checksum
	checksumStart := len(decoded) - checksumLength
	checksum := sha3.Sum256(decoded[:checksumStart])
	if !bytes.Equal(checksum[:checksumLength], decoded[checksumStart:]) {
		return nil, fault.ErrInvalidNymAddress
	}

	return New(decoded[keyVariantLength:checksumStart])
}

// ID - the nym identifier, hash of the public key
func (n *Nym) ID() identifier.ID {
	return n.id
}

// PublicKey - copy of the raw public key
func (n *Nym) PublicKey() []byte {
	pk := make([]byte, len(n.publicKey))
	copy(pk, n.publicKey)
	return pk
}

// Address - Base58 encoding of key variant, public key and checksum
func (n *Nym) Address() string {
	keyVariant := uint64(ED25519<<algorithmShift) | publicKeyCode
	buffer := proto.EncodeVarint(keyVariant)
	buffer = append(buffer, n.publicKey...)
	checksum := sha3.Sum256(buffer)
	buffer = append(buffer, checksum[:checksumLength]...)
	return base58.Encode(buffer)
}

// String - for the fmt package
func (n *Nym) String() string {
	return n.Address()
}

// Verify - check the signature of a message
func (n *Nym) Verify(message []byte, signature Signature) error {
	if ed25519.SignatureSize != len(signature) {
		return fault.ErrInvalidSignature
	}
	if !ed25519.Verify(n.publicKey, message, signature) {
		return fault.ErrInvalidSignature
	}
	return nil
}

// MarshalText - convert nym to Base58 address text
func (n *Nym) MarshalText() ([]byte, error) {
	return []byte(n.Address()), nil
}

// UnmarshalText - convert Base58 address text into a nym
func (n *Nym) UnmarshalText(s []byte) error {
	a, err := FromAddress(string(s))
	if nil != err {
		return err
	}
	*n = *a
	return nil
}
