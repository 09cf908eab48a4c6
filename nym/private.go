// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package nym

import (
	"crypto/rand"
	"encoding/hex"
	"io/ioutil"
	"strings"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/notaryd/fault"
)

// PrivateNym - a nym together with its signing key
type PrivateNym struct {
	Nym
	privateKey ed25519.PrivateKey
}

// Generate - create a fresh random identity
func Generate() (*PrivateNym, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); nil != err {
		return nil, err
	}
	return FromSeed(seed)
}

// FromSeed - recreate an identity from its 32 byte seed
func FromSeed(seed []byte) (*PrivateNym, error) {
	if ed25519.SeedSize != len(seed) {
		return nil, fault.ErrInvalidKeyLength
	}
	privateKey := ed25519.NewKeyFromSeed(seed)
	n, err := New(privateKey.Public().(ed25519.PublicKey))
	if nil != err {
		return nil, err
	}
	return &PrivateNym{
		Nym:        *n,
		privateKey: privateKey,
	}, nil
}

// Public - the public half
func (p *PrivateNym) Public() *Nym {
	n := p.Nym
	return &n
}

// Seed - the 32 byte seed, keep secret
func (p *PrivateNym) Seed() []byte {
	return p.privateKey.Seed()
}

// Sign - sign a message
func (p *PrivateNym) Sign(message []byte) Signature {
	return ed25519.Sign(p.privateKey, message)
}

// ReadSeedFile - load an identity from a file holding the hex seed
func ReadSeedFile(fileName string) (*PrivateNym, error) {
	data, err := ioutil.ReadFile(fileName)
	if nil != err {
		return nil, err
	}
	seed, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if nil != err {
		return nil, fault.ErrInvalidKeyLength
	}
	return FromSeed(seed)
}

// WriteSeedFile - save the hex seed, the file must not already exist
func WriteSeedFile(fileName string, p *PrivateNym) error {
	return ioutil.WriteFile(fileName, []byte(hex.EncodeToString(p.Seed())+"\n"), 0600)
}
