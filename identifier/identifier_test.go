// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identifier_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/sha3"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
)

func TestNewIsHashOfConcatenation(t *testing.T) {
	a := []byte("local nym")
	b := []byte("remote nym")

	expected := sha3.Sum256(append(append([]byte{}, a...), b...))
	actual := identifier.New(a, b)

	assert.Equal(t, expected[:], actual[:], "wrong digest")
	assert.Equal(t, actual, identifier.New(a, b), "not deterministic")
	assert.NotEqual(t, actual, identifier.New(b, a), "order must matter")
}

func TestTextRoundTrip(t *testing.T) {
	id := identifier.New([]byte("some content"))

	s := id.String()
	back, err := identifier.FromString(s)
	assert.Nil(t, err, "from string error")
	assert.Equal(t, id, back, "round trip mismatch")

	buffer, err := json.Marshal(id)
	assert.Nil(t, err, "json marshal error")

	var decoded identifier.ID
	err = json.Unmarshal(buffer, &decoded)
	assert.Nil(t, err, "json unmarshal error")
	assert.Equal(t, id, decoded, "json round trip mismatch")
}

func TestInvalid(t *testing.T) {
	_, err := identifier.FromBytes([]byte{1, 2, 3})
	assert.Equal(t, fault.ErrInvalidIdentifier, err, "short buffer accepted")

	_, err = identifier.FromString("0OIl")
	assert.Equal(t, fault.ErrInvalidIdentifier, err, "bad base58 accepted")

	assert.True(t, identifier.Zero.IsZero(), "zero not zero")
	assert.False(t, identifier.New().IsZero(), "hash of nothing is zero")
}
