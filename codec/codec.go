// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec - canonical binary packing for signed records
//
// every field is a varint or a varint length followed by bytes, so
// the packing of a record is unique and can be signed
package codec

import (
	"github.com/gogo/protobuf/proto"

	"github.com/bitmark-inc/notaryd/fault"
	"github.com/bitmark-inc/notaryd/identifier"
)

// MaximumFieldLength - sanity limit on a single length-prefixed field
const MaximumFieldLength = 64 * 1024 * 1024

// AppendUint64 - append a varint
func AppendUint64(buffer []byte, n uint64) []byte {
	return append(buffer, proto.EncodeVarint(n)...)
}

// AppendInt64 - append a signed value as zigzag varint
func AppendInt64(buffer []byte, n int64) []byte {
	return AppendUint64(buffer, uint64(n<<1)^uint64(n>>63))
}

// AppendBool - append a boolean as a single varint
func AppendBool(buffer []byte, b bool) []byte {
	if b {
		return AppendUint64(buffer, 1)
	}
	return AppendUint64(buffer, 0)
}

// AppendBytes - append a length-prefixed byte slice
func AppendBytes(buffer []byte, data []byte) []byte {
	buffer = AppendUint64(buffer, uint64(len(data)))
	return append(buffer, data...)
}

// AppendString - append a length-prefixed string
func AppendString(buffer []byte, s string) []byte {
	return AppendBytes(buffer, []byte(s))
}

// AppendID - append an identifier as a length-prefixed field
func AppendID(buffer []byte, id identifier.ID) []byte {
	return AppendBytes(buffer, id[:])
}

// AppendNumbers - append a count followed by each number
func AppendNumbers(buffer []byte, numbers []uint64) []byte {
	buffer = AppendUint64(buffer, uint64(len(numbers)))
	for _, n := range numbers {
		buffer = AppendUint64(buffer, n)
	}
	return buffer
}

// Reader - sequential decoder for a packed record
//
// the first error is sticky, all later reads return zero values
type Reader struct {
	buffer []byte
	offset int
	err    error
}

// NewReader - start decoding a packed record
func NewReader(buffer []byte) *Reader {
	return &Reader{
		buffer: buffer,
	}
}

// Uint64 - read a varint
func (r *Reader) Uint64() uint64 {
	if nil != r.err {
		return 0
	}
	n, count := proto.DecodeVarint(r.buffer[r.offset:])
	if 0 == count {
		r.err = fault.ErrTruncatedRecord
		return 0
	}
	r.offset += count
	return n
}

// Int64 - read a zigzag varint
func (r *Reader) Int64() int64 {
	u := r.Uint64()
	return int64(u>>1) ^ -int64(u&1)
}

// Bool - read a boolean
func (r *Reader) Bool() bool {
	switch r.Uint64() {
	case 0:
		return false
	case 1:
		return true
	default:
		if nil == r.err {
			r.err = fault.ErrUnknownRecordType
		}
		return false
	}
}

// Bytes - read a length-prefixed byte slice, the result is a copy
func (r *Reader) Bytes() []byte {
	length := r.Uint64()
	if nil != r.err {
		return nil
	}
	if length > MaximumFieldLength || uint64(len(r.buffer)-r.offset) < length {
		r.err = fault.ErrTruncatedRecord
		return nil
	}
	end := r.offset + int(length)
	data := make([]byte, length)
	copy(data, r.buffer[r.offset:end])
	r.offset = end
	return data
}

// String - read a length-prefixed string
func (r *Reader) String() string {
	return string(r.Bytes())
}

// ID - read a length-prefixed identifier
func (r *Reader) ID() identifier.ID {
	b := r.Bytes()
	if nil != r.err {
		return identifier.Zero
	}
	id, err := identifier.FromBytes(b)
	if nil != err {
		r.err = err
		return identifier.Zero
	}
	return id
}

// Numbers - read a count followed by that many numbers
func (r *Reader) Numbers() []uint64 {
	count := r.Uint64()
	if nil != r.err {
		return nil
	}
	// every number takes at least one byte
	if count > uint64(len(r.buffer)-r.offset) {
		r.err = fault.ErrTruncatedRecord
		return nil
	}
	numbers := make([]uint64, 0, count)
	for i := uint64(0); i < count; i += 1 {
		numbers = append(numbers, r.Uint64())
	}
	if nil != r.err {
		return nil
	}
	return numbers
}

// Offset - number of bytes consumed so far
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining - number of bytes not yet consumed
func (r *Reader) Remaining() int {
	return len(r.buffer) - r.offset
}

// Err - the first error encountered, if any
func (r *Reader) Err() error {
	return r.err
}

// Done - error if decoding failed or trailing data remains
func (r *Reader) Done() error {
	if nil != r.err {
		return r.err
	}
	if r.offset != len(r.buffer) {
		return fault.ErrTruncatedRecord
	}
	return nil
}
