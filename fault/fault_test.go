// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package fault_test

import (
	"testing"

	"github.com/bitmark-inc/notaryd/fault"
)

var (
	ErrExistsOne   = fault.ExistsError("exists one ")
	ErrInvalidOne  = fault.InvalidError("invalid one")
	ErrLengthOne   = fault.LengthError("length one")
	ErrNotFoundOne = fault.NotFoundError("not found one")
	ErrProcessOne  = fault.ProcessError("process one")
	ErrRecordOne   = fault.RecordError("record one")
	ErrProtocolOne = fault.ProtocolError("protocol one")
	ErrResourceOne = fault.ResourceError("resource one")
)

// test that the error classes are distinct
func TestClasses(t *testing.T) {
	errorList := []struct {
		err      error
		exists   bool
		invalid  bool
		length   bool
		notFound bool
		process  bool
		record   bool
		protocol bool
		resource bool
	}{
		{ErrExistsOne, true, false, false, false, false, false, false, false},
		{ErrInvalidOne, false, true, false, false, false, false, false, false},
		{ErrLengthOne, false, false, true, false, false, false, false, false},
		{ErrNotFoundOne, false, false, false, true, false, false, false, false},
		{ErrProcessOne, false, false, false, false, true, false, false, false},
		{ErrRecordOne, false, false, false, false, false, true, false, false},
		{ErrProtocolOne, false, false, false, false, false, false, true, false},
		{ErrResourceOne, false, false, false, false, false, false, false, true},
		{fault.ErrIncorrectRequestNumber, false, false, false, false, false, false, true, false},
		{fault.ErrNoTransactionNumbers, false, false, false, false, false, false, false, true},
	}

	for i, e := range errorList {
		err := e.err
		if fault.IsErrExists(err) != e.exists {
			t.Errorf("%d: expected 'exists' == %v for err = %v", i, e.exists, err)
		}
		if fault.IsErrInvalid(err) != e.invalid {
			t.Errorf("%d: expected 'invalid' == %v for err = %v", i, e.invalid, err)
		}
		if fault.IsErrLength(err) != e.length {
			t.Errorf("%d: expected 'length' == %v for err = %v", i, e.length, err)
		}
		if fault.IsErrNotFound(err) != e.notFound {
			t.Errorf("%d: expected 'not found' == %v for err = %v", i, e.notFound, err)
		}
		if fault.IsErrProcess(err) != e.process {
			t.Errorf("%d: expected 'process' == %v for err = %v", i, e.process, err)
		}
		if fault.IsErrRecord(err) != e.record {
			t.Errorf("%d: expected 'record' == %v for err = %v", i, e.record, err)
		}
		if fault.IsErrProtocol(err) != e.protocol {
			t.Errorf("%d: expected 'protocol' == %v for err = %v", i, e.protocol, err)
		}
		if fault.IsErrResource(err) != e.resource {
			t.Errorf("%d: expected 'resource' == %v for err = %v", i, e.resource, err)
		}
	}
}
