// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cron_test

import (
	"fmt"
	"io/ioutil"
	"os"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/nym"
	"github.com/bitmark-inc/notaryd/storage"
)

func TestMain(m *testing.M) {
	dir := setupTestLogger()

	if err := storage.InitialiseMemory(); nil != err {
		panic(fmt.Sprintf("storage initialise error: %s", err))
	}

	rc := m.Run()

	storage.Finalise()
	teardownTestLogger(dir)
	os.Exit(rc)
}

func setupTestLogger() string {
	dir, err := ioutil.TempDir("", "cron-test")
	if nil != err {
		panic(fmt.Sprintf("temp dir error: %s", err))
	}

	logging := logger.Configuration{
		Directory: dir,
		File:      "cron.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); nil != err {
		panic(fmt.Sprintf("logger initialise error: %s", err))
	}
	return dir
}

func teardownTestLogger(dir string) {
	logger.Finalise()
	os.RemoveAll(dir)
}

func makeNym(t *testing.T) *nym.PrivateNym {
	n, err := nym.Generate()
	if nil != err {
		t.Fatalf("generate nym error: %s", err)
	}
	return n
}
