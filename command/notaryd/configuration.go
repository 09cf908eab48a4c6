// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/configuration"
	"github.com/bitmark-inc/notaryd/dispatch"
	"github.com/bitmark-inc/notaryd/identifier"
	"github.com/bitmark-inc/notaryd/messagebus"
	"github.com/bitmark-inc/notaryd/rpc"
)

// basic defaults (directories and files are relative to the "DataDirectory" from Configuration file)
const (
	defaultDataDirectory = "" // this will error; use "." for the same directory as the config file

	defaultNotaryKeyFile = "notary.private"

	defaultLevelDBDirectory = "data"
	defaultDatabase         = "notary.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "notaryd.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultRPCClients   = 10
	defaultCronInterval = "10s"
)

// to hold log levels
type LoglevelMap map[string]string

// path expanded or calculated defaults
var (
	defaultLogLevels = LoglevelMap{
		logger.DefaultTag: "critical",
	}
)

type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

type CreditsType struct {
	Enabled bool   `gluamapper:"enabled" json:"enabled"`
	Initial uint64 `gluamapper:"initial" json:"initial"`
}

type NotaryType struct {
	PrivateKey   string      `gluamapper:"private_key" json:"private_key"`
	AdminNyms    []string    `gluamapper:"admin_nyms" json:"admin_nyms"`
	UsageCredits CreditsType `gluamapper:"usage_credits" json:"usage_credits"`
	Workers      int         `gluamapper:"workers" json:"workers"`
	QueueSize    int         `gluamapper:"queue_size" json:"queue_size"`
}

type CronType struct {
	Interval string `gluamapper:"interval" json:"interval"`
}

type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string       `gluamapper:"pidfile" json:"pidfile"`
	Database      DatabaseType `gluamapper:"database" json:"database"`

	Notary    NotaryType           `gluamapper:"notary" json:"notary"`
	Cron      CronType             `gluamapper:"cron" json:"cron"`
	ClientRPC rpc.Configuration    `gluamapper:"client_rpc" json:"client_rpc"`
	Logging   logger.Configuration `gluamapper:"logging" json:"logging"`
}

// will read decode and verify the configuration
func getConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultDatabase,
		},

		Notary: NotaryType{
			PrivateKey: defaultNotaryKeyFile,
			Workers:    messagebus.DefaultWorkers,
			QueueSize:  messagebus.DefaultQueueSize,
		},

		Cron: CronType{
			Interval: defaultCronInterval,
		},

		ClientRPC: rpc.Configuration{
			MaximumConnections: defaultRPCClients,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := configuration.ParseConfigurationFile(configurationFileName, options); err != nil {
		return nil, err
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fmt.Errorf("Path: %q is not a valid directory", options.DataDirectory)
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	}
	options.DataDirectory = filepath.Clean(options.DataDirectory)

	// this directory must exist - i.e. must be created prior to running
	if fileInfo, err := os.Stat(options.DataDirectory); nil != err {
		return nil, err
	} else if !fileInfo.IsDir() {
		return nil, fmt.Errorf("Path: %q is not a directory", options.DataDirectory)
	}

	if _, err := options.cronInterval(); nil != err {
		return nil, fmt.Errorf("Cron: interval: %q error: %s", options.Cron.Interval, err)
	}
	if _, err := options.administrators(); nil != err {
		return nil, err
	}

	// force all relevant items to be absolute paths
	// if not, assign them to the data directory
	configuration.EnsureAbsoluteAll(options.DataDirectory,
		&options.Database.Directory,
		&options.Notary.PrivateKey,
		&options.Logging.Directory,
		&options.PidFile, // optional
	)

	// fail if any of these are not simple file names
	for _, f := range []string{options.Database.Name, options.Logging.File} {
		if !configuration.IsPlainName(f) {
			return nil, fmt.Errorf("Files: %q is not plain name", f)
		}
	}
	options.Database.Name = configuration.EnsureAbsolute(options.Database.Directory, options.Database.Name)

	// create directories if they do not already exist
	for _, d := range []string{options.Database.Directory, options.Logging.Directory} {
		if err := os.MkdirAll(d, 0700); nil != err {
			return nil, err
		}
	}

	// done
	return options, nil
}

func (options *Configuration) cronInterval() (time.Duration, error) {
	return time.ParseDuration(options.Cron.Interval)
}

func (options *Configuration) administrators() ([]identifier.ID, error) {
	ids := make([]identifier.ID, 0, len(options.Notary.AdminNyms))
	for _, s := range options.Notary.AdminNyms {
		id, err := identifier.FromString(s)
		if nil != err {
			return nil, fmt.Errorf("Notary: admin nym: %q error: %s", s, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (options *Configuration) dispatch() *dispatch.Configuration {
	admins, _ := options.administrators() // validated on load
	return &dispatch.Configuration{
		Administrators: admins,
		UsageCredits:   options.Notary.UsageCredits.Enabled,
		InitialCredits: options.Notary.UsageCredits.Initial,
	}
}
