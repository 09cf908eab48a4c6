// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package cron - periodic processing of payment plans
//
// each tick holds the engine lock so no request is notarized while
// plan payments move balances
package cron

import (
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/bitmark-inc/notaryd/notary"
	"github.com/bitmark-inc/notaryd/storage"
)

// default time between ticks
const DefaultInterval = 10 * time.Second

// Cron - background process running due plans
type Cron struct {
	log      *logger.L
	engine   *notary.Engine
	interval time.Duration
}

// New - cron for an engine, a zero interval means DefaultInterval
func New(engine *notary.Engine, interval time.Duration) *Cron {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Cron{
		log:      logger.New("cron"),
		engine:   engine,
		interval: interval,
	}
}

// Run - background process loop
func (c *Cron) Run(args interface{}, shutdown <-chan struct{}) {
	c.log.Infof("starting…  interval: %s", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			if _, err := c.Process(); nil != err {
				c.log.Errorf("process error: %s", err)
			}
		}
	}

	c.log.Info("shutting down…")
	c.log.Flush()
}

// Process - run every plan that is due
//
// each plan payment commits separately, returns the number of
// payments made
func (c *Cron) Process() (int, error) {
	return c.ProcessAt(c.engine.Now())
}

// ProcessAt - run every plan due at a given time
func (c *Cron) ProcessAt(now time.Time) (int, error) {
	c.engine.Lock()
	defer c.engine.Unlock()

	plans, err := c.engine.Plans().Due(now.Unix())
	if nil != err {
		return 0, err
	}

	count := 0
	for _, plan := range plans {
		trx, err := storage.NewDBTransaction()
		if nil != err {
			return count, err
		}
		finished, err := c.engine.RunPlan(trx, plan)
		if nil != err {
			trx.Abort()
			c.log.Errorf("plan: %d  error: %s", plan.Number, err)
			continue
		}
		if err := trx.Commit(); nil != err {
			return count, err
		}
		count += 1
		c.log.Debugf("plan: %d  paid: %d  finished: %t", plan.Number, plan.Paid, finished)
	}
	return count, nil
}
