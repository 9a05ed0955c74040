// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package expirer is the Active Expirer: a periodic sweep that reclaims
// keys whose TTL has elapsed but that no read has touched since. It is the
// TTL-keyspace analogue of cc-backend's taskmanager retention job.
package expirer

import (
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/go-co-op/gocron/v2"

	"github.com/ClusterCockpit/cc-respd/internal/store"
)

// Expirer owns a gocron scheduler running one recurring job against a
// Store.
type Expirer struct {
	scheduler gocron.Scheduler
	store     *store.Store
	onEvict   func(n int)
}

// New builds an Expirer that samples sampleSize keys per tick, every
// interval, evicting any it finds expired. onEvict, if non-nil, is called
// after every tick with the number evicted (used to feed a Prometheus
// counter without this package depending on the metrics package).
func New(st *store.Store, interval time.Duration, sampleSize int, onEvict func(n int)) (*Expirer, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	e := &Expirer{scheduler: scheduler, store: st, onEvict: onEvict}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			n := st.SampleExpire(sampleSize)
			if n > 0 {
				cclog.Debugf("[EXPIRER]> evicted %d expired key(s)", n)
			}
			if e.onEvict != nil {
				e.onEvict(n)
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// Start begins running the scheduled sweep. Non-blocking.
func (e *Expirer) Start() {
	e.scheduler.Start()
}

// Shutdown stops the scheduler and waits for any in-flight tick to finish.
func (e *Expirer) Shutdown() error {
	return e.scheduler.Shutdown()
}
