// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package respserver is the TCP front end: it accepts connections and
// hands each one to a Connection Driver running the RESP request/response
// (and, after SUBSCRIBE, subscriber-only) protocol against the Keyspace
// Engine.
package respserver

import (
	"errors"
	"net"
	"strconv"
	"sync"
	"sync/atomic"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"golang.org/x/time/rate"

	"github.com/ClusterCockpit/cc-respd/internal/store"
)

var errInvalidFrame = errors.New("respserver: malformed RESP frame")

// Config controls Server behavior. A zero-value ConnRateLimit disables
// per-connection rate limiting entirely (spec.md §4.4, ambient-stack
// addition — never alters protocol semantics, only throttles how often a
// connection's commands are accepted).
type Config struct {
	ConnRateLimit float64 // commands/sec per connection, 0 disables
	ConnRateBurst int
}

// Hooks are optional callbacks the Server invokes at connection and
// command boundaries, used to feed Prometheus counters without coupling
// this package to the metrics package.
type Hooks struct {
	OnCommand    func(name string)
	OnConnect    func()
	OnDisconnect func()
}

// Server owns the listening socket and the lifetime of every accepted
// connection's goroutine.
type Server struct {
	listener net.Listener
	store    *store.Store
	cfg      Config
	hooks    Hooks

	wg     sync.WaitGroup
	nextID int64

	closeOnce sync.Once
}

// New wraps an already-bound listener. Any zero-valued field of hooks is
// simply never called.
func New(listener net.Listener, st *store.Store, cfg Config, hooks Hooks) *Server {
	return &Server{listener: listener, store: st, cfg: cfg, hooks: hooks}
}

// Serve accepts connections until the listener is closed, spawning one
// Connection Driver goroutine per connection. It returns once Accept
// starts failing (normally because Shutdown closed the listener).
func (s *Server) Serve() error {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			return err
		}

		var limiter *rate.Limiter
		if s.cfg.ConnRateLimit > 0 {
			burst := s.cfg.ConnRateBurst
			if burst <= 0 {
				burst = 1
			}
			limiter = rate.NewLimiter(rate.Limit(s.cfg.ConnRateLimit), burst)
		}

		id := atomic.AddInt64(&s.nextID, 1)
		c := newConn(strconv.FormatInt(id, 10), nc, s.store, limiter, s.hooks.OnCommand)

		if s.hooks.OnConnect != nil {
			s.hooks.OnConnect()
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() {
				if s.hooks.OnDisconnect != nil {
					s.hooks.OnDisconnect()
				}
			}()
			c.serve()
		}()
	}
}

// Shutdown closes the listener and blocks until every in-flight
// connection's goroutine has returned.
func (s *Server) Shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.listener.Close()
	})
	s.wg.Wait()
	cclog.Info("[RESPSERVER]> all connections drained")
	return err
}
