// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package admin is the observability surface: a small gorilla/mux-routed
// HTTP server, separate from the RESP protocol listener, exposing a health
// check and a Prometheus scrape endpoint. cc-backend routes its whole API
// this way; cc-respd only needs these two routes.
package admin

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ClusterCockpit/cc-respd/internal/store"
)

// Server is the admin HTTP front end.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
}

// New builds the router and binds it to listener. reg is the Prometheus
// registry to serve at /metrics. /healthz always answers
// {"status":"ok"}; st is passed to its handler but not read.
func New(listener net.Listener, reg *prometheus.Registry, st *store.Store) *Server {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", healthzHandler(st)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	return &Server{
		httpServer: &http.Server{Handler: r},
		listener:   listener,
	}
}

func healthzHandler(st *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

// Serve blocks until the listener is closed.
func (s *Server) Serve() error {
	err := s.httpServer.Serve(s.listener)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops accepting new requests and waits for in-flight ones to
// finish.
func (s *Server) Shutdown() error {
	return s.httpServer.Shutdown(context.Background())
}
