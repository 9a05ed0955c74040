// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package admin

import (
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/cc-respd/internal/metrics"
	"github.com/ClusterCockpit/cc-respd/internal/store"
)

func startTestAdmin(t *testing.T) (addr string, shutdown func()) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	metrics.New(reg)
	st := store.New(0)

	srv := New(ln, reg, st)
	go func() { _ = srv.Serve() }()
	time.Sleep(10 * time.Millisecond)

	return ln.Addr().String(), func() { _ = srv.Shutdown() }
}

func TestHealthz(t *testing.T) {
	addr, shutdown := startTestAdmin(t)
	defer shutdown()

	resp, err := http.Get("http://" + addr + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `"status":"ok"`)
}

func TestMetricsEndpointServesPrometheusFormat(t *testing.T) {
	addr, shutdown := startTestAdmin(t)
	defer shutdown()

	resp, err := http.Get("http://" + addr + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "cc_respd_keys_total")
}
