// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"github.com/google/gops/agent"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ClusterCockpit/cc-respd/internal/admin"
	"github.com/ClusterCockpit/cc-respd/internal/config"
	"github.com/ClusterCockpit/cc-respd/internal/expirer"
	"github.com/ClusterCockpit/cc-respd/internal/metrics"
	"github.com/ClusterCockpit/cc-respd/internal/respserver"
	"github.com/ClusterCockpit/cc-respd/internal/store"
)

func main() {
	var flagGops bool
	var flagConfigFile, flagEnvFile string
	flag.BoolVar(&flagGops, "gops", false, "Listen via github.com/google/gops/agent (for debugging)")
	flag.StringVar(&flagConfigFile, "config", "", "Path to a JSON config file; defaults are used if empty")
	flag.StringVar(&flagEnvFile, "env", "./.env", "Path to a .env file to load before startup")
	flag.Parse()

	if flagGops {
		if err := agent.Listen(agent.Options{}); err != nil {
			cclog.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	if err := config.LoadDotEnv(flagEnvFile); err != nil {
		cclog.Fatalf("parsing '%s' file failed: %s", flagEnvFile, err.Error())
	}

	var raw []byte
	if flagConfigFile != "" {
		var err error
		raw, err = os.ReadFile(flagConfigFile)
		if err != nil {
			cclog.Fatalf("reading config file failed: %s", err.Error())
		}
	}

	cfg, err := config.Load(raw)
	if err != nil {
		cclog.Fatalf("invalid configuration: %s", err.Error())
	}

	run(cfg)
}

func run(cfg config.Config) {
	st := store.New(cfg.SubscriberQueueCapacity)

	reg := prometheus.NewRegistry()
	mtr := metrics.New(reg)

	st.OnLazyExpire(mtr.OnLazyExpire)

	exp, err := expirer.New(st, cfg.ExpirerInterval(), cfg.ExpirerSampleSize, mtr.OnActiveExpire)
	if err != nil {
		cclog.Fatalf("starting expirer failed: %s", err.Error())
	}
	exp.Start()
	defer func() {
		if err := exp.Shutdown(); err != nil {
			cclog.Errorf("expirer shutdown: %s", err.Error())
		}
	}()

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		cclog.Fatalf("listening on %s failed: %s", cfg.Addr, err.Error())
	}

	srv := respserver.New(ln, st, respserver.Config{
		ConnRateLimit: cfg.ConnRateLimit,
		ConnRateBurst: cfg.ConnRateBurst,
	}, respserver.Hooks{
		OnCommand:    mtr.OnCommand,
		OnConnect:    mtr.OnConnect,
		OnDisconnect: mtr.OnDisconnect,
	})

	go func() {
		cclog.Infof("[RESPSERVER]> listening on %s", cfg.Addr)
		if err := srv.Serve(); err != nil {
			cclog.Infof("[RESPSERVER]> stopped accepting: %s", err.Error())
		}
	}()

	var adminSrv *admin.Server
	if cfg.AdminAddr != "" {
		adminLn, err := net.Listen("tcp", cfg.AdminAddr)
		if err != nil {
			cclog.Fatalf("listening on %s failed: %s", cfg.AdminAddr, err.Error())
		}
		adminSrv = admin.New(adminLn, reg, st)
		go func() {
			cclog.Infof("[ADMIN]> listening on %s", cfg.AdminAddr)
			if err := adminSrv.Serve(); err != nil {
				cclog.Errorf("[ADMIN]> %s", err.Error())
			}
		}()
	}

	go refreshStoreMetrics(st, mtr)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)
	<-sigc

	cclog.Info("shutting down")
	if adminSrv != nil {
		_ = adminSrv.Shutdown()
	}
	if err := srv.Shutdown(); err != nil {
		cclog.Errorf("[RESPSERVER]> shutdown: %s", err.Error())
	}
}

func refreshStoreMetrics(st *store.Store, mtr *metrics.Collectors) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for range ticker.C {
		mtr.Refresh(st)
	}
}
