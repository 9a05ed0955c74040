// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config loads and validates cc-respd's JSON configuration
// document, mirroring cc-backend's ProgramConfig/schema-validation split.
package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config is the fully resolved runtime configuration for one cc-respd
// process.
type Config struct {
	Addr                    string  `json:"addr"`
	AdminAddr               string  `json:"admin-addr"`
	SubscriberQueueCapacity int     `json:"subscriber-queue-capacity"`
	ExpirerIntervalMS       int     `json:"expirer-interval-ms"`
	ExpirerSampleSize       int     `json:"expirer-sample-size"`
	ConnRateLimit           float64 `json:"conn-rate-limit"`
	ConnRateBurst           int     `json:"conn-rate-burst"`
}

// Default returns the configuration used when no file is given, matching
// the defaults documented in SPEC_FULL.md §4.2-§4.5.
func Default() Config {
	return Config{
		Addr:                    "127.0.0.1:6379",
		AdminAddr:               ":6381",
		SubscriberQueueCapacity: 100,
		ExpirerIntervalMS:       100,
		ExpirerSampleSize:       20,
		ConnRateLimit:           0,
		ConnRateBurst:           1,
	}
}

// ExpirerInterval is ExpirerIntervalMS as a time.Duration.
func (c Config) ExpirerInterval() time.Duration {
	return time.Duration(c.ExpirerIntervalMS) * time.Millisecond
}

// Load reads and validates a JSON configuration document from raw,
// layering it over Default(). An empty raw returns Default() unchanged.
func Load(raw []byte) (Config, error) {
	cfg := Default()
	if len(raw) == 0 {
		return cfg, nil
	}

	if err := Validate(configSchema, raw); err != nil {
		return Config{}, err
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from a .env file at path, if it
// exists. A missing file is not an error: godotenv.Load reports it as a
// not-exist error, which LoadDotEnv turns into nil.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	err := godotenv.Load(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}
