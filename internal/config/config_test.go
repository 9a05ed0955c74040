// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEmptyReturnsDefaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadOverridesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`{"addr":":7000","conn-rate-limit":50}`))
	require.NoError(t, err)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, float64(50), cfg.ConnRateLimit)
	assert.Equal(t, 100, cfg.SubscriberQueueCapacity)
}

func TestLoadRejectsWrongType(t *testing.T) {
	_, err := Load([]byte(`{"addr": 123}`))
	assert.Error(t, err)
}

func TestExpirerIntervalConversion(t *testing.T) {
	cfg := Default()
	cfg.ExpirerIntervalMS = 250
	assert.Equal(t, 250*time.Millisecond, cfg.ExpirerInterval())
}

func TestLoadDotEnvMissingFileIsNotAnError(t *testing.T) {
	err := LoadDotEnv("/nonexistent/path/to/.env")
	assert.NoError(t, err)
}
