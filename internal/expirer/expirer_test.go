// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package expirer

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/cc-respd/internal/store"
)

func TestExpirerEvictsExpiredKeysOnTick(t *testing.T) {
	st := store.New(0)
	st.Put("k", []byte("v"), true, time.Millisecond)

	evicted := make(chan int, 10)
	e, err := New(st, 10*time.Millisecond, 20, func(n int) { evicted <- n })
	require.NoError(t, err)

	e.Start()
	defer e.Shutdown()

	time.Sleep(5 * time.Millisecond)

	select {
	case n := <-evicted:
		if n == 0 {
			// First tick may fire before the key's millisecond TTL lapses;
			// give it one more tick before failing.
			n = <-evicted
		}
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("expirer never ticked")
	}

	_, found := st.Get("k")
	assert.False(t, found)
}

func TestExpirerShutdownStopsTicking(t *testing.T) {
	st := store.New(0)
	var ticks int32
	e, err := New(st, 10*time.Millisecond, 20, func(int) { atomic.AddInt32(&ticks, 1) })
	require.NoError(t, err)

	e.Start()
	require.NoError(t, e.Shutdown())

	after := atomic.LoadInt32(&ticks)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, atomic.LoadInt32(&ticks))
}
