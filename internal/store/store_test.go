// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutGetRoundTrip(t *testing.T) {
	s := New(0)

	s.Put("k", []byte("v1"), false, 0)
	v, found := s.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v1"), v)

	s.Put("k", []byte("v2"), false, 0)
	v, found = s.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v2"), v)
}

func TestGetMissingKey(t *testing.T) {
	s := New(0)
	_, found := s.Get("nope")
	assert.False(t, found)
}

func TestDeleteIsIdempotent(t *testing.T) {
	s := New(0)
	s.Put("k", []byte("v"), false, 0)

	assert.Equal(t, 1, s.Delete("k"))
	assert.Equal(t, 0, s.Delete("k"))

	_, found := s.Get("k")
	assert.False(t, found)
}

func TestLazyExpiryOnGet(t *testing.T) {
	s := New(0)
	s.Put("k", []byte("v"), true, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, found := s.Get("k")
	assert.False(t, found)
	assert.Equal(t, int64(0), s.Stats().KeysTotal)
}

func TestZeroTTLIsAlreadyExpired(t *testing.T) {
	s := New(0)
	s.Put("k", []byte("v"), true, 0)

	_, found := s.Get("k")
	assert.False(t, found)
	assert.Equal(t, int64(0), s.Stats().KeysTotal)
}

func TestOnLazyExpireCallbackFiresOnEviction(t *testing.T) {
	s := New(0)
	s.Put("k", []byte("v"), true, time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	var evicted int
	s.OnLazyExpire(func(n int) { evicted += n })

	_, found := s.Get("k")
	assert.False(t, found)
	assert.Equal(t, 1, evicted)
}

func TestImmortalKeyNeverExpires(t *testing.T) {
	s := New(0)
	s.Put("k", []byte("v"), false, 0)
	time.Sleep(5 * time.Millisecond)

	v, found := s.Get("k")
	require.True(t, found)
	assert.Equal(t, []byte("v"), v)
}

func TestSampleExpireEvictsOnlyExpiredKeys(t *testing.T) {
	s := New(0)
	for i := 0; i < 50; i++ {
		s.Put(fmt.Sprintf("expiring-%d", i), []byte("v"), true, time.Millisecond)
	}
	for i := 0; i < 10; i++ {
		s.Put(fmt.Sprintf("immortal-%d", i), []byte("v"), false, 0)
	}
	time.Sleep(5 * time.Millisecond)

	evicted := 0
	for i := 0; i < 10; i++ {
		evicted += s.SampleExpire(50)
	}
	assert.Equal(t, 50, evicted)

	for i := 0; i < 10; i++ {
		_, found := s.Get(fmt.Sprintf("immortal-%d", i))
		assert.True(t, found)
	}
	assert.Equal(t, int64(10), s.Stats().KeysTotal)
}

func TestKeysTotalTracksDistinctKeys(t *testing.T) {
	s := New(0)
	s.Put("a", []byte("1"), false, 0)
	s.Put("b", []byte("1"), false, 0)
	s.Put("a", []byte("2"), false, 0)
	assert.Equal(t, int64(2), s.Stats().KeysTotal)

	s.Delete("a")
	assert.Equal(t, int64(1), s.Stats().KeysTotal)
}

func TestPublishFanOutToMultipleSubscribers(t *testing.T) {
	s := New(0)
	sub1 := s.Subscribe("news")
	sub2 := s.Subscribe("news")
	defer s.Unsubscribe("news", sub1)
	defer s.Unsubscribe("news", sub2)

	delivered := s.Publish("news", []byte("hi"))
	assert.Equal(t, 2, delivered)
	assert.Equal(t, []byte("hi"), <-sub1.Messages)
	assert.Equal(t, []byte("hi"), <-sub2.Messages)
}

func TestPublishWithNoSubscribersDeliversZero(t *testing.T) {
	s := New(0)
	assert.Equal(t, 0, s.Publish("empty", []byte("hi")))
}

func TestPublishSkipsOtherChannels(t *testing.T) {
	s := New(0)
	sub := s.Subscribe("news")
	defer s.Unsubscribe("news", sub)

	delivered := s.Publish("sports", []byte("hi"))
	assert.Equal(t, 0, delivered)

	select {
	case <-sub.Messages:
		t.Fatal("subscriber to an unrelated channel should not receive anything")
	default:
	}
}

func TestUnsubscribeStopsFutureDelivery(t *testing.T) {
	s := New(0)
	sub := s.Subscribe("news")
	s.Unsubscribe("news", sub)

	delivered := s.Publish("news", []byte("hi"))
	assert.Equal(t, 0, delivered)
}

func TestSlowSubscriberIsEvictedNotBlocking(t *testing.T) {
	s := New(1)
	sub := s.Subscribe("news")
	defer func() {
		// sub was already evicted by the second publish; unsubscribe is a
		// harmless no-op confirming it does not panic on a missing entry.
		s.Unsubscribe("news", sub)
	}()

	assert.Equal(t, 1, s.Publish("news", []byte("first")))
	assert.Equal(t, 0, s.Publish("news", []byte("second")))

	stats := s.Stats()
	assert.Equal(t, int64(1), stats.PublishDelivered)
	assert.Equal(t, int64(1), stats.PublishDropped)
	assert.Equal(t, 0, stats.ChannelCount)
}

func TestStatsReflectsChannelAndSubscriberCounts(t *testing.T) {
	s := New(0)
	sub1 := s.Subscribe("news")
	sub2 := s.Subscribe("sports")
	defer s.Unsubscribe("news", sub1)
	defer s.Unsubscribe("sports", sub2)

	stats := s.Stats()
	assert.Equal(t, 2, stats.ChannelCount)
	assert.Equal(t, 2, stats.SubscriberCount)
}

func TestShardsAreIndependentlyLocked(t *testing.T) {
	s := New(0)
	done := make(chan struct{})

	go func() {
		for i := 0; i < 1000; i++ {
			s.Put(fmt.Sprintf("a-%d", i), []byte("v"), false, 0)
		}
		close(done)
	}()

	for i := 0; i < 1000; i++ {
		s.Put(fmt.Sprintf("b-%d", i), []byte("v"), false, 0)
	}
	<-done

	assert.Equal(t, int64(2000), s.Stats().KeysTotal)
}
