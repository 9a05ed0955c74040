// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package store is the single source of truth for stored keys and channel
// subscribers: the Keyspace Engine. Every public operation is a short,
// atomic critical section; no I/O is ever performed while a lock is held.
package store

import (
	"hash/fnv"
	"math/rand"
	"sync"
	"time"
)

// numShards bounds lock contention the way cc-backend's memorystore.Level
// tree bounds it per-node, simplified to a flat array since this keyspace
// has no hierarchical selector to shard by.
const numShards = 32

type shard struct {
	mu   sync.RWMutex
	data map[string]*entry
}

// Store is the Keyspace Engine: a sharded key/value map plus a channel
// registry, safely mutated by many connection goroutines and the Active
// Expirer.
type Store struct {
	shards   [numShards]*shard
	channels *channelRegistry

	keysTotal    int64 // atomic, approximate, for Stats()
	onLazyExpire func(n int)
}

// New builds an empty Store. subscriberQueueCapacity bounds every
// subscriber's message queue (spec.md §3, default 100).
func New(subscriberQueueCapacity int) *Store {
	s := &Store{channels: newChannelRegistry(subscriberQueueCapacity)}
	for i := range s.shards {
		s.shards[i] = &shard{data: make(map[string]*entry)}
	}
	return s
}

// OnLazyExpire registers cb to be called, with the number of keys evicted
// (always 1), every time Get finds and removes an expired entry. Used to
// feed the "lazy" side of the Prometheus cc_respd_expired_total{source}
// counter without this package depending on the metrics package.
func (s *Store) OnLazyExpire(cb func(n int)) {
	s.onLazyExpire = cb
}

func (s *Store) shardFor(key string) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return s.shards[h.Sum32()%numShards]
}

// Put inserts or overwrites key. hasTTL distinguishes an immortal entry
// (false) from one with an expiry deadline (true); when hasTTL is true,
// ttl itself may legitimately be zero or negative, which yields a
// deadline that has already passed (spec.md §8 Testable Property 5:
// `SET k v EX 0` must be observably expired on the very next `GET`, not
// immortal — ttl==0 cannot double as the "no TTL" sentinel).
func (s *Store) Put(key string, value []byte, hasTTL bool, ttl time.Duration) {
	sh := s.shardFor(key)
	e := &entry{bytes: value}
	if hasTTL {
		e.hasExpiry = true
		e.expiresAt = time.Now().Add(ttl)
	}

	sh.mu.Lock()
	_, existed := sh.data[key]
	sh.data[key] = e
	sh.mu.Unlock()

	if !existed {
		addKeysTotal(s, 1)
	}
}

// Get returns the current payload for key. found is false if the key is
// absent, or present but expired — in which case the entry is evicted
// before Get returns (lazy expiry). A stale payload is never returned.
func (s *Store) Get(key string) (value []byte, found bool) {
	sh := s.shardFor(key)
	now := time.Now()

	// Shared-lock fast path: most reads hit live, unexpired keys.
	sh.mu.RLock()
	e, ok := sh.data[key]
	if ok && !e.expired(now) {
		value = e.bytes
		sh.mu.RUnlock()
		return value, true
	}
	sh.mu.RUnlock()
	if !ok {
		return nil, false
	}

	// Upgrade to an exclusive lock to evict; re-check under the write
	// lock since another goroutine may have raced us to it.
	sh.mu.Lock()
	e, ok = sh.data[key]
	if !ok {
		sh.mu.Unlock()
		return nil, false
	}
	if e.expired(time.Now()) {
		delete(sh.data, key)
		sh.mu.Unlock()
		addKeysTotal(s, -1)
		if s.onLazyExpire != nil {
			s.onLazyExpire(1)
		}
		return nil, false
	}
	value = e.bytes
	sh.mu.Unlock()
	return value, true
}

// Delete removes key if present, returning the count removed (0 or 1).
func (s *Store) Delete(key string) int {
	sh := s.shardFor(key)
	sh.mu.Lock()
	_, ok := sh.data[key]
	if ok {
		delete(sh.data, key)
	}
	sh.mu.Unlock()
	if ok {
		addKeysTotal(s, -1)
		return 1
	}
	return 0
}

// SampleExpire inspects at most n keys, chosen without replacement from
// across all shards, and evicts those found expired. It returns the
// number evicted. Used by the Active Expirer to bound memory growth from
// keys written with a TTL but never read again.
func (s *Store) SampleExpire(n int) int {
	if n <= 0 {
		return 0
	}

	// Spread the budget across shards in a random starting order so no
	// single shard is starved if the budget runs out early.
	order := rand.Perm(numShards)
	now := time.Now()
	evicted := 0
	remaining := n

	for _, idx := range order {
		if remaining <= 0 {
			break
		}
		sh := s.shards[idx]

		sh.mu.Lock()
		checked := 0
		// Go's map iteration order is randomized per the runtime, which
		// gives us sampling without replacement within the shard for
		// free: no two iterations in one Lock revisit the same key.
		for key, e := range sh.data {
			if checked >= remaining {
				break
			}
			checked++
			if e.expired(now) {
				delete(sh.data, key)
				evicted++
			}
		}
		sh.mu.Unlock()

		remaining -= checked
	}

	if evicted > 0 {
		addKeysTotal(s, -int64(evicted))
	}
	return evicted
}

// Subscribe registers a new subscriber queue on channel, returning the
// handle the caller (a Connection Driver in subscriber mode) reads from.
func (s *Store) Subscribe(channel string) *Subscriber {
	return s.channels.subscribe(channel)
}

// Unsubscribe removes sub from channel's subscriber list. Called when a
// subscriber-mode connection tears down.
func (s *Store) Unsubscribe(channel string, sub *Subscriber) {
	s.channels.unsubscribe(channel, sub)
}

// Publish delivers message to every current subscriber of channel and
// returns the number of subscribers it was actually delivered to (see
// DESIGN.md for why this implementation resolves the delivered-vs-attempted
// ambiguity in favor of delivered).
func (s *Store) Publish(channel string, message []byte) int {
	return s.channels.publish(channel, message)
}
