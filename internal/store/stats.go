// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import "sync/atomic"

func addKeysTotal(s *Store, delta int64) {
	atomic.AddInt64(&s.keysTotal, delta)
}

// Stats is a point-in-time snapshot of Store activity, consumed by the
// admin metrics endpoint. It is read-only telemetry, not a wire-protocol
// introspection command.
type Stats struct {
	KeysTotal         int64
	ChannelCount      int
	SubscriberCount   int
	PublishDelivered  int64
	PublishDropped    int64
}

// Stats returns a snapshot of the engine's current size and pub/sub
// activity counters.
func (s *Store) Stats() Stats {
	channelCount, subCount := s.channels.counts()
	return Stats{
		KeysTotal:        atomic.LoadInt64(&s.keysTotal),
		ChannelCount:     channelCount,
		SubscriberCount:  subCount,
		PublishDelivered: atomic.LoadInt64(&s.channels.delivered),
		PublishDropped:   atomic.LoadInt64(&s.channels.dropped),
	}
}
