// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package store

import "time"

// ListPayload is reserved for a future ordered-sequence-of-byte-strings
// entry variant (spec.md §3, "Stored entry"). entry carries a field of
// this type, but no command writes it and nothing reads it.
type ListPayload []string

// entry is a stored key's payload plus its optional expiry.
//
// expiresAt uses the monotonic reading time.Now() carries by default: an
// absolute steady-clock deadline, never a wall-clock one, so expiry is
// immune to clock jumps (spec.md §4.2, "Algorithms").
type entry struct {
	bytes     []byte
	list      ListPayload
	expiresAt time.Time
	hasExpiry bool
}

func (e *entry) expired(now time.Time) bool {
	return e.hasExpiry && now.After(e.expiresAt)
}
