// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package command is the Command Executor: it identifies the command named
// by a decoded request Array and invokes the Keyspace Engine, producing
// either a reply Value or a mode-change signal for the Connection Driver.
package command

import (
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ClusterCockpit/cc-respd/internal/resp"
	"github.com/ClusterCockpit/cc-respd/internal/store"
)

// Switch signals that the Connection Driver must abandon the
// request/response loop and enter subscriber mode on Channel.
type Switch struct {
	Channel string
}

// Result is what executing one request produces. Exactly one of Reply,
// Switch is meaningful; if both are nil/zero, the connection emits no
// reply and keeps reading (unrecognized or ill-formed command).
type Result struct {
	Reply    *resp.Value
	Switch   *Switch
	HasReply bool
}

func noReply() Result { return Result{} }

func reply(v resp.Value) Result { return Result{Reply: &v, HasReply: true} }

// Execute dispatches a decoded top-level Array request to the matching
// keyspace operation. args[0] must be a BulkString command name, matched
// case-insensitively; every other position must also be a BulkString or
// the request is treated as malformed (no reply, per spec.md §4.3/§7 — the
// connection never replies with Error to a framing-level problem since the
// request itself may be untrustworthy).
func Execute(st *store.Store, args []resp.Value) Result {
	if len(args) == 0 {
		return noReply()
	}
	for _, a := range args {
		if a.Kind != resp.KindBulkString {
			return noReply()
		}
	}

	name := strings.ToUpper(string(args[0].Bulk))
	switch name {
	case "PING":
		return execPing(args)
	case "ECHO":
		return execEcho(args)
	case "SET":
		return execSet(st, args)
	case "GET":
		return execGet(st, args)
	case "DEL":
		return execDel(st, args)
	case "PUBLISH":
		return execPublish(st, args)
	case "SUBSCRIBE":
		return execSubscribe(args)
	default:
		return noReply()
	}
}

func execPing(args []resp.Value) Result {
	if len(args) != 1 {
		return noReply()
	}
	return reply(resp.SimpleString("PONG"))
}

func execEcho(args []resp.Value) Result {
	if len(args) != 2 {
		return noReply()
	}
	return reply(resp.Bulk(args[1].Bulk))
}

// bulkKey decodes a BulkString argument as a UTF-8 key/channel name. Keys
// are rejected at this layer if they are not valid UTF-8 (spec.md §3, §7);
// values and pub/sub message payloads remain opaque bytes.
func bulkKey(v resp.Value) (string, bool) {
	if !utf8.Valid(v.Bulk) {
		return "", false
	}
	return string(v.Bulk), true
}

func execSet(st *store.Store, args []resp.Value) Result {
	if len(args) != 3 && len(args) != 5 {
		return noReply()
	}
	key, ok := bulkKey(args[1])
	if !ok {
		return noReply()
	}

	var hasTTL bool
	var ttl time.Duration
	if len(args) == 5 {
		if !strings.EqualFold(string(args[3].Bulk), "EX") {
			return noReply()
		}
		// A TTL that fails to parse as a non-negative integer is silently
		// dropped and the key is stored immortal (spec.md §4.3, §9 open
		// question #4 — kept as documented behavior, not upgraded to an
		// Error reply; see DESIGN.md). A TTL of exactly 0 seconds DOES
		// parse and means "already expired", not "no TTL" (spec.md §8
		// Testable Property 5): it still sets hasTTL so Put stores a
		// deadline of now rather than immortal.
		if secs, err := strconv.ParseInt(string(args[4].Bulk), 10, 64); err == nil && secs >= 0 {
			hasTTL = true
			ttl = time.Duration(secs) * time.Second
		}
	}

	st.Put(key, args[2].Bulk, hasTTL, ttl)
	return reply(resp.SimpleString("OK"))
}

func execGet(st *store.Store, args []resp.Value) Result {
	if len(args) != 2 {
		return noReply()
	}
	key, ok := bulkKey(args[1])
	if !ok {
		return noReply()
	}

	value, found := st.Get(key)
	if !found {
		return reply(resp.Null)
	}
	return reply(resp.Bulk(value))
}

func execDel(st *store.Store, args []resp.Value) Result {
	if len(args) != 2 {
		return noReply()
	}
	key, ok := bulkKey(args[1])
	if !ok {
		return noReply()
	}
	return reply(resp.Integer(int64(st.Delete(key))))
}

func execPublish(st *store.Store, args []resp.Value) Result {
	if len(args) != 3 {
		return noReply()
	}
	channel, ok := bulkKey(args[1])
	if !ok {
		return noReply()
	}
	delivered := st.Publish(channel, args[2].Bulk)
	return reply(resp.Integer(int64(delivered)))
}

func execSubscribe(args []resp.Value) Result {
	if len(args) != 2 {
		return noReply()
	}
	channel, ok := bulkKey(args[1])
	if !ok {
		return noReply()
	}
	return Result{Switch: &Switch{Channel: channel}}
}
