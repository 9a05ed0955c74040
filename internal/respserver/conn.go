// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package respserver

import (
	"bufio"
	"net"
	"sync"

	cclog "github.com/ClusterCockpit/cc-lib/v2/ccLogger"
	"golang.org/x/time/rate"

	"github.com/ClusterCockpit/cc-respd/internal/command"
	"github.com/ClusterCockpit/cc-respd/internal/resp"
	"github.com/ClusterCockpit/cc-respd/internal/store"
)

// conn is the Connection Driver: a two-state machine (request/response,
// subscriber) running one goroutine per accepted connection. Transition
// from request/response to subscriber mode is one-way for the lifetime of
// the connection, matching gridhouse's per-client reader/writer split.
type conn struct {
	id      string
	netConn net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	writeMu sync.Mutex

	store   *store.Store
	limiter *rate.Limiter // nil when rate limiting is disabled

	onCommand func(name string)
}

func newConn(id string, nc net.Conn, st *store.Store, limiter *rate.Limiter, onCommand func(string)) *conn {
	return &conn{
		id:        id,
		netConn:   nc,
		reader:    bufio.NewReader(nc),
		writer:    bufio.NewWriter(nc),
		store:     st,
		limiter:   limiter,
		onCommand: onCommand,
	}
}

// serve drives the connection until the peer disconnects, a read or write
// fails, or a malformed frame arrives; after SUBSCRIBE it returns once the
// subscriber loop ends. It owns closing netConn.
func (c *conn) serve() {
	defer func() {
		_ = c.netConn.Close()
		cclog.Debugf("[RESPSERVER]> connection %s closed", c.id)
	}()
	cclog.Debugf("[RESPSERVER]> connection %s accepted from %s", c.id, c.netConn.RemoteAddr())

	buf := make([]byte, 0, 4096)
	for {
		v, rerr := c.readFrame(&buf)
		if rerr != nil {
			return
		}
		if v.Kind != resp.KindArray {
			// A well-formed frame that isn't a command invocation (e.g. a
			// bare SimpleString) is ignored, not a reason to disconnect;
			// only StatusInvalid framing closes the connection (spec.md
			// §4.4.a step 6).
			continue
		}

		if c.limiter != nil && !c.limiter.Allow() {
			continue
		}

		res := command.Execute(c.store, v.Array)
		if c.onCommand != nil && len(v.Array) > 0 && v.Array[0].Kind == resp.KindBulkString {
			c.onCommand(string(v.Array[0].Bulk))
		}

		if res.Switch != nil {
			c.runSubscriber(res.Switch.Channel)
			return
		}
		if res.HasReply {
			if err := c.writeValue(*res.Reply); err != nil {
				return
			}
		}
	}
}

// readFrame reads from the connection until buf holds one complete frame,
// decodes it, and leaves the undecoded remainder (if any) at the front of
// buf for the next call — the same reorder-leftover-bytes discipline
// cc-backend's lineprotocol.reorder uses for a streamed, unbounded source.
func (c *conn) readFrame(buf *[]byte) (resp.Value, error) {
	for {
		v, n, status := resp.Decode(*buf)
		switch status {
		case resp.StatusOK:
			*buf = (*buf)[n:]
			return v, nil
		case resp.StatusInvalid:
			return resp.Value{}, errInvalidFrame
		}

		chunk := make([]byte, 4096)
		n, err := c.netConn.Read(chunk)
		if n > 0 {
			*buf = append(*buf, chunk[:n]...)
		}
		if err != nil {
			return resp.Value{}, err
		}
	}
}

func (c *conn) writeValue(v resp.Value) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := resp.EncodeTo(c.writer, v); err != nil {
		return err
	}
	return c.writer.Flush()
}

// runSubscriber enters subscriber mode: it writes the subscription
// confirmation, then relays every published message until the mailbox is
// torn down or a write fails. Per spec.md §4.3 there is no protocol-level
// UNSUBSCRIBE; the only way out is disconnecting.
func (c *conn) runSubscriber(channel string) {
	sub := c.store.Subscribe(channel)
	defer c.store.Unsubscribe(channel, sub)

	confirm := resp.Arr(
		resp.BulkFromString("subscribe"),
		resp.BulkFromString(channel),
		resp.Integer(1),
	)
	if err := c.writeValue(confirm); err != nil {
		return
	}

	for message := range sub.Messages {
		payload := resp.Arr(
			resp.BulkFromString("message"),
			resp.BulkFromString(channel),
			resp.Bulk(message),
		)
		if err := c.writeValue(payload); err != nil {
			return
		}
	}
}
