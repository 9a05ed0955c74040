// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package config

var configSchema = `
	{
  "type": "object",
  "properties": {
    "addr": {
      "description": "Address the RESP protocol listener binds to (e.g. ':6380').",
      "type": "string"
    },
    "admin-addr": {
      "description": "Address the admin/observability HTTP server binds to (e.g. ':6381'). Empty disables it.",
      "type": "string"
    },
    "subscriber-queue-capacity": {
      "description": "Per-subscriber bounded mailbox size before messages are dropped.",
      "type": "integer",
      "minimum": 1
    },
    "expirer-interval-ms": {
      "description": "Milliseconds between Active Expirer sweeps.",
      "type": "integer",
      "minimum": 1
    },
    "expirer-sample-size": {
      "description": "Keys inspected per Active Expirer sweep, in total across all shards.",
      "type": "integer",
      "minimum": 1
    },
    "conn-rate-limit": {
      "description": "Commands/sec accepted per connection. 0 disables rate limiting.",
      "type": "number",
      "minimum": 0
    },
    "conn-rate-burst": {
      "description": "Burst size for the per-connection rate limiter, if enabled.",
      "type": "integer",
      "minimum": 1
    }
  },
  "required": ["addr"]
}`
