// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package resp implements the RESP (REdis Serialization Protocol) wire
// format: a tagged union of six value variants and a resumable decoder
// that tolerates arbitrary TCP fragmentation.
package resp

import "fmt"

// Kind identifies one of the six RESP value variants.
type Kind int

const (
	KindSimpleString Kind = iota
	KindError
	KindInteger
	KindBulkString
	KindArray
	KindNull
)

func (k Kind) String() string {
	switch k {
	case KindSimpleString:
		return "SimpleString"
	case KindError:
		return "Error"
	case KindInteger:
		return "Integer"
	case KindBulkString:
		return "BulkString"
	case KindArray:
		return "Array"
	case KindNull:
		return "Null"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Value is a decoded RESP frame. Only the fields relevant to Kind are
// populated; the zero Value is an empty SimpleString, since
// KindSimpleString is the zero Kind.
type Value struct {
	Kind  Kind
	Str   string  // SimpleString / Error text
	Int   int64   // Integer
	Bulk  []byte  // BulkString payload, arbitrary bytes including NUL
	Array []Value // Array elements
}

// SimpleString builds a SimpleString value. s must not contain CR or LF.
func SimpleString(s string) Value { return Value{Kind: KindSimpleString, Str: s} }

// Err builds an Error value. s must not contain CR or LF.
func Err(s string) Value { return Value{Kind: KindError, Str: s} }

// Integer builds an Integer value.
func Integer(n int64) Value { return Value{Kind: KindInteger, Int: n} }

// Bulk builds a BulkString value carrying opaque bytes.
func Bulk(b []byte) Value { return Value{Kind: KindBulkString, Bulk: b} }

// BulkFromString is a convenience wrapper around Bulk for text payloads.
func BulkFromString(s string) Value { return Bulk([]byte(s)) }

// Arr builds an Array value. With no elements it holds an empty, non-nil
// slice, the same shape Decode produces for "*0\r\n".
func Arr(vals ...Value) Value {
	if vals == nil {
		vals = []Value{}
	}
	return Value{Kind: KindArray, Array: vals}
}

// Null is the shared Null value.
var Null = Value{Kind: KindNull}

// IsNull reports whether v is the Null variant.
func (v Value) IsNull() bool { return v.Kind == KindNull }
