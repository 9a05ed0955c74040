// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-respd.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package resp

import (
	"io"
	"strconv"
)

// Encode renders v in its canonical RESP wire form. Encode is total for
// every well-formed Value: it never fails.
func Encode(v Value) []byte {
	buf := make([]byte, 0, 64)
	return appendValue(buf, v)
}

// EncodeTo writes v's wire form to w in a single Write call, the way a
// connection writes one reply per flush instead of building and discarding
// an intermediate buffer per field.
func EncodeTo(w io.Writer, v Value) error {
	buf := appendValue(make([]byte, 0, 64), v)
	_, err := w.Write(buf)
	return err
}

func appendValue(buf []byte, v Value) []byte {
	switch v.Kind {
	case KindSimpleString:
		buf = append(buf, '+')
		buf = append(buf, v.Str...)
		return append(buf, '\r', '\n')
	case KindError:
		buf = append(buf, '-')
		buf = append(buf, v.Str...)
		return append(buf, '\r', '\n')
	case KindInteger:
		buf = append(buf, ':')
		buf = strconv.AppendInt(buf, v.Int, 10)
		return append(buf, '\r', '\n')
	case KindBulkString:
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(v.Bulk)), 10)
		buf = append(buf, '\r', '\n')
		buf = append(buf, v.Bulk...)
		return append(buf, '\r', '\n')
	case KindArray:
		buf = append(buf, '*')
		buf = strconv.AppendInt(buf, int64(len(v.Array)), 10)
		buf = append(buf, '\r', '\n')
		for _, elem := range v.Array {
			buf = appendValue(buf, elem)
		}
		return buf
	case KindNull:
		fallthrough
	default:
		// Null, at top level or nested, is always the null bulk string.
		return append(buf, '$', '-', '1', '\r', '\n')
	}
}
