// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package hps

import (
	"bytes"
	"fmt"
	"strconv"
	"time"
)

// naiveLayout is an ISO 8601 timestamp with no zone offset, as some
// server versions emit.
const naiveLayout = "2006-01-02T15:04:05.999999999"

// Timestamp is a point in time as it appears in resource fields.  It
// accepts RFC 3339 strings and naive ISO 8601 strings, which are
// taken to be UTC.  It always encodes as RFC 3339.
type Timestamp struct {
	time.Time
}

// NewTimestamp wraps t.
func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// ParseTimestamp parses an RFC 3339 or naive ISO 8601 string.
func ParseTimestamp(s string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return Timestamp{t}, nil
	}
	t, err := time.ParseInLocation(naiveLayout, s, time.UTC)
	if err != nil {
		return Timestamp{}, fmt.Errorf("hps: invalid timestamp %q", s)
	}
	return Timestamp{t}, nil
}

// MarshalJSON encodes the timestamp as an RFC 3339 string.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(ts.Time.Format(time.RFC3339Nano))), nil
}

// UnmarshalJSON decodes a JSON string with ParseTimestamp.
func (ts *Timestamp) UnmarshalJSON(in []byte) error {
	if bytes.Equal(bytes.TrimSpace(in), []byte("null")) {
		return nil
	}
	s, err := strconv.Unquote(string(bytes.TrimSpace(in)))
	if err != nil {
		return fmt.Errorf("hps: timestamp is not a string: %s", in)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*ts = parsed
	return nil
}

func (ts Timestamp) String() string {
	return ts.Time.Format(time.RFC3339Nano)
}
