// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"strconv"
	"strings"
)

// Query holds the query parameters of a collection request.  They are
// passed to the server verbatim.  A nil Query is valid and empty;
// the builder methods return a new Query and leave their receiver
// unchanged, so a shared Query can be extended safely.
//
//     q := restclient.Query{}.Filter("eval_status", "failed").Limit(10)
type Query map[string][]string

func (q Query) with(key string, values ...string) Query {
	out := make(Query, len(q)+1)
	for k, v := range q {
		out[k] = v
	}
	out[key] = values
	return out
}

// Fields requests only the named fields of each object.  The
// remaining fields are left unset.
func (q Query) Fields(names ...string) Query {
	return q.with("fields", strings.Join(names, ","))
}

// AllFields requests every field of each object.
func (q Query) AllFields() Query {
	return q.with("fields", "all")
}

// Count asks for the number of matching objects instead of the
// objects themselves.
func (q Query) Count() Query {
	return q.with("count", "true")
}

// Limit caps the number of objects returned.
func (q Query) Limit(n int) Query {
	return q.with("limit", strconv.Itoa(n))
}

// Offset skips the first n matching objects.
func (q Query) Offset(n int) Query {
	return q.with("offset", strconv.Itoa(n))
}

// Filter restricts the result to objects whose field has one of the
// given values.
func (q Query) Filter(field string, values ...string) Query {
	return q.with(field, values...)
}

// Sort orders the result by the given fields; prefix a field with
// "-" for descending order.
func (q Query) Sort(fields ...string) Query {
	return q.with("sort", strings.Join(fields, ","))
}

// IsCount reports whether the query is in count mode.
func (q Query) IsCount() bool {
	values := q["count"]
	if len(values) == 0 {
		return false
	}
	switch strings.ToLower(values[0]) {
	case "", "0", "false", "no":
		return false
	}
	return true
}
