// Package payload wraps the semi-structured JSON received from scrapers and
// the public web form. Accessors are total: they return a typed value plus
// an ok flag and never panic, because scraped records routinely omit keys or
// carry the wrong type.
package payload

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

// ErrNotObject signals the raw bytes did not decode to a JSON object. This
// is the one structural failure intake refuses to store as PENDING.
var ErrNotObject = errors.New("payload is not a JSON object")

// Untrusted is a loosely typed show payload.
type Untrusted struct {
	fields map[string]any
}

// Parse decodes raw JSON into an Untrusted payload. Anything other than an
// object is rejected.
func Parse(raw json.RawMessage) (Untrusted, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Untrusted{}, ErrNotObject
	}
	if fields == nil {
		return Untrusted{}, ErrNotObject
	}
	return Untrusted{fields: fields}, nil
}

// FromMap wraps an already-decoded map. Used by tests and the geocode merge.
func FromMap(fields map[string]any) Untrusted {
	return Untrusted{fields: fields}
}

// String returns the trimmed string at key. Missing, empty, or non-string
// values report ok=false.
func (u Untrusted) String(key string) (string, bool) {
	v, ok := u.fields[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	return s, true
}

// Float returns a numeric value at key, accepting JSON numbers and numeric
// strings.
func (u Untrusted) Float(key string) (float64, bool) {
	v, ok := u.fields[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// StringSlice coerces an array value to a list of non-empty strings.
// Non-array values and non-string elements are dropped rather than
// failing the whole payload.
func (u Untrusted) StringSlice(key string) []string {
	v, ok := u.fields[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(arr))
	for _, el := range arr {
		if s, ok := el.(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Objects returns the array of objects at key, dropping non-object elements.
func (u Untrusted) Objects(key string) []Untrusted {
	v, ok := u.fields[key]
	if !ok {
		return nil
	}
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]Untrusted, 0, len(arr))
	for _, el := range arr {
		if m, ok := el.(map[string]any); ok {
			out = append(out, Untrusted{fields: m})
		}
	}
	return out
}

// Raw returns the uninterpreted value at key.
func (u Untrusted) Raw(key string) (any, bool) {
	v, ok := u.fields[key]
	return v, ok
}
