// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package fields

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
)

var integerID = regexp.MustCompile(`^-?\d+$`)

// AsID returns v when it is usable as a document id: a non-empty string or a
// finite number.
func AsID(v any) (any, bool) {
	switch id := v.(type) {
	case string:
		return id, id != ""
	case json.Number:
		if _, err := id.Float64(); err != nil {
			return nil, false
		}
		return id, true
	case int, int32, int64, uint, uint32, uint64:
		return id, true
	case float64:
		return id, !math.IsNaN(id) && !math.IsInf(id, 0)
	case float32:
		return id, !math.IsNaN(float64(id)) && !math.IsInf(float64(id), 0)
	default:
		return nil, false
	}
}

// ReferencedID extracts the id from a relationship value: either the bare id
// or the "id" key of a populated document.
func ReferencedID(v any) (any, bool) {
	if id, ok := AsID(v); ok {
		return id, true
	}
	if m, ok := v.(map[string]any); ok {
		return AsID(m["id"])
	}
	return nil, false
}

// StringifyID canonicalizes an id so that 7, int64(7), "7" and
// json.Number("7") compare equal.
func StringifyID(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		return id.String()
	case int:
		return strconv.Itoa(id)
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case uint:
		return strconv.FormatUint(uint64(id), 10)
	case uint32:
		return strconv.FormatUint(uint64(id), 10)
	case uint64:
		return strconv.FormatUint(id, 10)
	case float32:
		return strconv.FormatFloat(float64(id), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	default:
		return ""
	}
}

// IsNumericID reports whether id is a number rather than a string.
func IsNumericID(id any) bool {
	switch id.(type) {
	case json.Number, int, int32, int64, uint, uint32, uint64, float32, float64:
		return true
	default:
		return false
	}
}

// CoerceID converts a canonical id back toward the type of hint: an int64
// when hint is numeric and stored is an integer literal, stored otherwise.
func CoerceID(stored string, hint any) any {
	if IsNumericID(hint) && integerID.MatchString(stored) {
		if n, err := strconv.ParseInt(stored, 10, 64); err == nil {
			return n
		}
	}
	return stored
}

// SameID reports whether a and b denote the same id.
func SameID(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	return StringifyID(a) == StringifyID(b)
}
