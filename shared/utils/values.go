package utils

import (
	"bytes"
	"encoding/json"
	"reflect"
)

// canonicalJSON приводит значение к канонической JSON-форме.
// json.Marshal для map уже сортирует ключи, поэтому две структурно
// одинаковые карты дают одинаковые байты независимо от порядка вставки.
func canonicalJSON(v any) ([]byte, bool) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false
	}
	return data, true
}

// ValueEqual reports whether two category values are structurally equal.
// nil is treated as "absent", so nil equals nil and nothing else.
// Values that cannot be serialized (channels, funcs, cycles) are compared
// with reflect.DeepEqual instead; the comparison itself never fails.
func ValueEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	aJSON, aOK := canonicalJSON(a)
	bJSON, bOK := canonicalJSON(b)
	if aOK && bOK {
		return bytes.Equal(aJSON, bJSON)
	}
	return reflect.DeepEqual(a, b)
}

// CloneValue returns a deep copy of a category value via a JSON round-trip.
// The copy is normalized (maps become map[string]any, numbers float64),
// which keeps later ValueEqual comparisons stable. Values that cannot be
// serialized are returned as-is.
func CloneValue(v any) any {
	if v == nil {
		return nil
	}
	data, ok := canonicalJSON(v)
	if !ok {
		return v
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return v
	}
	return out
}
