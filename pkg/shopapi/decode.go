package shopapi

import (
	"bytes"
	"encoding/json"

	pkgerrors "github.com/pcforge/storefront/pkg/errors"
)

// decodeList reads a list that the API returns either bare or wrapped in
// {"data": [...]}. Anything else yields an empty list.
func decodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '{' {
		var wrapped struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode wrapped list")
		}
		trimmed = bytes.TrimSpace(wrapped.Data)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return []T{}, nil
		}
	}
	if trimmed[0] != '[' {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode list")
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// decodeGrouped reads a map of group name to list, possibly wrapped in
// {"data": {...}}. Entries whose value is not a list are dropped.
func decodeGrouped[T any](raw json.RawMessage) (map[string][]T, error) {
	out := map[string][]T{}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return out, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode grouped response")
	}
	if data, ok := fields["data"]; ok {
		inner := bytes.TrimSpace(data)
		if len(inner) > 0 && inner[0] == '{' {
			fields = nil
			if err := json.Unmarshal(inner, &fields); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode grouped response")
			}
		}
	}
	for key, value := range fields {
		v := bytes.TrimSpace(value)
		if len(v) == 0 || v[0] != '[' {
			continue
		}
		var items []T
		if err := json.Unmarshal(v, &items); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode group "+key)
		}
		out[key] = items
	}
	return out, nil
}
