package upstream

import (
	"bytes"
	"encoding/json"

	appErrors "github.com/vortechdev/enilai-gateway/pkg/errors"
)

var emptyList = json.RawMessage("[]")

// NormalizeList reduces the upstream's inconsistent collection envelopes to a
// bare JSON array. Accepted shapes, in order of preference:
//
//	[...]                     bare array
//	{"data": [...]}           standard envelope
//	{"classes": [...], ...}   a single array-valued key (legacy endpoints)
//
// Anything else normalizes to an empty list, mirroring the original client's
// `res.data.data || []` fallbacks.
func NormalizeList(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return emptyList, nil
	}

	if trimmed[0] == '[' {
		return json.RawMessage(trimmed), nil
	}

	if trimmed[0] != '{' {
		return nil, appErrors.Clone(appErrors.ErrUpstream, "upstream list response is not JSON")
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "failed to decode upstream envelope")
	}

	if data, ok := envelope["data"]; ok {
		inner := bytes.TrimSpace(data)
		if len(inner) > 0 && inner[0] == '[' {
			return json.RawMessage(inner), nil
		}
	}

	var candidate json.RawMessage
	for _, value := range envelope {
		inner := bytes.TrimSpace(value)
		if len(inner) > 0 && inner[0] == '[' {
			if candidate != nil {
				// Ambiguous envelope with several arrays; refuse to guess.
				return emptyList, nil
			}
			candidate = json.RawMessage(inner)
		}
	}
	if candidate != nil {
		return candidate, nil
	}

	return emptyList, nil
}

// NormalizeObject unwraps a `{"data": {...}}` envelope when present,
// otherwise returns the payload untouched.
func NormalizeObject(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return json.RawMessage(trimmed), nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return json.RawMessage(trimmed), nil
	}

	inner := bytes.TrimSpace(envelope.Data)
	if len(inner) > 0 && inner[0] == '{' {
		return json.RawMessage(inner), nil
	}

	return json.RawMessage(trimmed), nil
}
