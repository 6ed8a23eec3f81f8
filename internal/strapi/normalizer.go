package strapi

import (
	"encoding/json"

	"strapimcp/pkg/logging"
)

// Normalized is the canonical response shape produced from the CMS's
// heterogeneous bodies. Collection responses fill Data and Meta; single-entry
// responses additionally set Single. Shape variance across CMS versions is
// expected, so normalization never fails: the worst case is a defensive wrap
// flagged Unrecognized.
type Normalized struct {
	Data []Entry                `json:"data"`
	Meta map[string]interface{} `json:"meta"`

	// Single is set when the body carried exactly one object rather than a
	// collection.
	Single Entry `json:"-"`

	// ErrorPayload is set when the body carried a top-level error marker.
	// Read paths treat this as an empty collection; write paths surface it
	// as a failure.
	ErrorPayload map[string]interface{} `json:"-"`

	// Unrecognized marks the defensive fallback for bodies matching no
	// known shape. Observability only; the wrapped output is still usable.
	Unrecognized bool `json:"-"`
}

// shapeMatcher inspects a decoded body and either produces a Normalized
// result or declines. Matchers are tried in order, first match wins, which
// makes adding a newly observed CMS response shape a one-line change here
// instead of a change at every call site.
type shapeMatcher func(body interface{}) (*Normalized, bool)

var shapeMatchers = []shapeMatcher{
	matchDataArray,
	matchDataObject,
	matchBareArray,
	matchAdminResults,
	matchErrorBody,
}

// Normalize converts a raw response body into the canonical shape. It is
// idempotent: feeding a normalized collection back through produces the same
// data and meta.
func Normalize(raw []byte) *Normalized {
	var body interface{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &body); err != nil {
			body = string(raw)
		}
	}

	for _, match := range shapeMatchers {
		if result, ok := match(body); ok {
			return result
		}
	}

	// Defensive default: wrap the whole body as a single-item collection.
	logging.Warn("Normalizer", "Unrecognized response shape, wrapping as single item")
	result := &Normalized{Meta: map[string]interface{}{}, Unrecognized: true}
	if body != nil {
		if obj, ok := body.(map[string]interface{}); ok {
			result.Data = []Entry{obj}
			result.Single = obj
		} else {
			result.Data = []Entry{{"value": body}}
		}
	} else {
		result.Data = []Entry{}
	}
	return result
}

func isErrorMarked(item map[string]interface{}) bool {
	_, ok := item["error"]
	return ok
}

// matchDataArray handles the public API collection shape
// {data: [...], meta: {...}}.
func matchDataArray(body interface{}) (*Normalized, bool) {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, false
	}
	items, ok := obj["data"].([]interface{})
	if !ok {
		return nil, false
	}

	data := make([]Entry, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			data = append(data, Entry{"value": item})
			continue
		}
		if isErrorMarked(entry) {
			continue
		}
		data = append(data, entry)
	}

	meta, ok := obj["meta"].(map[string]interface{})
	if !ok {
		meta = map[string]interface{}{}
	}
	return &Normalized{Data: data, Meta: meta}, true
}

// matchDataObject handles the public API single-entry shape
// {data: {...}, meta: {...}}.
func matchDataObject(body interface{}) (*Normalized, bool) {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, false
	}
	entry, ok := obj["data"].(map[string]interface{})
	if !ok {
		return nil, false
	}

	meta, ok := obj["meta"].(map[string]interface{})
	if !ok {
		meta = map[string]interface{}{}
	}

	if isErrorMarked(entry) {
		return &Normalized{Data: []Entry{}, Meta: meta, ErrorPayload: entry}, true
	}
	return &Normalized{Data: []Entry{entry}, Meta: meta, Single: entry}, true
}

// matchBareArray handles bodies that are themselves a sequence, as returned
// by some plugin and legacy endpoints. Pagination is synthesized from the
// sequence length.
func matchBareArray(body interface{}) (*Normalized, bool) {
	items, ok := body.([]interface{})
	if !ok {
		return nil, false
	}

	data := make([]Entry, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			data = append(data, Entry{"value": item})
			continue
		}
		if isErrorMarked(entry) {
			continue
		}
		data = append(data, entry)
	}

	meta := map[string]interface{}{
		"pagination": map[string]interface{}{
			"page":      float64(1),
			"pageCount": float64(1),
			"pageSize":  float64(len(data)),
			"total":     float64(len(data)),
		},
	}
	return &Normalized{Data: data, Meta: meta}, true
}

// matchAdminResults handles the admin content-manager shape
// {results: [...], pagination: {...}}.
func matchAdminResults(body interface{}) (*Normalized, bool) {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, false
	}
	items, ok := obj["results"].([]interface{})
	if !ok {
		return nil, false
	}

	data := make([]Entry, 0, len(items))
	for _, item := range items {
		if entry, ok := item.(map[string]interface{}); ok && !isErrorMarked(entry) {
			data = append(data, entry)
		}
	}

	meta := map[string]interface{}{}
	if pagination, ok := obj["pagination"].(map[string]interface{}); ok {
		meta["pagination"] = pagination
	}
	return &Normalized{Data: data, Meta: meta}, true
}

// matchErrorBody handles a top-level error marker with no data key.
func matchErrorBody(body interface{}) (*Normalized, bool) {
	obj, ok := body.(map[string]interface{})
	if !ok {
		return nil, false
	}
	if !isErrorMarked(obj) {
		return nil, false
	}
	return &Normalized{Data: []Entry{}, Meta: map[string]interface{}{}, ErrorPayload: obj}, true
}
