package strapi

import (
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
)

// EncodeQuery flattens QueryOptions into the bracketed query syntax the CMS
// expects, e.g. filters[title][$contains]=hello, pagination[page]=1,
// sort[0]=title:asc. Map keys are emitted in sorted order so the encoding is
// deterministic. Absent fields produce no parameters at all.
func EncodeQuery(opts *QueryOptions) url.Values {
	values := url.Values{}
	if opts == nil {
		return values
	}

	if len(opts.Filters) > 0 {
		flattenInto(values, "filters", opts.Filters)
	}
	if opts.Pagination != nil {
		if opts.Pagination.Page > 0 {
			values.Set("pagination[page]", strconv.Itoa(opts.Pagination.Page))
		}
		if opts.Pagination.PageSize > 0 {
			values.Set("pagination[pageSize]", strconv.Itoa(opts.Pagination.PageSize))
		}
	}
	for i, s := range opts.Sort {
		values.Set(fmt.Sprintf("sort[%d]", i), s)
	}
	if opts.Populate != nil {
		flattenInto(values, "populate", opts.Populate)
	}
	for i, f := range opts.Fields {
		values.Set(fmt.Sprintf("fields[%d]", i), f)
	}
	return values
}

// flattenInto recursively expands nested maps and slices into bracketed keys.
func flattenInto(values url.Values, prefix string, v interface{}) {
	switch typed := v.(type) {
	case map[string]interface{}:
		keys := make([]string, 0, len(typed))
		for k := range typed {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			flattenInto(values, fmt.Sprintf("%s[%s]", prefix, k), typed[k])
		}
	case []interface{}:
		for i, item := range typed {
			flattenInto(values, fmt.Sprintf("%s[%d]", prefix, i), item)
		}
	case []string:
		for i, item := range typed {
			values.Set(fmt.Sprintf("%s[%d]", prefix, i), item)
		}
	case string:
		values.Set(prefix, typed)
	case bool:
		values.Set(prefix, strconv.FormatBool(typed))
	case float64:
		values.Set(prefix, formatNumber(typed))
	case int:
		values.Set(prefix, strconv.Itoa(typed))
	case nil:
		// omitted entirely, never sent as null/empty
	default:
		values.Set(prefix, fmt.Sprintf("%v", typed))
	}
}

// formatNumber renders JSON numbers without a trailing ".0" for integral
// values, matching what hand-written query strings look like.
func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseQueryOptions decodes the JSON options string accepted by the entry
// tools into QueryOptions. An empty string yields nil options.
func ParseQueryOptions(raw string) (*QueryOptions, error) {
	if raw == "" {
		return nil, nil
	}
	var opts QueryOptions
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return nil, invalidRequest("parse query options", err.Error())
	}
	return &opts, nil
}
