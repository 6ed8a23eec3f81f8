package strapi

// Entry is one record of a content type. Entries are opaque to the adapter:
// domain fields are passed through untouched except for error-marker
// detection during normalization.
type Entry = map[string]interface{}

// Attribute describes one field of a content type schema.
type Attribute struct {
	Type      string `json:"type"`
	Required  bool   `json:"required,omitempty"`
	Target    string `json:"target,omitempty"`
	Component string `json:"component,omitempty"`
}

// ContentType is the descriptor for one collection or single type, as
// discovered from the CMS or inferred from sample entries.
type ContentType struct {
	UID         string               `json:"uid"`
	APIID       string               `json:"apiID"`
	DisplayName string               `json:"displayName"`
	Description string               `json:"description,omitempty"`
	PluralName  string               `json:"pluralName,omitempty"`
	Attributes  map[string]Attribute `json:"attributes,omitempty"`
}

// Pagination selects a result page.
type Pagination struct {
	Page     int `json:"page,omitempty"`
	PageSize int `json:"pageSize,omitempty"`
}

// QueryOptions is the filter/pagination/sort/populate/fields grammar shared
// by the get_entries tool and the resource query string. All fields are
// optional; absent fields are omitted from the outgoing request.
type QueryOptions struct {
	Filters    map[string]interface{} `json:"filters,omitempty"`
	Pagination *Pagination            `json:"pagination,omitempty"`
	Sort       []string               `json:"sort,omitempty"`
	// Populate is a string, a list of strings, or a nested mapping. The
	// three shapes mirror what the public API accepts.
	Populate interface{} `json:"populate,omitempty"`
	Fields   []string    `json:"fields,omitempty"`
}
