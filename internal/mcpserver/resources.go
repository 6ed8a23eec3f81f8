package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"strapimcp/internal/strapi"
	"strapimcp/pkg/logging"
)

// resourceScheme is the URI scheme under which content is exposed:
//
//	strapi://content-type/{uid}            collection
//	strapi://content-type/{uid}/{entryId}  single entry
//
// Collection URIs accept filters (JSON), page, pageSize, sort, populate and
// fields query parameters.
const resourceScheme = "strapi"

// registerResourceTemplates registers the URI templates so clients can
// construct entry and query URIs without a prior listing.
func (s *Server) registerResourceTemplates() {
	s.mcp.AddResourceTemplate(mcp.NewResourceTemplate(
		"strapi://content-type/{uid}",
		"Content type entries",
		mcp.WithTemplateDescription("All entries of a content type. Supports filters (JSON), page, pageSize, sort, populate and fields query parameters."),
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleResource)

	s.mcp.AddResourceTemplate(mcp.NewResourceTemplate(
		"strapi://content-type/{uid}/{entryId}",
		"Single entry",
		mcp.WithTemplateDescription("One entry of a content type by id. Supports populate and fields query parameters."),
		mcp.WithTemplateMIMEType("application/json"),
	), s.handleResource)
}

// refreshResources lists one concrete resource per discovered content type.
func (s *Server) refreshResources(ctx context.Context) {
	types, err := s.client.ContentTypes(ctx)
	if err != nil {
		logging.Warn("Server", "Content type discovery failed, resource listing will be empty: %v", err)
		return
	}

	for _, ct := range types {
		name := ct.DisplayName
		if name == "" {
			name = ct.UID
		}
		s.mcp.AddResource(mcp.NewResource(
			fmt.Sprintf("strapi://content-type/%s", ct.UID),
			name,
			mcp.WithResourceDescription(fmt.Sprintf("Entries of %s", ct.UID)),
			mcp.WithMIMEType("application/json"),
		), s.handleResource)
	}
	logging.Info("Server", "Listed %d content-type resources", len(types))
}

// resourceRef is a parsed resource URI.
type resourceRef struct {
	uid     string
	entryID string
	opts    *strapi.QueryOptions
}

// parseResourceURI decodes a strapi:// URI into its content type, optional
// entry id and query options.
func parseResourceURI(raw string) (*resourceRef, error) {
	invalid := func(detail string) error {
		return &strapi.OperationError{
			Kind:   strapi.KindInvalidRequest,
			Op:     "read resource " + raw,
			Detail: detail,
		}
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, invalid("not a valid URI")
	}
	if parsed.Scheme != resourceScheme || parsed.Host != "content-type" {
		return nil, invalid("URI must start with strapi://content-type/")
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return nil, invalid("content type UID is missing")
	}
	if len(segments) > 2 {
		return nil, invalid("too many path segments")
	}

	ref := &resourceRef{uid: segments[0]}
	if len(segments) == 2 {
		ref.entryID = segments[1]
	}

	opts, err := queryOptionsFromValues(parsed.Query())
	if err != nil {
		return nil, invalid(err.Error())
	}
	ref.opts = opts
	return ref, nil
}

// queryOptionsFromValues maps URI query parameters onto QueryOptions. Absent
// parameters yield nil options.
func queryOptionsFromValues(values url.Values) (*strapi.QueryOptions, error) {
	if len(values) == 0 {
		return nil, nil
	}

	opts := &strapi.QueryOptions{}

	if raw := values.Get("filters"); raw != "" {
		var filters map[string]interface{}
		if err := json.Unmarshal([]byte(raw), &filters); err != nil {
			return nil, fmt.Errorf("filters parameter is not a JSON object: %w", err)
		}
		opts.Filters = filters
	}

	var pagination strapi.Pagination
	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return nil, fmt.Errorf("page parameter %q is not a positive integer", raw)
		}
		pagination.Page = page
	}
	if raw := values.Get("pageSize"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 {
			return nil, fmt.Errorf("pageSize parameter %q is not a positive integer", raw)
		}
		pagination.PageSize = size
	}
	if pagination.Page > 0 || pagination.PageSize > 0 {
		opts.Pagination = &pagination
	}

	if raw := values.Get("sort"); raw != "" {
		opts.Sort = strings.Split(raw, ",")
	}
	if raw := values.Get("populate"); raw != "" {
		if strings.Contains(raw, ",") {
			opts.Populate = strings.Split(raw, ",")
		} else {
			opts.Populate = raw
		}
	}
	if raw := values.Get("fields"); raw != "" {
		opts.Fields = strings.Split(raw, ",")
	}
	return opts, nil
}

// handleResource serves both the collection and the entry URI forms.
func (s *Server) handleResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	ref, err := parseResourceURI(request.Params.URI)
	if err != nil {
		return nil, err
	}

	var payload interface{}
	if ref.entryID != "" {
		payload, err = s.client.Entry(ctx, ref.uid, ref.entryID, ref.opts)
	} else {
		payload, err = s.client.Entries(ctx, ref.uid, ref.opts)
	}
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode resource contents: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
