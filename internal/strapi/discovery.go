package strapi

import (
	"context"
	"net/http"
	"strings"

	"strapimcp/pkg/logging"
)

// defaultProbeNames are common collection names probed when no management
// endpoint is reachable with the configured credentials. The order is fixed
// so discovery stays deterministic.
var defaultProbeNames = []string{
	"articles", "posts", "pages", "products", "categories",
	"tags", "authors", "events", "media", "menus",
}

// internalUIDPrefixes mark CMS-internal content types hidden from discovery.
var internalUIDPrefixes = []string{"admin::", "plugin::"}

func isInternalUID(uid string) bool {
	for _, prefix := range internalUIDPrefixes {
		if strings.HasPrefix(uid, prefix) {
			return true
		}
	}
	return false
}

// ContentTypes returns the content-type descriptors of the instance,
// populating the process-wide cache on first use. Concurrent callers share
// one discovery run.
func (c *Client) ContentTypes(ctx context.Context) ([]ContentType, error) {
	if cached := c.cache.Get(); cached != nil {
		return cached, nil
	}

	result, err, _ := c.discovery.Do("content-types", func() (interface{}, error) {
		return c.discoverContentTypes(ctx)
	})
	if err != nil {
		return nil, err
	}

	types := result.([]ContentType)
	c.cache.Set(types)
	return types, nil
}

// discoverContentTypes tries the management endpoints first and falls back
// to probing common collection names. Probing is sequential on purpose:
// fanning out would hammer the CMS and make the fallback order racy.
func (c *Client) discoverContentTypes(ctx context.Context) ([]ContentType, error) {
	if c.cfg.HasAdminCredentials() {
		if types, err := c.builderContentTypes(ctx); err == nil && len(types) > 0 {
			logging.Info("Discovery", "Found %d content types via content-type-builder", len(types))
			return types, nil
		}
	}

	if types, err := c.publicContentTypes(ctx); err == nil && len(types) > 0 {
		logging.Info("Discovery", "Found %d content types via public content-types endpoint", len(types))
		return types, nil
	}

	types := c.probeContentTypes(ctx)
	if len(types) == 0 {
		return nil, opError(KindResourceNotFound, "discover content types",
			"no management endpoint reachable and no probed collection responded")
	}
	logging.Info("Discovery", "Inferred %d content types by probing", len(types))
	return types, nil
}

// builderContentTypes reads /content-type-builder/content-types, which
// needs an admin session but returns full schemas.
func (c *Client) builderContentTypes(ctx context.Context) ([]ContentType, error) {
	plan, err := c.resolver.ResolveSchema("/content-type-builder/content-types")
	if err != nil {
		return nil, err
	}

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, cand.Path, nil, nil)
	}, ExecOptions{})
	if err != nil {
		return nil, err
	}

	var types []ContentType
	for _, item := range result.Normalized.Data {
		ct, ok := descriptorFromRaw(item)
		if !ok || isInternalUID(ct.UID) {
			continue
		}
		types = append(types, ct)
	}
	return types, nil
}

// publicContentTypes reads /api/content-types, exposed by some instances.
func (c *Client) publicContentTypes(ctx context.Context) ([]ContentType, error) {
	mode := ModeAPIToken
	if !c.cfg.HasAPIToken() {
		mode = ModeAnonymous
	}
	plan := FallbackPlan{
		Op:         "public content types",
		Candidates: []Candidate{{Mode: mode, Path: "/api/content-types"}},
	}

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, cand.Path, nil, nil)
	}, ExecOptions{})
	if err != nil {
		return nil, err
	}

	var types []ContentType
	for _, item := range result.Normalized.Data {
		ct, ok := descriptorFromRaw(item)
		if !ok || isInternalUID(ct.UID) {
			continue
		}
		types = append(types, ct)
	}
	return types, nil
}

// probeContentTypes requests a fixed list of common collection names and
// synthesizes descriptors for the ones that answer, inferring attributes
// from the first sample entry's keys.
func (c *Client) probeContentTypes(ctx context.Context) []ContentType {
	mode := ModeAPIToken
	if !c.cfg.HasAPIToken() {
		mode = ModeAnonymous
	}

	var types []ContentType
	for _, name := range c.probeNames {
		plan := FallbackPlan{
			Op:         "probe " + name,
			Candidates: []Candidate{{Mode: mode, Path: "/api/" + name}},
		}
		result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
			return c.jsonRequest(ctx, http.MethodGet, cand.Path, nil, nil)
		}, ExecOptions{})
		if err != nil {
			continue
		}

		ct := ContentType{
			UID:         "api::" + singularize(name) + "." + singularize(name),
			APIID:       name,
			DisplayName: titleCase(name),
			PluralName:  name,
		}
		if len(result.Normalized.Data) > 0 {
			ct.Attributes = inferAttributes(result.Normalized.Data[0])
		}
		types = append(types, ct)
	}
	return types
}

// inferAttributes derives a best-effort attribute map from one sample
// entry's keys, excluding the id.
func inferAttributes(sample Entry) map[string]Attribute {
	attrs := make(map[string]Attribute, len(sample))
	for key, value := range sample {
		if key == "id" {
			continue
		}
		attrs[key] = Attribute{Type: inferType(value)}
	}
	if len(attrs) == 0 {
		return nil
	}
	return attrs
}

func inferType(value interface{}) string {
	switch value.(type) {
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	case map[string]interface{}:
		return "json"
	case []interface{}:
		return "json"
	default:
		return "string"
	}
}

// descriptorFromRaw tolerates the two descriptor shapes the management
// endpoints return: {uid, schema: {...}} from the builder and
// {uid, apiID, info: {...}, attributes: {...}} from older plugins.
func descriptorFromRaw(item Entry) (ContentType, bool) {
	uid, _ := item["uid"].(string)
	if uid == "" {
		return ContentType{}, false
	}

	ct := ContentType{UID: uid}
	if apiID, ok := item["apiID"].(string); ok {
		ct.APIID = apiID
	}

	meta := item
	if schema, ok := item["schema"].(map[string]interface{}); ok {
		meta = schema
	} else if info, ok := item["info"].(map[string]interface{}); ok {
		meta = info
	}

	if v, ok := meta["displayName"].(string); ok {
		ct.DisplayName = v
	}
	if v, ok := meta["description"].(string); ok {
		ct.Description = v
	}
	if v, ok := meta["pluralName"].(string); ok {
		ct.PluralName = v
	}
	if ct.APIID == "" {
		ct.APIID = ct.PluralName
	}

	if rawAttrs, ok := meta["attributes"].(map[string]interface{}); ok {
		attrs := make(map[string]Attribute, len(rawAttrs))
		for name, rawAttr := range rawAttrs {
			attr := Attribute{}
			if spec, ok := rawAttr.(map[string]interface{}); ok {
				if v, ok := spec["type"].(string); ok {
					attr.Type = v
				}
				if v, ok := spec["required"].(bool); ok {
					attr.Required = v
				}
				if v, ok := spec["target"].(string); ok {
					attr.Target = v
				}
				if v, ok := spec["component"].(string); ok {
					attr.Component = v
				}
			}
			attrs[name] = attr
		}
		ct.Attributes = attrs
	}
	return ct, true
}

func singularize(name string) string {
	switch {
	case strings.HasSuffix(name, "ies"):
		return name[:len(name)-3] + "y"
	case strings.HasSuffix(name, "s") && !strings.HasSuffix(name, "ss"):
		return name[:len(name)-1]
	default:
		return name
	}
}

func titleCase(name string) string {
	if name == "" {
		return name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
