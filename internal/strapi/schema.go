package strapi

import (
	"context"
	"errors"
	"net/http"

	"strapimcp/pkg/logging"
)

// Schema returns the full schema of a content type. This needs the
// content-type-builder, which is admin-only; without admin credentials the
// call fails fast unless discovery already produced an inferred descriptor,
// which is then returned as a degraded answer.
func (c *Client) Schema(ctx context.Context, uid string) (Entry, error) {
	if uid == "" {
		return nil, invalidRequest("get schema", "content type UID is required")
	}

	plan, err := c.resolver.ResolveSchema("/content-type-builder/content-types/" + uid)
	if err != nil {
		if cached, ok := c.cache.Lookup(uid); ok {
			logging.Warn("Schema", "No admin credentials, serving inferred descriptor for %s", uid)
			return descriptorToEntry(cached), nil
		}
		return nil, err
	}

	result, execErr := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, cand.Path, nil, nil)
	}, ExecOptions{})
	if execErr != nil {
		// The builder denies API tokens outright; an inferred descriptor is
		// still better than nothing for read-only introspection.
		var opErr *OperationError
		if errors.As(execErr, &opErr) && (opErr.Kind == KindAccessDenied || opErr.Kind == KindResourceNotFound) {
			if cached, ok := c.cache.Lookup(uid); ok {
				logging.Warn("Schema", "Builder inaccessible (%s), serving inferred descriptor for %s", opErr.Kind, uid)
				return descriptorToEntry(cached), nil
			}
		}
		return nil, execErr
	}

	if result.Normalized.Single != nil {
		return result.Normalized.Single, nil
	}
	if len(result.Normalized.Data) > 0 {
		return result.Normalized.Data[0], nil
	}
	return nil, opError(KindResourceNotFound, plan.Op, "schema response carried no data")
}

func descriptorToEntry(ct ContentType) Entry {
	attrs := make(map[string]interface{}, len(ct.Attributes))
	for name, attr := range ct.Attributes {
		spec := map[string]interface{}{"type": attr.Type}
		if attr.Required {
			spec["required"] = true
		}
		if attr.Target != "" {
			spec["target"] = attr.Target
		}
		if attr.Component != "" {
			spec["component"] = attr.Component
		}
		attrs[name] = spec
	}
	return Entry{
		"uid": ct.UID,
		"schema": map[string]interface{}{
			"displayName": ct.DisplayName,
			"description": ct.Description,
			"pluralName":  ct.PluralName,
			"attributes":  attrs,
		},
		"inferred": true,
	}
}

// CreateContentType creates a collection type through the builder. The
// payload is the builder's contentType object (displayName, singularName,
// pluralName, attributes); wrapping is added here.
func (c *Client) CreateContentType(ctx context.Context, definition Entry) (*Normalized, error) {
	if len(definition) == 0 {
		return nil, invalidRequest("create content type", "definition is required")
	}

	plan, err := c.resolver.ResolveSchema("/content-type-builder/content-types")
	if err != nil {
		return nil, err
	}

	body := definition
	if _, wrapped := definition["contentType"]; !wrapped {
		body = Entry{"contentType": definition}
	}

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, cand.Path, nil, body)
	}, ExecOptions{Write: true})
	if err != nil {
		return nil, err
	}

	// The schema changed; cached descriptors are stale.
	c.cache.Clear()
	return result.Normalized, nil
}

// UpdateContentType updates a content type's attributes through the builder.
func (c *Client) UpdateContentType(ctx context.Context, uid string, definition Entry) (*Normalized, error) {
	if uid == "" {
		return nil, invalidRequest("update content type", "content type UID is required")
	}
	if len(definition) == 0 {
		return nil, invalidRequest("update content type", "definition is required")
	}

	plan, err := c.resolver.ResolveSchema("/content-type-builder/content-types/" + uid)
	if err != nil {
		return nil, err
	}

	body := definition
	if _, wrapped := definition["contentType"]; !wrapped {
		body = Entry{"contentType": definition}
	}

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPut, cand.Path, nil, body)
	}, ExecOptions{Write: true})
	if err != nil {
		return nil, err
	}

	c.cache.Clear()
	return result.Normalized, nil
}

// DeleteContentType removes a content type through the builder.
func (c *Client) DeleteContentType(ctx context.Context, uid string) error {
	if uid == "" {
		return invalidRequest("delete content type", "content type UID is required")
	}

	plan, err := c.resolver.ResolveSchema("/content-type-builder/content-types/" + uid)
	if err != nil {
		return err
	}

	_, err = c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodDelete, cand.Path, nil, nil)
	}, ExecOptions{Write: true})
	if err != nil {
		return err
	}

	c.cache.Clear()
	return nil
}

// Components lists the builder's reusable components.
func (c *Client) Components(ctx context.Context) ([]Entry, error) {
	plan, err := c.resolver.ResolveSchema("/content-type-builder/components")
	if err != nil {
		return nil, err
	}

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, cand.Path, nil, nil)
	}, ExecOptions{})
	if err != nil {
		return nil, err
	}
	return result.Normalized.Data, nil
}

// ComponentSchema returns one component's schema.
func (c *Client) ComponentSchema(ctx context.Context, uid string) (Entry, error) {
	if uid == "" {
		return nil, invalidRequest("get component schema", "component UID is required")
	}

	plan, err := c.resolver.ResolveSchema("/content-type-builder/components/" + uid)
	if err != nil {
		return nil, err
	}

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, cand.Path, nil, nil)
	}, ExecOptions{})
	if err != nil {
		return nil, err
	}
	if result.Normalized.Single != nil {
		return result.Normalized.Single, nil
	}
	return nil, opError(KindResourceNotFound, plan.Op, "component response carried no data")
}

// CreateComponent creates a reusable component through the builder.
func (c *Client) CreateComponent(ctx context.Context, definition Entry) (*Normalized, error) {
	if len(definition) == 0 {
		return nil, invalidRequest("create component", "definition is required")
	}

	plan, err := c.resolver.ResolveSchema("/content-type-builder/components")
	if err != nil {
		return nil, err
	}

	body := definition
	if _, wrapped := definition["component"]; !wrapped {
		body = Entry{"component": definition}
	}

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, cand.Path, nil, body)
	}, ExecOptions{Write: true})
	if err != nil {
		return nil, err
	}

	c.cache.Clear()
	return result.Normalized, nil
}

// UpdateComponent updates a component's schema through the builder.
func (c *Client) UpdateComponent(ctx context.Context, uid string, definition Entry) (*Normalized, error) {
	if uid == "" {
		return nil, invalidRequest("update component", "component UID is required")
	}
	if len(definition) == 0 {
		return nil, invalidRequest("update component", "definition is required")
	}

	plan, err := c.resolver.ResolveSchema("/content-type-builder/components/" + uid)
	if err != nil {
		return nil, err
	}

	body := definition
	if _, wrapped := definition["component"]; !wrapped {
		body = Entry{"component": definition}
	}

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPut, cand.Path, nil, body)
	}, ExecOptions{Write: true})
	if err != nil {
		return nil, err
	}

	c.cache.Clear()
	return result.Normalized, nil
}
