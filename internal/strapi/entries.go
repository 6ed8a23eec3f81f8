package strapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"
)

// Entries fetches a page of entries for a content type, applying the
// optional filter/pagination/sort/populate/fields query.
func (c *Client) Entries(ctx context.Context, uid string, opts *QueryOptions) (*Normalized, error) {
	if uid == "" {
		return nil, invalidRequest("get entries", "content type UID is required")
	}

	plan := c.resolver.ResolveCollection(uid)
	query := EncodeQuery(opts)

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, cand.Path, query, nil)
	}, ExecOptions{})
	if err != nil {
		return nil, err
	}
	return result.Normalized, nil
}

// Entry fetches a single entry by id. Only populate and fields apply.
func (c *Client) Entry(ctx context.Context, uid, id string, opts *QueryOptions) (Entry, error) {
	if uid == "" || id == "" {
		return nil, invalidRequest("get entry", "content type UID and id are required")
	}

	var narrowed *QueryOptions
	if opts != nil {
		narrowed = &QueryOptions{Populate: opts.Populate, Fields: opts.Fields}
	}

	plan := c.resolver.ResolveEntry(uid, id)
	query := EncodeQuery(narrowed)

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodGet, cand.Path, query, nil)
	}, ExecOptions{})
	if err != nil {
		return nil, err
	}
	if result.Normalized.Single != nil {
		return result.Normalized.Single, nil
	}
	if len(result.Normalized.Data) > 0 {
		return result.Normalized.Data[0], nil
	}
	return nil, &OperationError{
		Kind:   KindResourceNotFound,
		Op:     plan.Op,
		Detail: fmt.Sprintf("entry %s not found in %s", id, uid),
	}
}

// entryBody wraps the payload per candidate: the public API expects
// {"data": ...}, the admin content-manager takes the attributes directly.
func entryBody(cand Candidate, data Entry) interface{} {
	if cand.Mode == ModeAdminSession {
		return data
	}
	return map[string]interface{}{"data": data}
}

// CreateEntry creates a new entry. The executor stops at the first success,
// so the create is applied at most once even with several candidates.
func (c *Client) CreateEntry(ctx context.Context, uid string, data Entry) (*Normalized, error) {
	if uid == "" {
		return nil, invalidRequest("create entry", "content type UID is required")
	}
	if len(data) == 0 {
		return nil, invalidRequest("create entry", "data is required")
	}

	plan := c.resolver.ResolveCollection(uid)
	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPost, cand.Path, nil, entryBody(cand, data))
	}, ExecOptions{Write: true})
	if err != nil {
		return nil, err
	}
	return result.Normalized, nil
}

// UpdateEntry replaces attributes of an existing entry.
func (c *Client) UpdateEntry(ctx context.Context, uid, id string, data Entry) (*Normalized, error) {
	if uid == "" || id == "" {
		return nil, invalidRequest("update entry", "content type UID and id are required")
	}
	if len(data) == 0 {
		return nil, invalidRequest("update entry", "data is required")
	}

	plan := c.resolver.ResolveEntry(uid, id)
	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodPut, cand.Path, nil, entryBody(cand, data))
	}, ExecOptions{Write: true})
	if err != nil {
		return nil, err
	}
	return result.Normalized, nil
}

// DeleteEntry deletes an entry. Deletes are never retried automatically.
func (c *Client) DeleteEntry(ctx context.Context, uid, id string) error {
	if uid == "" || id == "" {
		return invalidRequest("delete entry", "content type UID and id are required")
	}

	plan := c.resolver.ResolveEntry(uid, id)
	_, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		return c.jsonRequest(ctx, http.MethodDelete, cand.Path, nil, nil)
	}, ExecOptions{Write: true})
	return err
}

// PublishEntry publishes an entry through the admin action endpoint, falling
// back to a public publishedAt write.
func (c *Client) PublishEntry(ctx context.Context, uid, id string) (*Normalized, error) {
	return c.setPublished(ctx, uid, id, true)
}

// UnpublishEntry is the inverse of PublishEntry.
func (c *Client) UnpublishEntry(ctx context.Context, uid, id string) (*Normalized, error) {
	return c.setPublished(ctx, uid, id, false)
}

func (c *Client) setPublished(ctx context.Context, uid, id string, publish bool) (*Normalized, error) {
	if uid == "" || id == "" {
		return nil, invalidRequest("publish entry", "content type UID and id are required")
	}

	plan := c.resolver.ResolvePublish(uid, id, publish)
	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		if cand.Mode == ModeAdminSession {
			// Dedicated content-manager action, empty body.
			return c.jsonRequest(ctx, http.MethodPost, cand.Path, nil, struct{}{})
		}
		// Public fallback toggles publishedAt directly.
		var publishedAt interface{}
		if publish {
			publishedAt = time.Now().UTC().Format(time.RFC3339)
		}
		body := map[string]interface{}{"data": map[string]interface{}{"publishedAt": publishedAt}}
		return c.jsonRequest(ctx, http.MethodPut, cand.Path, nil, body)
	}, ExecOptions{Write: true})
	if err != nil {
		return nil, err
	}
	return result.Normalized, nil
}

// relationAction is the verb inside the relation write payload.
type relationAction string

const (
	relationConnect    relationAction = "connect"
	relationDisconnect relationAction = "disconnect"
	relationSet        relationAction = "set"
)

// ConnectRelation attaches related entries to a relation field.
func (c *Client) ConnectRelation(ctx context.Context, uid, id, field string, relatedIDs []string) (*Normalized, error) {
	return c.modifyRelation(ctx, uid, id, field, relatedIDs, relationConnect)
}

// DisconnectRelation detaches related entries from a relation field.
func (c *Client) DisconnectRelation(ctx context.Context, uid, id, field string, relatedIDs []string) (*Normalized, error) {
	return c.modifyRelation(ctx, uid, id, field, relatedIDs, relationDisconnect)
}

// SetRelation replaces a relation field's full target set.
func (c *Client) SetRelation(ctx context.Context, uid, id, field string, relatedIDs []string) (*Normalized, error) {
	return c.modifyRelation(ctx, uid, id, field, relatedIDs, relationSet)
}

func (c *Client) modifyRelation(ctx context.Context, uid, id, field string, relatedIDs []string, action relationAction) (*Normalized, error) {
	if uid == "" || id == "" || field == "" {
		return nil, invalidRequest("modify relation", "content type UID, id and relation field are required")
	}
	if len(relatedIDs) == 0 && action != relationSet {
		return nil, invalidRequest("modify relation", "at least one related id is required")
	}

	refs := make([]map[string]interface{}, 0, len(relatedIDs))
	for _, rid := range relatedIDs {
		n, err := strconv.Atoi(rid)
		if err != nil {
			return nil, invalidRequest("modify relation", fmt.Sprintf("related id %q is not numeric", rid))
		}
		refs = append(refs, map[string]interface{}{"id": n})
	}

	data := Entry{field: map[string]interface{}{string(action): refs}}
	return c.UpdateEntry(ctx, uid, id, data)
}
