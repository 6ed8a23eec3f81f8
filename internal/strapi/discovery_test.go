package strapi

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscovery_ProbePopulatesCacheFromHits(t *testing.T) {
	// 5 probed names, only 2 answer: exactly those 2 become descriptors,
	// with attributes inferred from the first sample entry's keys.
	transport := &routedTransport{routes: map[string]stubResponse{
		"/api/articles": {200, `{"data":[{"id":1,"title":"hello","body":"text","views":3}],"meta":{}}`},
		"/api/tags":     {200, `{"data":[{"id":1,"name":"go"}],"meta":{}}`},
	}}

	cfg := tokenOnlyConfig()
	client := NewClient(cfg,
		WithHTTPClient(transport),
		WithProbeNames([]string{"articles", "posts", "pages", "categories", "tags"}),
	)

	types, err := client.ContentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 2)

	assert.Equal(t, "api::article.article", types[0].UID)
	assert.Equal(t, "articles", types[0].APIID)
	require.NotNil(t, types[0].Attributes)
	assert.Contains(t, types[0].Attributes, "title")
	assert.Contains(t, types[0].Attributes, "body")
	assert.Contains(t, types[0].Attributes, "views")
	assert.NotContains(t, types[0].Attributes, "id", "id must be excluded from inferred attributes")
	assert.Equal(t, "string", types[0].Attributes["title"].Type)
	assert.Equal(t, "number", types[0].Attributes["views"].Type)

	assert.Equal(t, "api::tag.tag", types[1].UID)

	// cache populated: a second call must not re-probe
	before := len(transport.calls)
	again, err := client.ContentTypes(context.Background())
	require.NoError(t, err)
	assert.Len(t, again, 2)
	assert.Equal(t, before, len(transport.calls), "cached discovery must not hit the network")
}

func TestDiscovery_BuilderPreferredWithAdminCreds(t *testing.T) {
	transport := &routedTransport{routes: map[string]stubResponse{
		"/admin/login": {200, `{"data":{"token":"admin-jwt"}}`},
		"/content-type-builder/content-types": {200, `{"data":[
			{"uid":"api::article.article","schema":{"displayName":"Article","pluralName":"articles","attributes":{"title":{"type":"string","required":true}}}},
			{"uid":"admin::user","schema":{"displayName":"User"}},
			{"uid":"plugin::upload.file","schema":{"displayName":"File"}}
		]}`},
	}}

	client := NewClient(testConfig(), WithHTTPClient(transport))

	types, err := client.ContentTypes(context.Background())
	require.NoError(t, err)
	require.Len(t, types, 1, "internal admin:: and plugin:: types are filtered out")
	assert.Equal(t, "api::article.article", types[0].UID)
	assert.Equal(t, "Article", types[0].DisplayName)
	assert.Equal(t, "articles", types[0].PluralName)
	require.Contains(t, types[0].Attributes, "title")
	assert.True(t, types[0].Attributes["title"].Required)
}

func TestDiscovery_NothingFound(t *testing.T) {
	transport := &routedTransport{routes: map[string]stubResponse{}}
	client := NewClient(tokenOnlyConfig(),
		WithHTTPClient(transport),
		WithProbeNames([]string{"articles", "posts"}),
	)

	_, err := client.ContentTypes(context.Background())
	require.Error(t, err)

	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindResourceNotFound, kind)
}

func TestDescriptorFromRaw_InfoShape(t *testing.T) {
	ct, ok := descriptorFromRaw(Entry{
		"uid":   "api::page.page",
		"apiID": "pages",
		"info": map[string]interface{}{
			"displayName": "Page",
			"description": "Static pages",
		},
		"attributes": map[string]interface{}{},
	})
	require.True(t, ok)
	assert.Equal(t, "pages", ct.APIID)
	assert.Equal(t, "Page", ct.DisplayName)
	assert.Equal(t, "Static pages", ct.Description)
}

func TestDescriptorFromRaw_MissingUID(t *testing.T) {
	_, ok := descriptorFromRaw(Entry{"schema": map[string]interface{}{}})
	assert.False(t, ok)
}

func TestSingularize(t *testing.T) {
	tests := []struct{ in, out string }{
		{"articles", "article"},
		{"categories", "category"},
		{"posts", "post"},
		{"press", "press"},
		{"page", "page"},
	}
	for _, test := range tests {
		assert.Equal(t, test.out, singularize(test.in), "singularize(%s)", test.in)
	}
}
