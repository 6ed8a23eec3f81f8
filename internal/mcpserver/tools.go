package mcpserver

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// registerTools builds the tool catalog. Descriptions are written for the
// calling model: they name the argument formats and the fallback behavior the
// model can rely on.
func (s *Server) registerTools() {
	s.mcp.AddTool(mcp.NewTool("list_content_types",
		mcp.WithDescription("List all content types of the connected Strapi instance. Falls back to probing common collection names when no management endpoint is reachable."),
	), s.guard(s.handleListContentTypes))

	s.mcp.AddTool(mcp.NewTool("get_entries",
		mcp.WithDescription("Fetch entries of a content type. Options is a JSON string with filters, pagination, sort, populate and fields."),
		mcp.WithString("contentType",
			mcp.Required(),
			mcp.Description(`Content type UID, e.g. "api::article.article"`),
		),
		mcp.WithString("options",
			mcp.Description(`JSON query options, e.g. {"filters":{"title":{"$contains":"hello"}},"pagination":{"page":1,"pageSize":25},"sort":["title:asc"]}`),
		),
	), s.guard(s.handleGetEntries))

	s.mcp.AddTool(mcp.NewTool("get_entry",
		mcp.WithDescription("Fetch a single entry by id. Options may carry populate and fields; filters are ignored."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
		mcp.WithString("options", mcp.Description("JSON query options (populate, fields)")),
	), s.guard(s.handleGetEntry))

	s.mcp.AddTool(mcp.NewTool("create_entry",
		mcp.WithDescription("Create a new entry. Data is the attribute object, without a data wrapper."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Attribute values for the new entry")),
	), s.guard(s.handleCreateEntry))

	s.mcp.AddTool(mcp.NewTool("update_entry",
		mcp.WithDescription("Update attributes of an existing entry."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
		mcp.WithObject("data", mcp.Required(), mcp.Description("Attribute values to change")),
	), s.guard(s.handleUpdateEntry))

	s.mcp.AddTool(mcp.NewTool("delete_entry",
		mcp.WithDescription("Delete an entry."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
	), s.guard(s.handleDeleteEntry))

	s.mcp.AddTool(mcp.NewTool("publish_entry",
		mcp.WithDescription("Publish an entry, via the admin action endpoint or a publishedAt write."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
	), s.guard(s.handlePublishEntry))

	s.mcp.AddTool(mcp.NewTool("unpublish_entry",
		mcp.WithDescription("Unpublish an entry."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
	), s.guard(s.handleUnpublishEntry))

	s.mcp.AddTool(mcp.NewTool("get_content_type_schema",
		mcp.WithDescription("Get the full schema of a content type. Needs admin credentials; without them a degraded inferred descriptor may be served."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
	), s.guard(s.handleGetSchema))

	s.mcp.AddTool(mcp.NewTool("create_content_type",
		mcp.WithDescription("Create a new collection type through the content-type builder (admin only). The definition needs displayName, singularName, pluralName and attributes."),
		mcp.WithObject("definition", mcp.Required(), mcp.Description("Content type definition")),
	), s.guard(s.handleCreateContentType))

	s.mcp.AddTool(mcp.NewTool("update_content_type",
		mcp.WithDescription("Update a content type's schema through the content-type builder (admin only)."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithObject("definition", mcp.Required(), mcp.Description("Updated content type definition")),
	), s.guard(s.handleUpdateContentType))

	s.mcp.AddTool(mcp.NewTool("delete_content_type",
		mcp.WithDescription("Delete a content type through the content-type builder (admin only)."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
	), s.guard(s.handleDeleteContentType))

	s.mcp.AddTool(mcp.NewTool("list_components",
		mcp.WithDescription("List the reusable components of the content-type builder (admin only)."),
	), s.guard(s.handleListComponents))

	s.mcp.AddTool(mcp.NewTool("get_component_schema",
		mcp.WithDescription("Get one component's schema (admin only)."),
		mcp.WithString("component", mcp.Required(), mcp.Description(`Component UID, e.g. "shared.seo"`)),
	), s.guard(s.handleGetComponentSchema))

	s.mcp.AddTool(mcp.NewTool("create_component",
		mcp.WithDescription("Create a reusable component (admin only). The definition needs displayName, category and attributes."),
		mcp.WithObject("definition", mcp.Required(), mcp.Description("Component definition")),
	), s.guard(s.handleCreateComponent))

	s.mcp.AddTool(mcp.NewTool("update_component",
		mcp.WithDescription("Update a component's schema (admin only)."),
		mcp.WithString("component", mcp.Required(), mcp.Description("Component UID")),
		mcp.WithObject("definition", mcp.Required(), mcp.Description("Updated component definition")),
	), s.guard(s.handleUpdateComponent))

	s.mcp.AddTool(mcp.NewTool("upload_media",
		mcp.WithDescription("Upload a base64-encoded file to the media library."),
		mcp.WithString("fileData", mcp.Required(), mcp.Description("Base64-encoded file content")),
		mcp.WithString("fileName", mcp.Required(), mcp.Description("File name including extension")),
		mcp.WithString("fileType", mcp.Required(), mcp.Description(`MIME type, e.g. "image/png"`)),
	), s.guard(s.handleUploadMedia))

	s.mcp.AddTool(mcp.NewTool("upload_media_from_path",
		mcp.WithDescription("Upload a file from the server's filesystem. The path must lie below an allowed upload directory when those are configured."),
		mcp.WithString("filePath", mcp.Required(), mcp.Description("Absolute or relative file path")),
		mcp.WithString("fileName", mcp.Description("Override for the stored file name, defaults to the basename")),
		mcp.WithString("fileType", mcp.Description("Override for the MIME type, defaults to extension-based detection")),
	), s.guard(s.handleUploadMediaFromPath))

	s.mcp.AddTool(mcp.NewTool("upload_media_from_url",
		mcp.WithDescription("Download a file over http(s) and upload it to the media library."),
		mcp.WithString("url", mcp.Required(), mcp.Description("Source URL")),
		mcp.WithString("fileName", mcp.Description("Override for the stored file name, defaults to the URL basename")),
	), s.guard(s.handleUploadMediaFromURL))

	s.mcp.AddTool(mcp.NewTool("connect_relation",
		mcp.WithDescription("Attach related entries to a relation field."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
		mcp.WithString("relationField", mcp.Required(), mcp.Description("Name of the relation field")),
		mcp.WithArray("relatedIds", mcp.Required(), mcp.Description("Numeric ids of the entries to attach")),
	), s.guard(s.handleConnectRelation))

	s.mcp.AddTool(mcp.NewTool("disconnect_relation",
		mcp.WithDescription("Detach related entries from a relation field."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
		mcp.WithString("relationField", mcp.Required(), mcp.Description("Name of the relation field")),
		mcp.WithArray("relatedIds", mcp.Required(), mcp.Description("Numeric ids of the entries to detach")),
	), s.guard(s.handleDisconnectRelation))

	s.mcp.AddTool(mcp.NewTool("set_relation",
		mcp.WithDescription("Replace a relation field's full target set. An empty list clears the relation."),
		mcp.WithString("contentType", mcp.Required(), mcp.Description("Content type UID")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Entry id")),
		mcp.WithString("relationField", mcp.Required(), mcp.Description("Name of the relation field")),
		mcp.WithArray("relatedIds", mcp.Required(), mcp.Description("Numeric ids forming the new target set")),
	), s.guard(s.handleSetRelation))

	s.mcp.AddTool(mcp.NewTool("clear_content_type_cache",
		mcp.WithDescription("Drop the cached content-type descriptors so the next call re-discovers them. Use after changing schemas outside this server."),
	), s.guard(s.handleClearCache))

	s.mcp.AddTool(mcp.NewTool("strapi_rest",
		mcp.WithDescription("Raw REST escape hatch against the Strapi instance. Authentication and session refresh still apply. Paths under /api/ use the API token, anything else needs admin credentials."),
		mcp.WithString("path", mcp.Required(), mcp.Description(`Request path starting with /, e.g. "/api/articles"`)),
		mcp.WithString("method", mcp.Description("HTTP method: GET (default), POST, PUT or DELETE")),
		mcp.WithObject("body", mcp.Description("JSON request body for write methods")),
	), s.guard(s.handleRest))
}
