package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"strapimcp/internal/strapi"
	"strapimcp/pkg/logging"
)

// guard wraps a tool handler with panic recovery: a handler bug must surface
// as a tool error to the calling model, never kill the transport.
func (s *Server) guard(h server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (result *mcp.CallToolResult, err error) {
		defer func() {
			if r := recover(); r != nil {
				logging.Error("Server", fmt.Errorf("%v", r), "Panic in tool handler %s", request.Params.Name)
				result = mcp.NewToolResultError(fmt.Sprintf("internal error in %s: %v", request.Params.Name, r))
				err = nil
			}
		}()
		return h(ctx, request)
	}
}

// jsonResult marshals a value as the tool's text result.
func jsonResult(v interface{}) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// failure converts an adapter error into a tool error result. The structured
// kind and attempted paths are already part of the error string.
func failure(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// objectArg extracts an object argument as a map, nil when absent or not an
// object.
func objectArg(request mcp.CallToolRequest, key string) map[string]interface{} {
	raw, ok := request.GetArguments()[key]
	if !ok {
		return nil
	}
	obj, _ := raw.(map[string]interface{})
	return obj
}

// idListArg extracts an array argument as a list of id strings, accepting
// both string and numeric elements.
func idListArg(request mcp.CallToolRequest, key string) []string {
	raw, ok := request.GetArguments()[key].([]interface{})
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		switch typed := item.(type) {
		case string:
			ids = append(ids, typed)
		case float64:
			ids = append(ids, fmt.Sprintf("%d", int64(typed)))
		default:
			ids = append(ids, fmt.Sprintf("%v", typed))
		}
	}
	return ids
}

func (s *Server) handleListContentTypes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	types, err := s.client.ContentTypes(ctx)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(types), nil
}

func (s *Server) handleGetEntries(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}

	opts, err := strapi.ParseQueryOptions(request.GetString("options", ""))
	if err != nil {
		return failure(err), nil
	}

	result, err := s.client.Entries(ctx, uid, opts)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleGetEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}

	opts, err := strapi.ParseQueryOptions(request.GetString("options", ""))
	if err != nil {
		return failure(err), nil
	}

	entry, err := s.client.Entry(ctx, uid, id, opts)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(entry), nil
}

func (s *Server) handleCreateEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}
	data := objectArg(request, "data")
	if len(data) == 0 {
		return mcp.NewToolResultError("data argument is required and must be an object"), nil
	}

	if err := s.rules.ValidateCreate(uid, data); err != nil {
		return failure(err), nil
	}

	result, err := s.client.CreateEntry(ctx, uid, data)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleUpdateEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}
	data := objectArg(request, "data")
	if len(data) == 0 {
		return mcp.NewToolResultError("data argument is required and must be an object"), nil
	}

	if err := s.rules.ValidateUpdate(uid, data); err != nil {
		return failure(err), nil
	}

	result, err := s.client.UpdateEntry(ctx, uid, id, data)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleDeleteEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}

	if err := s.client.DeleteEntry(ctx, uid, id); err != nil {
		return failure(err), nil
	}
	return jsonResult(map[string]interface{}{"deleted": true, "contentType": uid, "id": id}), nil
}

func (s *Server) handlePublishEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handlePublication(ctx, request, true)
}

func (s *Server) handleUnpublishEntry(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handlePublication(ctx, request, false)
}

func (s *Server) handlePublication(ctx context.Context, request mcp.CallToolRequest, publish bool) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}

	var result *strapi.Normalized
	if publish {
		result, err = s.client.PublishEntry(ctx, uid, id)
	} else {
		result, err = s.client.UnpublishEntry(ctx, uid, id)
	}
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleGetSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}

	schema, err := s.client.Schema(ctx, uid)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(schema), nil
}

func (s *Server) handleCreateContentType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	definition := objectArg(request, "definition")
	if len(definition) == 0 {
		return mcp.NewToolResultError("definition argument is required and must be an object"), nil
	}

	result, err := s.client.CreateContentType(ctx, definition)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleUpdateContentType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}
	definition := objectArg(request, "definition")
	if len(definition) == 0 {
		return mcp.NewToolResultError("definition argument is required and must be an object"), nil
	}

	result, err := s.client.UpdateContentType(ctx, uid, definition)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleDeleteContentType(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}

	if err := s.client.DeleteContentType(ctx, uid); err != nil {
		return failure(err), nil
	}
	return jsonResult(map[string]interface{}{"deleted": true, "contentType": uid}), nil
}

func (s *Server) handleListComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	components, err := s.client.Components(ctx)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(components), nil
}

func (s *Server) handleGetComponentSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError("component argument is required"), nil
	}

	schema, err := s.client.ComponentSchema(ctx, uid)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(schema), nil
}

func (s *Server) handleCreateComponent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	definition := objectArg(request, "definition")
	if len(definition) == 0 {
		return mcp.NewToolResultError("definition argument is required and must be an object"), nil
	}

	result, err := s.client.CreateComponent(ctx, definition)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleUpdateComponent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid, err := request.RequireString("component")
	if err != nil {
		return mcp.NewToolResultError("component argument is required"), nil
	}
	definition := objectArg(request, "definition")
	if len(definition) == 0 {
		return mcp.NewToolResultError("definition argument is required and must be an object"), nil
	}

	result, err := s.client.UpdateComponent(ctx, uid, definition)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleUploadMedia(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileData, err := request.RequireString("fileData")
	if err != nil {
		return mcp.NewToolResultError("fileData argument is required"), nil
	}
	fileName, err := request.RequireString("fileName")
	if err != nil {
		return mcp.NewToolResultError("fileName argument is required"), nil
	}
	fileType, err := request.RequireString("fileType")
	if err != nil {
		return mcp.NewToolResultError("fileType argument is required"), nil
	}

	result, err := s.client.UploadMedia(ctx, fileData, fileName, fileType)
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleUploadMediaFromPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("filePath")
	if err != nil {
		return mcp.NewToolResultError("filePath argument is required"), nil
	}

	result, err := s.client.UploadMediaFromPath(ctx, path,
		request.GetString("fileName", ""),
		request.GetString("fileType", ""))
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleUploadMediaFromURL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rawURL, err := request.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError("url argument is required"), nil
	}

	result, err := s.client.UploadMediaFromURL(ctx, rawURL, request.GetString("fileName", ""))
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleConnectRelation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleRelation(ctx, request, s.client.ConnectRelation)
}

func (s *Server) handleDisconnectRelation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleRelation(ctx, request, s.client.DisconnectRelation)
}

func (s *Server) handleSetRelation(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.handleRelation(ctx, request, s.client.SetRelation)
}

func (s *Server) handleRelation(ctx context.Context, request mcp.CallToolRequest,
	op func(context.Context, string, string, string, []string) (*strapi.Normalized, error)) (*mcp.CallToolResult, error) {

	uid, err := request.RequireString("contentType")
	if err != nil {
		return mcp.NewToolResultError("contentType argument is required"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id argument is required"), nil
	}
	field, err := request.RequireString("relationField")
	if err != nil {
		return mcp.NewToolResultError("relationField argument is required"), nil
	}

	result, err := op(ctx, uid, id, field, idListArg(request, "relatedIds"))
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}

func (s *Server) handleClearCache(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.client.Cache().Clear()
	return mcp.NewToolResultText("content-type cache cleared"), nil
}

func (s *Server) handleRest(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("path argument is required"), nil
	}
	method := request.GetString("method", "GET")

	result, err := s.client.Rest(ctx, method, path, objectArg(request, "body"))
	if err != nil {
		return failure(err), nil
	}
	return jsonResult(result), nil
}
