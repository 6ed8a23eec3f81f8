package strapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"strapimcp/pkg/logging"
)

// UploadMedia uploads a base64-encoded file to the media library.
func (c *Client) UploadMedia(ctx context.Context, fileData, fileName, fileType string) (*Normalized, error) {
	if fileData == "" || fileName == "" || fileType == "" {
		return nil, invalidRequest("upload media", "file data, file name and file type are required")
	}

	decoded, err := base64.StdEncoding.DecodeString(fileData)
	if err != nil {
		return nil, invalidRequest("upload media", "file data is not valid base64")
	}
	if int64(len(decoded)) > c.cfg.MaxUploadSize {
		return nil, invalidRequest("upload media",
			fmt.Sprintf("file size %d exceeds the configured limit of %d bytes", len(decoded), c.cfg.MaxUploadSize))
	}

	return c.uploadBytes(ctx, decoded, fileName, fileType)
}

// UploadMediaFromPath uploads a file from the local filesystem. When
// allowed upload directories are configured, the file must live below one
// of them.
func (c *Client) UploadMediaFromPath(ctx context.Context, path, fileName, fileType string) (*Normalized, error) {
	if path == "" {
		return nil, invalidRequest("upload media from path", "file path is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, invalidRequest("upload media from path", fmt.Sprintf("invalid path %q", path))
	}
	if !c.pathAllowed(abs) {
		return nil, invalidRequest("upload media from path",
			fmt.Sprintf("path %q is outside the allowed upload directories", abs))
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, invalidRequest("upload media from path", fmt.Sprintf("cannot stat %q: %v", abs, err))
	}
	if info.IsDir() {
		return nil, invalidRequest("upload media from path", fmt.Sprintf("%q is a directory", abs))
	}
	if info.Size() > c.cfg.MaxUploadSize {
		return nil, invalidRequest("upload media from path",
			fmt.Sprintf("file size %d exceeds the configured limit of %d bytes", info.Size(), c.cfg.MaxUploadSize))
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, invalidRequest("upload media from path", fmt.Sprintf("cannot read %q: %v", abs, err))
	}

	if fileName == "" {
		fileName = filepath.Base(abs)
	}
	if fileType == "" {
		fileType = mime.TypeByExtension(filepath.Ext(abs))
		if fileType == "" {
			fileType = "application/octet-stream"
		}
	}
	return c.uploadBytes(ctx, data, fileName, fileType)
}

// UploadMediaFromURL downloads a file and re-uploads it to the media
// library. The configured upload timeout bounds the whole operation,
// download included.
func (c *Client) UploadMediaFromURL(ctx context.Context, rawURL, fileName string) (*Normalized, error) {
	if rawURL == "" {
		return nil, invalidRequest("upload media from url", "url is required")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, invalidRequest("upload media from url", fmt.Sprintf("invalid url %q", rawURL))
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, invalidRequest("upload media from url", err.Error())
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &OperationError{Kind: KindUpstreamUnavailable, Op: "upload media from url", Detail: "download failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &OperationError{
			Kind:   KindUpstreamUnavailable,
			Op:     "upload media from url",
			Detail: fmt.Sprintf("download returned status %d", resp.StatusCode),
		}
	}

	// Read one byte past the limit to tell "exactly at" from "over".
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.cfg.MaxUploadSize+1))
	if err != nil {
		return nil, &OperationError{Kind: KindUpstreamUnavailable, Op: "upload media from url", Detail: "download failed", Err: err}
	}
	if int64(len(data)) > c.cfg.MaxUploadSize {
		return nil, invalidRequest("upload media from url",
			fmt.Sprintf("downloaded file exceeds the configured limit of %d bytes", c.cfg.MaxUploadSize))
	}

	if fileName == "" {
		fileName = filepath.Base(parsed.Path)
		if fileName == "." || fileName == "/" || fileName == "" {
			fileName = "download"
		}
	}
	fileType := resp.Header.Get("Content-Type")
	if fileType == "" {
		fileType = "application/octet-stream"
	}
	if idx := strings.Index(fileType, ";"); idx > 0 {
		fileType = fileType[:idx]
	}

	return c.uploadBytes(ctx, data, fileName, fileType)
}

func (c *Client) pathAllowed(abs string) bool {
	if len(c.cfg.AllowedUploadDirs) == 0 {
		return true
	}
	for _, dir := range c.cfg.AllowedUploadDirs {
		allowed, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(allowed, abs)
		if err != nil {
			continue
		}
		if rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel)) {
			return true
		}
	}
	return false
}

// uploadBytes performs the multipart POST against the upload endpoints,
// bounded by the upload timeout.
func (c *Client) uploadBytes(ctx context.Context, data []byte, fileName, fileType string) (*Normalized, error) {
	plan := c.resolver.ResolveUpload()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.UploadTimeout)
	defer cancel()

	logging.Info("Media", "Uploading %s (%d bytes, %s)", fileName, len(data), fileType)

	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)

		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename=%q`, fileName))
		header.Set("Content-Type", fileType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
		if err := writer.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+cand.Path, bytes.NewReader(buf.Bytes()))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", writer.FormDataContentType())
		return req, nil
	}, ExecOptions{Write: true})
	if err != nil {
		return nil, err
	}
	return result.Normalized, nil
}

// Rest is the raw REST escape hatch: an arbitrary method and path, still
// routed through the executor so authentication and expiry retry apply.
func (c *Client) Rest(ctx context.Context, method, path string, body Entry) (*Normalized, error) {
	method = strings.ToUpper(method)
	switch method {
	case http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		return nil, invalidRequest("rest", fmt.Sprintf("unsupported method %q", method))
	}
	if path == "" || !strings.HasPrefix(path, "/") {
		return nil, invalidRequest("rest", "path must start with /")
	}

	plan, err := c.resolver.ResolveRaw(path)
	if err != nil {
		return nil, err
	}

	write := method != http.MethodGet
	result, err := c.executor.Execute(ctx, plan, func(ctx context.Context, cand Candidate) (*http.Request, error) {
		var payload interface{}
		if len(body) > 0 {
			payload = body
		}
		return c.jsonRequest(ctx, method, cand.Path, nil, payload)
	}, ExecOptions{Write: write})
	if err != nil {
		return nil, err
	}
	return result.Normalized, nil
}
