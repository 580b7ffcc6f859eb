// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dify is a client for the Dify knowledge-base REST API. It covers
// dataset, document, segment, embedding-model, and tag operations.
//
// The client is a thin mapping of methods to REST endpoints: requests carry
// a bearer token, responses decode into the structs in pkg/types, and remote
// failures surface as *APIError. Rate-limited and transient gateway
// responses are retried before a call returns.
package dify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pdiddy/dify-kb/internal/httputil"
	"github.com/pdiddy/dify-kb/pkg/types"
)

const defaultUserAgent = "dify-kb/0.1"

// Client talks to one Dify instance. Construct it with New; the service
// fields group the API surface by resource.
type Client struct {
	baseURL   string
	apiKey    string
	userAgent string
	hc        *http.Client

	Datasets  *DatasetService
	Documents *DocumentService
	Segments  *SegmentService
	Models    *ModelService
	Tags      *TagService
}

// New builds a Client from the given config. The base URL should include the
// API version prefix (e.g. "https://api.dify.ai/v1"); a trailing slash is
// trimmed.
func New(cfg types.ClientConfig) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("client config: %w", err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = types.DefaultTimeout
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	c := &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		userAgent: userAgent,
		hc:        &http.Client{Timeout: timeout},
	}
	c.Datasets = &DatasetService{client: c}
	c.Documents = &DocumentService{client: c}
	c.Segments = &SegmentService{client: c}
	c.Models = &ModelService{client: c}
	c.Tags = &TagService{client: c}
	return c, nil
}

// BaseURL returns the configured API base without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// APIError is a non-2xx response from the service, carrying the decoded
// remote error payload.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int
	// Code is the service's machine-readable error code, when present
	// (e.g. "dataset_name_duplicate").
	Code string
	// Message is the human-readable error message or raw body text.
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("dify: HTTP %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("dify: HTTP %d: %s", e.StatusCode, e.Message)
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(ctx, req, out)
}

// sendJSON issues a request with a JSON body and decodes the response into
// out. body may be nil; out may be nil when the caller only cares about
// success. The method is unconstrained because the tag endpoints use DELETE
// with a body.
func (c *Client) sendJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(ctx, req, out)
}

// sendFile issues a multipart POST with a "data" field holding the JSON
// encoding of data and a "file" part named filename. The file's MIME type is
// guessed from its extension.
func (c *Client) sendFile(ctx context.Context, path string, data any, filename string, file io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encoding data field: %w", err)
	}
	if err := mw.WriteField("data", string(encoded)); err != nil {
		return fmt.Errorf("writing data field: %w", err)
	}

	part, err := mw.CreatePart(fileHeader(filename))
	if err != nil {
		return fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("writing file part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf.Bytes()))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.do(ctx, req, out)
}

// fileHeader builds the MIME header for a file part, with a content type
// guessed from the filename extension.
func fileHeader(filename string) textproto.MIMEHeader {
	contentType := mime.TypeByExtension(filepath.Ext(filename))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(filename)))
	h.Set("Content-Type", contentType)
	return h
}

// do sends the request with auth headers, retries transient failures, and
// decodes the response. Empty 2xx bodies are treated as success.
func (c *Client) do(ctx context.Context, req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.Do(ctx, c.hc, req, 0)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp.StatusCode, body)
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// decodeAPIError maps a non-2xx body to *APIError. The service usually
// returns {"code": ..., "message": ..., "status": ...}; anything else is
// carried as raw text.
func decodeAPIError(statusCode int, body []byte) error {
	apiErr := &APIError{StatusCode: statusCode}

	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
		if apiErr.Message == "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(statusCode)
	}
	return apiErr
}
