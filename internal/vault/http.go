package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Header names used by the HTTP vault protocol for blob metadata. The
// modified header carries the uploader's timestamp, not the server's
// receive time, so round-tripping a blob preserves its original mtime.
const (
	headerModified = "X-Envsync-Modified"
	headerETag     = "ETag"
	headerIfMatch  = "If-Match"
)

// HTTP is a vault served over a REST API:
//
//	GET /secrets          -> ["NAME", ...]
//	GET /secrets/{name}   -> {"value": "...", "updated": "RFC 3339"}
//	PUT /secrets/{name}   <- {"value": "..."}
//	GET /blobs/{name}     -> raw bytes, X-Envsync-Modified + ETag headers
//	PUT /blobs/{name}     <- raw bytes, X-Envsync-Modified + If-Match headers
//
// A 404 on any GET maps to ErrNotFound. The client performs no retries.
type HTTP struct {
	base   string
	client *http.Client
}

// NewHTTP returns a vault client for the service at baseURL.
func NewHTTP(baseURL string, client *http.Client) (*HTTP, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid vault URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid vault URL %q: unsupported scheme %q", baseURL, u.Scheme)
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTP{base: strings.TrimRight(u.String(), "/"), client: client}, nil
}

// Close implements the store interface; the HTTP client holds no
// per-vault resources.
func (h *HTTP) Close() error { return nil }

type secretBody struct {
	Value   string    `json:"value"`
	Updated time.Time `json:"updated,omitempty"`
}

// Get returns the secret stored under name.
func (h *HTTP) Get(ctx context.Context, name string) (Secret, error) {
	resp, err := h.do(ctx, http.MethodGet, "/secrets/"+url.PathEscape(name), nil, nil)
	if err != nil {
		return Secret{}, fmt.Errorf("get secret %s: %w", name, err)
	}
	defer resp.Body.Close()

	var body secretBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Secret{}, fmt.Errorf("get secret %s: decode response: %w", name, err)
	}
	return Secret{Value: body.Value, Updated: body.Updated}, nil
}

// Set stores value under name. The server assigns the updated timestamp.
func (h *HTTP) Set(ctx context.Context, name, value string) error {
	payload, err := json.Marshal(secretBody{Value: value})
	if err != nil {
		return fmt.Errorf("set secret %s: %w", name, err)
	}

	resp, err := h.do(ctx, http.MethodPut, "/secrets/"+url.PathEscape(name), payload, map[string]string{
		"Content-Type": "application/json",
	})
	if err != nil {
		return fmt.Errorf("set secret %s: %w", name, err)
	}
	resp.Body.Close()
	return nil
}

// List returns the names of all stored secrets.
func (h *HTTP) List(ctx context.Context) ([]string, error) {
	resp, err := h.do(ctx, http.MethodGet, "/secrets", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list secrets: %w", err)
	}
	defer resp.Body.Close()

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("list secrets: decode response: %w", err)
	}
	return names, nil
}

// Download returns the blob stored under name.
func (h *HTTP) Download(ctx context.Context, name string) (Blob, error) {
	resp, err := h.do(ctx, http.MethodGet, "/blobs/"+url.PathEscape(name), nil, nil)
	if err != nil {
		return Blob{}, fmt.Errorf("download blob %s: %w", name, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return Blob{}, fmt.Errorf("download blob %s: %w", name, err)
	}

	blob := Blob{Data: data, ETag: strings.Trim(resp.Header.Get(headerETag), `"`)}
	if stamp := resp.Header.Get(headerModified); stamp != "" {
		blob.Modified, err = time.Parse(time.RFC3339Nano, stamp)
		if err != nil {
			return Blob{}, fmt.Errorf("download blob %s: bad %s %q: %w", name, headerModified, stamp, err)
		}
	}
	return blob, nil
}

// Upload stores data under name. A non-empty etag is sent as If-Match so
// the server can reject concurrent modification.
func (h *HTTP) Upload(ctx context.Context, name string, data []byte, modified time.Time, etag string) error {
	headers := map[string]string{
		"Content-Type": "application/octet-stream",
		headerModified: modified.UTC().Format(time.RFC3339Nano),
	}
	if etag != "" {
		headers[headerIfMatch] = `"` + etag + `"`
	}

	resp, err := h.do(ctx, http.MethodPut, "/blobs/"+url.PathEscape(name), data, headers)
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", name, err)
	}
	resp.Body.Close()
	return nil
}

// do issues one request and maps 404 to ErrNotFound and any other non-2xx
// status to an error. The caller owns the response body on success.
func (h *HTTP) do(ctx context.Context, method, path string, body []byte, headers map[string]string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, h.base+path, reader)
	if err != nil {
		return nil, err
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		resp.Body.Close()
		return nil, ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		resp.Body.Close()
		return nil, fmt.Errorf("%s %s: unexpected status %s", method, path, resp.Status)
	}
	return resp, nil
}
