// Package httpclient wraps http.Client with the WebDAV verbs the sync
// engine needs: PROPFIND, GET and conditional PUT.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Wrapper is the transport surface consumed by the DAV client.
type Wrapper interface {
	DoPROPFIND(ctx context.Context, url string, depth int, props ...string) (*MultiStatus, error)
	DoGET(ctx context.Context, url string) (*Resource, error)
	// DoPUT writes data to url. A non-empty etag makes the write
	// conditional via If-Match; an empty etag writes unconditionally.
	// A stale precondition surfaces as ErrPreconditionFailed.
	DoPUT(ctx context.Context, url string, etag string, data []byte) (newETag string, err error)
}

// MultiStatus is the schema-mapped subset of a 207 Multi-Status response:
// per resource, its href and the two properties the engine asks for.
type MultiStatus struct {
	Entries []MultiStatusEntry
}

// MultiStatusEntry is one response element of a multistatus document.
type MultiStatusEntry struct {
	Href        string
	ETag        string
	ContentType string
}

// Resource is a fetched object body with its version tag, if the server
// sent one.
type Resource struct {
	Body []byte
	ETag string
}

type httpClientWrapper struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// NewWrapper creates a client wrapper. A nil logger discards debug output.
func NewWrapper(client *http.Client, baseURL url.URL, logger *slog.Logger) Wrapper {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &httpClientWrapper{client: client, baseURL: baseURL, logger: logger}
}

// resolveURL resolves a URL string against the base URL.
func (c *httpClientWrapper) resolveURL(urlStr string) (*url.URL, error) {
	ref, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("parse URL %q: %w", urlStr, err)
	}
	return c.baseURL.ResolveReference(ref), nil
}

// TrimETag strips the surrounding double quotes (and any weak-validator
// prefix) from an entity tag so tags from headers and PROPFIND bodies
// compare equal.
func TrimETag(etag string) string {
	etag = strings.TrimPrefix(etag, "W/")
	return strings.Trim(etag, `"`)
}

// quoteETag re-quotes a normalized tag for use in an If-Match header.
// The wildcard stays bare; RFC 9110 defines it without quotes.
func quoteETag(etag string) string {
	if etag == "*" {
		return etag
	}
	return `"` + TrimETag(etag) + `"`
}
