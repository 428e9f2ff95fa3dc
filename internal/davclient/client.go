// Package davclient lists, fetches and conditionally stores calendar
// objects in a single WebDAV collection.
package davclient

import (
	"context"
	"io"
	"log/slog"
	"net/url"

	"github.com/fourfp/calpatch/internal/httpclient"
)

// CalendarObject is one discovered resource: its absolute URL and the
// entity tag reported by the listing. The tag is a hint; a later fetch may
// return a fresher one.
type CalendarObject struct {
	URL  string
	ETag string
}

// Client is the collection access surface consumed by the sync engine.
type Client interface {
	// ListObjects lists the calendar objects directly inside the
	// collection, with their current entity tags. An empty collection
	// yields an empty slice, not an error.
	ListObjects(ctx context.Context, collectionURL string) ([]CalendarObject, error)

	// FetchObject retrieves an object body and its entity tag. When the
	// response carries no tag, hintETag is returned instead.
	FetchObject(ctx context.Context, objectURL, hintETag string) (body []byte, etag string, err error)

	// StoreObject writes body to objectURL. Unless unconditional is set,
	// the write is conditioned on expectedETag still matching; a stale
	// tag surfaces as ErrPreconditionFailed.
	StoreObject(ctx context.Context, objectURL string, body []byte, expectedETag string, unconditional bool) (newETag string, err error)
}

type davClient struct {
	httpClient httpclient.Wrapper
	origin     string
	logger     *slog.Logger
}

// NewClient creates a collection client. baseURL supplies the server
// origin that listed hrefs are resolved against.
func NewClient(httpClient httpclient.Wrapper, baseURL url.URL, logger *slog.Logger) Client {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	origin := url.URL{Scheme: baseURL.Scheme, Host: baseURL.Host}
	return &davClient{
		httpClient: httpClient,
		origin:     origin.String(),
		logger:     logger,
	}
}
