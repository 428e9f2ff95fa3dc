package httpclient

import (
	"context"
	"io"
	"net/http"
)

// DoGET retrieves a resource body together with its current entity tag.
// A missing ETag header is tolerated; callers fall back to a hint tag.
func (c *httpClientWrapper) DoGET(ctx context.Context, urlStr string) (*Resource, error) {
	c.logger.Debug("starting GET request", "url", urlStr)

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolvedURL.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Debug("unexpected GET status",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, &StatusError{
			Method: http.MethodGet,
			URL:    resolvedURL.String(),
			Status: resp.StatusCode,
			Body:   truncateBody(body),
		}
	}

	etag := TrimETag(resp.Header.Get("ETag"))
	c.logger.Debug("GET request complete", "etag", etag, "body_length", len(body))
	return &Resource{Body: body, ETag: etag}, nil
}
