package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
)

// DoPUT stores data at the given URL. A non-empty etag conditions the
// write on the stored resource still carrying that tag ("*" matches any
// existing resource); a 412 from the server maps to ErrPreconditionFailed
// so callers can run their conflict path. With an empty etag the write is
// unconditional.
func (c *httpClientWrapper) DoPUT(ctx context.Context, urlStr string, etag string, data []byte) (string, error) {
	c.logger.Debug("starting PUT request",
		"url", urlStr,
		"etag", etag,
		"data_length", len(data))

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, resolvedURL.String(), bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	if etag != "" {
		req.Header.Set("If-Match", quoteETag(etag))
	}
	req.Header.Set("Content-Type", "text/calendar; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "error", err)
		return "", err
	}
	defer resp.Body.Close()

	c.logger.Debug("received response", "status", resp.Status)

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		newETag := TrimETag(resp.Header.Get("ETag"))
		c.logger.Debug("PUT request complete", "status", resp.Status, "new_etag", newETag)
		return newETag, nil
	case http.StatusPreconditionFailed:
		c.logger.Debug("PUT rejected, stale entity tag", "etag", etag)
		return "", ErrPreconditionFailed
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Debug("unexpected PUT status",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return "", &StatusError{
			Method: http.MethodPut,
			URL:    resolvedURL.String(),
			Status: resp.StatusCode,
			Body:   truncateBody(body),
		}
	}
}
