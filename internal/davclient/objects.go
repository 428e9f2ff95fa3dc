package davclient

import (
	"context"
	"errors"
)

// FetchObject retrieves one object. The tag from the response wins over
// the listing hint; some servers omit the ETag header on GET.
func (c *davClient) FetchObject(ctx context.Context, objectURL, hintETag string) ([]byte, string, error) {
	res, err := c.httpClient.DoGET(ctx, objectURL)
	if err != nil {
		return nil, "", &FetchError{URL: objectURL, Err: err}
	}
	etag := res.ETag
	if etag == "" {
		etag = hintETag
	}
	return res.Body, etag, nil
}

// StoreObject writes the full serialized body back. ErrPreconditionFailed
// passes through untouched so the caller can drive its conflict retry;
// every other failure is a WriteError.
func (c *davClient) StoreObject(ctx context.Context, objectURL string, body []byte, expectedETag string, unconditional bool) (string, error) {
	etag := expectedETag
	if unconditional {
		etag = ""
	} else if etag == "" {
		// No tag known: still refuse to recreate a resource someone
		// deleted in the meantime.
		etag = "*"
	}
	newETag, err := c.httpClient.DoPUT(ctx, objectURL, etag, body)
	if err != nil {
		if errors.Is(err, ErrPreconditionFailed) {
			return "", err
		}
		return "", &WriteError{URL: objectURL, Err: err}
	}
	return newETag, nil
}
