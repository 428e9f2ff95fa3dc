package davclient

import (
	"context"
	"strings"
)

// ListObjects runs a Depth:1 PROPFIND against the collection and keeps the
// entries that are calendar objects, identified by their .ics suffix or a
// text/calendar content type. Hrefs come back root-relative from most
// servers, so they are made absolute against the server origin rather than
// the request URL; resolving against the request URL would double-prefix
// the collection path.
func (c *davClient) ListObjects(ctx context.Context, collectionURL string) ([]CalendarObject, error) {
	ms, err := c.httpClient.DoPROPFIND(ctx, collectionURL, 1, "getetag", "getcontenttype")
	if err != nil {
		return nil, &DiscoveryError{URL: collectionURL, Err: err}
	}

	seen := make(map[string]struct{}, len(ms.Entries))
	objects := make([]CalendarObject, 0, len(ms.Entries))
	for _, entry := range ms.Entries {
		if !isCalendarObject(entry.Href, entry.ContentType) {
			continue
		}
		abs := c.absoluteURL(entry.Href)
		if _, dup := seen[abs]; dup {
			continue
		}
		seen[abs] = struct{}{}
		objects = append(objects, CalendarObject{URL: abs, ETag: entry.ETag})
	}

	c.logger.Debug("collection listed",
		"collection", collectionURL,
		"entries", len(ms.Entries),
		"objects", len(objects))
	return objects, nil
}

func isCalendarObject(href, contentType string) bool {
	if strings.HasSuffix(href, ".ics") {
		return true
	}
	return strings.Contains(strings.ToLower(contentType), "text/calendar")
}

func (c *davClient) absoluteURL(href string) string {
	if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
		return href
	}
	if !strings.HasPrefix(href, "/") {
		href = "/" + href
	}
	return c.origin + href
}
