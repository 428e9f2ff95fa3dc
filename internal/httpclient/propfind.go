package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/beevik/etree"
)

// DAV is the WebDAV XML namespace.
const DAV = "DAV:"

// DoPROPFIND issues a PROPFIND with the given Depth, requesting the named
// DAV: properties, and maps the 207 Multi-Status response into entries.
func (c *httpClientWrapper) DoPROPFIND(ctx context.Context, urlStr string, depth int, props ...string) (*MultiStatus, error) {
	c.logger.Debug("starting PROPFIND request",
		"url", urlStr,
		"depth", depth,
		"properties", props)

	body, err := buildPropfindBody(props...)
	if err != nil {
		return nil, fmt.Errorf("build PROPFIND body: %w", err)
	}

	resolvedURL, err := c.resolveURL(urlStr)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "PROPFIND", resolvedURL.String(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Depth", fmt.Sprintf("%d", depth))
	req.Header.Set("Content-Type", "application/xml; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus {
		respBody, _ := io.ReadAll(resp.Body)
		c.logger.Debug("unexpected PROPFIND status",
			"status_code", resp.StatusCode,
			"status", resp.Status)
		return nil, &StatusError{
			Method: "PROPFIND",
			URL:    resolvedURL.String(),
			Status: resp.StatusCode,
			Body:   truncateBody(respBody),
		}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read multistatus body: %w", err)
	}

	result, err := parseMultiStatus(respBody)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("PROPFIND request complete", "entries", len(result.Entries))
	return result, nil
}

func buildPropfindBody(props ...string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="utf-8"`)
	propfind := doc.CreateElement("d:propfind")
	propfind.CreateAttr("xmlns:d", DAV)
	prop := propfind.CreateElement("d:prop")
	for _, p := range props {
		prop.CreateElement("d:" + p)
	}
	return doc.WriteToBytes()
}

// parseMultiStatus extracts (href, getetag, getcontenttype) per response
// element. Namespace prefixes vary between servers, so elements are matched
// by local name. Anything that is not a well-formed multistatus document is
// an error; partial data must not pass as an empty listing.
func parseMultiStatus(body []byte) (*MultiStatus, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, fmt.Errorf("parse multistatus XML: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "multistatus" {
		return nil, fmt.Errorf("unexpected multistatus root element")
	}

	var result MultiStatus
	for _, respElem := range root.ChildElements() {
		if respElem.Tag != "response" {
			continue
		}
		entry := MultiStatusEntry{}
		for _, child := range respElem.ChildElements() {
			switch child.Tag {
			case "href":
				entry.Href = strings.TrimSpace(child.Text())
			case "propstat":
				if !propstatOK(child) {
					continue
				}
				for _, propElem := range child.ChildElements() {
					if propElem.Tag != "prop" {
						continue
					}
					for _, p := range propElem.ChildElements() {
						switch p.Tag {
						case "getetag":
							entry.ETag = TrimETag(strings.TrimSpace(p.Text()))
						case "getcontenttype":
							entry.ContentType = strings.TrimSpace(p.Text())
						}
					}
				}
			}
		}
		if entry.Href == "" {
			continue
		}
		result.Entries = append(result.Entries, entry)
	}
	return &result, nil
}

func propstatOK(propstat *etree.Element) bool {
	for _, child := range propstat.ChildElements() {
		if child.Tag == "status" {
			return strings.Contains(child.Text(), "200")
		}
	}
	// Some servers omit the status element for the successful propstat.
	return true
}
