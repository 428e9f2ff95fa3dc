// Package feed talks to the citiesapps JSON API that backs the municipal
// web page: the waste-collection calendar per area and the venue event
// listing. Both are one-shot reads converted to iCalendar files; there is
// no state and no concurrency here.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultAPIBase is the citiesapps API origin.
const DefaultAPIBase = "https://api.v2.citiesapps.com"

// buildVersionHeader is the response header on the municipality page that
// carries the app build version the API expects back.
const buildVersionHeader = "Build-Version"

type Client struct {
	httpClient *http.Client
	apiBase    string
	logger     *slog.Logger
}

// NewClient creates a feed client. An empty apiBase selects the production
// API; a nil logger discards output.
func NewClient(httpClient *http.Client, apiBase string, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if apiBase == "" {
		apiBase = DefaultAPIBase
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{httpClient: httpClient, apiBase: apiBase, logger: logger}
}

// BuildVersion probes the municipality page with a HEAD request and
// returns the build version advertised in its response headers. The API
// rejects requests that do not echo a current version.
func (c *Client) BuildVersion(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, pageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("probe build version: %w", err)
	}
	resp.Body.Close()

	version := resp.Header.Get(buildVersionHeader)
	if version == "" {
		return "", fmt.Errorf("page %s did not report a build version", pageURL)
	}
	c.logger.Debug("resolved build version", "page", pageURL, "version", version)
	return version, nil
}

// WasteCalendar fetches the collection-day calendar for one area. pageURL
// is the municipality page the request pretends to originate from.
func (c *Client) WasteCalendar(ctx context.Context, areaID, pageURL, buildVersion string) (*WasteCalendar, error) {
	endpoint := fmt.Sprintf("%s/waste-management/areas/%s/calendar", c.apiBase, url.PathEscape(areaID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setAPIHeaders(req, pageURL, buildVersion)

	c.logger.Debug("fetching waste calendar", "area", areaID)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch waste calendar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("waste calendar request: unexpected status %d: %s", resp.StatusCode, body)
	}

	var cal WasteCalendar
	if err := json.NewDecoder(resp.Body).Decode(&cal); err != nil {
		return nil, fmt.Errorf("decode waste calendar: %w", err)
	}
	if len(cal.CollectionDays) == 0 && cal.Street == "" {
		return nil, fmt.Errorf("response does not look like a waste calendar")
	}
	return &cal, nil
}

// UpcomingEvents fetches the venue event listing for one page scope,
// following nextUrl until the server stops paginating.
func (c *Client) UpcomingEvents(ctx context.Context, pageURL, scope string, limit int) ([]VenueEvent, error) {
	base, err := url.Parse(c.apiBase)
	if err != nil {
		return nil, err
	}
	endpoint := *base
	endpoint.Path = "/events"
	q := url.Values{}
	q.Set("event-period", "upcoming")
	q.Set("scope", scope)
	q.Set("pagination", "limit:"+strconv.Itoa(limit))
	endpoint.RawQuery = q.Encode()

	var events []VenueEvent
	next := endpoint.String()
	for next != "" {
		listing, err := c.fetchEventPage(ctx, next, pageURL)
		if err != nil {
			return nil, err
		}
		events = append(events, listing.Data...)
		c.logger.Debug("fetched event page", "events", len(listing.Data), "next", listing.NextURL)

		if listing.NextURL == "" {
			break
		}
		ref, err := url.Parse(listing.NextURL)
		if err != nil {
			return nil, fmt.Errorf("events pagination: bad nextUrl %q: %w", listing.NextURL, err)
		}
		next = base.ResolveReference(ref).String()
	}
	return events, nil
}

func (c *Client) fetchEventPage(ctx context.Context, endpoint, pageURL string) (*eventListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	c.setAPIHeaders(req, pageURL, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 300))
		return nil, fmt.Errorf("events request: unexpected status %d: %s", resp.StatusCode, body)
	}

	var listing eventListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}
	return &listing, nil
}

// setAPIHeaders mimics the browser app; the API refuses anonymous-looking
// requests.
func (c *Client) setAPIHeaders(req *http.Request, pageURL, buildVersion string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Requesting-App", "website-builder")
	if buildVersion != "" {
		req.Header.Set("Build-Version", buildVersion)
	}
	if pageURL != "" {
		if page, err := url.Parse(pageURL); err == nil {
			origin := url.URL{Scheme: page.Scheme, Host: page.Host}
			req.Header.Set("Origin", origin.String())
			req.Header.Set("Referer", origin.String()+"/")
		}
	}
}
