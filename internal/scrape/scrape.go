// Package scrape pulls waste-collection rows out of the municipality page
// DOM with headless Chromium. The page renders its schedule client-side,
// so a plain HTTP fetch sees none of it. Extraction is heuristic text
// matching; the pure helpers live in extract.go so they stay testable
// without a browser.
package scrape

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// DefaultURL is the waste-management areas page.
const DefaultURL = "https://bad-fischau-brunn.at/waste-management/areas"

// DefaultTimeout bounds the whole browser session.
const DefaultTimeout = 45 * time.Second

// Options configures one scrape session.
type Options struct {
	// URL of the page to scrape; DefaultURL when empty.
	URL string
	// Street filters rows to one street; empty keeps all.
	Street string
	// Fractions filters by waste fraction keyword; empty keeps all.
	Fractions []string
	// Timeout bounds the browser session; DefaultTimeout when zero.
	Timeout time.Duration
}

// rowsJS collects the visible text of every list-ish DOM node. The page
// structure changes between app releases, so the selector set is broad and
// filtering happens in Go.
const rowsJS = `Array.from(document.querySelectorAll("tr, li, [class*='row'], [class*='item']"))
	.map(function(el) { return el.innerText.trim(); })
	.filter(function(t) { return t.length > 0; })`

// Rows navigates to the page and returns the raw text of candidate rows.
func Rows(parentCtx context.Context, opts Options) ([]string, error) {
	if opts.URL == "" {
		opts.URL = DefaultURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	ctx, cancel := chromedp.NewContext(parentCtx)
	defer cancel()
	ctx, timeoutCancel := context.WithTimeout(ctx, opts.Timeout)
	defer timeoutCancel()

	var lines []string
	err := chromedp.Run(ctx,
		chromedp.Navigate(opts.URL),
		chromedp.WaitVisible("body", chromedp.ByQuery),
		// The schedule is rendered after an API round-trip; give the app
		// a moment to settle before reading the DOM.
		chromedp.Sleep(2*time.Second),
		chromedp.Evaluate(rowsJS, &lines),
	)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", opts.URL, err)
	}
	return lines, nil
}

// Items runs a session and extracts schedule items from the row text.
func Items(parentCtx context.Context, opts Options) ([]Item, error) {
	rows, err := Rows(parentCtx, opts)
	if err != nil {
		return nil, err
	}
	items := ExtractItems(rows, opts.Street, opts.Fractions)
	if len(items) == 0 {
		return nil, fmt.Errorf("no schedule rows recognized on %s", opts.URL)
	}
	return items, nil
}
