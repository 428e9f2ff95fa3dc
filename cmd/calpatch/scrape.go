package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fourfp/calpatch/internal/scrape"
)

var (
	flagScrapeURL       string
	flagScrapeStreet    string
	flagScrapeFractions []string
	flagScrapeFormat    string
	flagScrapeOut       string
	flagScrapeTimeout   time.Duration
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Extract the waste schedule from the municipality page DOM",
	RunE: func(cmd *cobra.Command, _ []string) error {
		items, err := scrape.Items(cmd.Context(), scrape.Options{
			URL:       flagScrapeURL,
			Street:    flagScrapeStreet,
			Fractions: flagScrapeFractions,
			Timeout:   flagScrapeTimeout,
		})
		if err != nil {
			return err
		}

		out := os.Stdout
		if flagScrapeOut != "" {
			f, err := os.Create(flagScrapeOut)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}

		switch flagScrapeFormat {
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(items); err != nil {
				return err
			}
		case "csv":
			w := csv.NewWriter(out)
			if err := w.Write([]string{"date", "fraction", "street", "raw_text"}); err != nil {
				return err
			}
			for _, it := range items {
				if err := w.Write([]string{it.Date, it.Fraction, it.Street, it.RawText}); err != nil {
					return err
				}
			}
			w.Flush()
			if err := w.Error(); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown format %q (want csv or json)", flagScrapeFormat)
		}

		fmt.Fprintf(os.Stderr, "Extracted %d schedule rows\n", len(items))
		return nil
	},
}

func init() {
	f := scrapeCmd.Flags()
	f.StringVar(&flagScrapeURL, "url", scrape.DefaultURL, "page to scrape")
	f.StringVar(&flagScrapeStreet, "street", "", "only keep rows mentioning this street")
	f.StringSliceVar(&flagScrapeFractions, "fractions", nil, "only keep these waste fractions")
	f.StringVar(&flagScrapeFormat, "format", "csv", "output format: csv or json")
	f.StringVar(&flagScrapeOut, "out", "", "output file (default stdout)")
	f.DurationVar(&flagScrapeTimeout, "timeout", scrape.DefaultTimeout, "browser session timeout")
}
