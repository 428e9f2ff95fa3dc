package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/fourfp/calpatch/internal/feed"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Convert JSON schedule feeds to iCalendar files",
}

var (
	flagExportPage  string
	flagExportOut   string
	flagWasteArea   string
	flagWasteTypes  []string
	flagEventsScope string
	flagEventsLimit int
)

var exportWasteCmd = &cobra.Command{
	Use:   "waste",
	Short: "Export the waste-collection calendar of one area",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()
		client := feed.NewClient(&http.Client{Timeout: 15 * time.Second}, "", logger)
		ctx := cmd.Context()

		version, err := client.BuildVersion(ctx, flagExportPage)
		if err != nil {
			return err
		}
		wc, err := client.WasteCalendar(ctx, flagWasteArea, flagExportPage, version)
		if err != nil {
			return err
		}
		cal, err := feed.WasteICS(wc, flagWasteTypes)
		if err != nil {
			return err
		}
		if err := feed.WriteFile(flagExportOut, cal); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d events, street %s)\n", flagExportOut, len(cal.Events()), wc.Street)
		return nil
	},
}

var exportEventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Export the upcoming venue events of one page scope",
	RunE: func(cmd *cobra.Command, _ []string) error {
		logger := newLogger()
		client := feed.NewClient(&http.Client{Timeout: 15 * time.Second}, "", logger)

		events, err := client.UpcomingEvents(cmd.Context(), flagExportPage, flagEventsScope, flagEventsLimit)
		if err != nil {
			return err
		}
		cal, err := feed.EventsICS(events)
		if err != nil {
			return err
		}
		if err := feed.WriteFile(flagExportOut, cal); err != nil {
			return err
		}
		fmt.Printf("Wrote %s (%d events)\n", flagExportOut, len(cal.Events()))
		return nil
	},
}

func init() {
	exportCmd.PersistentFlags().StringVar(&flagExportPage, "page", "https://bad-fischau-brunn.at/waste-management/areas", "municipality page the requests originate from")
	exportCmd.PersistentFlags().StringVar(&flagExportOut, "out", "export.ics", "output file")

	exportWasteCmd.Flags().StringVar(&flagWasteArea, "area", "", "area identifier")
	exportWasteCmd.Flags().StringSliceVar(&flagWasteTypes, "fractions", []string{"Restmüll", "Papier", "Gelber Sack"}, "waste fractions to keep (empty = all)")
	exportWasteCmd.MarkFlagRequired("area")

	exportEventsCmd.Flags().StringVar(&flagEventsScope, "scope", "", "listing scope, e.g. page:<id>")
	exportEventsCmd.Flags().IntVar(&flagEventsLimit, "limit", 50, "page size for the listing request")
	exportEventsCmd.MarkFlagRequired("scope")

	exportCmd.AddCommand(exportWasteCmd)
	exportCmd.AddCommand(exportEventsCmd)
}
