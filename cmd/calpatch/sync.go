package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"github.com/fourfp/calpatch/internal/config"
	"github.com/fourfp/calpatch/internal/davclient"
	"github.com/fourfp/calpatch/internal/httpclient"
	"github.com/fourfp/calpatch/internal/rules"
	"github.com/fourfp/calpatch/internal/syncer"
)

var (
	flagBaseURL     string
	flagCalendar    string
	flagUser        string
	flagAppPwd      string
	flagRules       string
	flagDryRun      bool
	flagForce       bool
	flagLimit       int
	flagNoNormalize bool
	flagWorkers     int
	flagTimeout     time.Duration
	flagSchedule    string
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one synchronization pass over the calendar collection",
	RunE:  runSync,
}

func init() {
	f := syncCmd.Flags()
	f.StringVar(&flagBaseURL, "base-url", "", "calendar home URL, e.g. https://host/remote.php/dav/calendars/<user>/")
	f.StringVar(&flagCalendar, "calendar", "", "collection name, e.g. outlook-1")
	f.StringVar(&flagUser, "user", "", "CalDAV username")
	f.StringVar(&flagAppPwd, "app-pwd", "", "app password")
	f.StringVar(&flagRules, "rules", "", "rules YAML file (default rules.yaml)")
	f.BoolVar(&flagDryRun, "dry-run", false, "write nothing, report what would change")
	f.BoolVar(&flagForce, "force", false, "write even without a detected diff, waiving the precondition")
	f.IntVar(&flagLimit, "limit", 0, "process at most N objects (0 = all)")
	f.BoolVar(&flagNoNormalize, "no-normalize", false, "match raw summaries without stripping trailing fragments")
	f.IntVar(&flagWorkers, "workers", 1, "concurrent object pipelines")
	f.DurationVar(&flagTimeout, "timeout", 0, "per-request timeout (default 30s)")
	f.StringVar(&flagSchedule, "schedule", "", "cron expression; run repeatedly until interrupted")
}

func loadSyncConfig() (*config.Config, error) {
	cfg := config.Load()
	if flagBaseURL != "" {
		cfg.BaseURL = flagBaseURL
	}
	if flagCalendar != "" {
		cfg.Calendar = flagCalendar
	}
	if flagUser != "" {
		cfg.Username = flagUser
	}
	if flagAppPwd != "" {
		cfg.Password = flagAppPwd
	}
	if flagRules != "" {
		cfg.RulesPath = flagRules
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runSync(cmd *cobra.Command, _ []string) error {
	logger := newLogger()

	cfg, err := loadSyncConfig()
	if err != nil {
		return err
	}

	ruleList, err := rules.LoadFile(cfg.RulesPath)
	if err != nil {
		return err
	}
	ruleEngine, err := rules.NewEngine(ruleList)
	if err != nil {
		return err
	}

	baseURL, err := cfg.ParsedBaseURL()
	if err != nil {
		return err
	}
	collectionURL, err := cfg.CollectionURL()
	if err != nil {
		return err
	}

	httpClient := &http.Client{
		Transport: httpclient.NewBasicAuthTransport(cfg.Username, cfg.Password, nil, logger),
		Timeout:   cfg.Timeout,
	}
	wrapper := httpclient.NewWrapper(httpClient, *baseURL, logger)
	dav := davclient.NewClient(wrapper, *baseURL, logger)

	engine := syncer.New(dav, ruleEngine, syncer.Options{
		Collection: collectionURL,
		DryRun:     flagDryRun,
		Force:      flagForce,
		Limit:      flagLimit,
		Normalize:  !flagNoNormalize,
		Workers:    flagWorkers,
	}, logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if flagSchedule == "" {
		return runOnce(ctx, engine)
	}
	return runScheduled(ctx, engine, flagSchedule)
}

func runOnce(ctx context.Context, engine *syncer.Engine) error {
	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

// runScheduled reruns the sync on a cron schedule until interrupted.
// Overlapping runs are skipped rather than queued.
func runScheduled(ctx context.Context, engine *syncer.Engine, schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		report, runErr := engine.Run(ctx)
		if runErr != nil {
			fmt.Fprintf(os.Stderr, "sync run failed: %v\n", runErr)
			return
		}
		printReport(report)
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	c.Start()
	<-ctx.Done()
	stopCtx := c.Stop()
	<-stopCtx.Done()
	return nil
}

func printReport(r *syncer.Report) {
	fmt.Printf("Done. checked=%d matched=%d already_ok=%d updated=%d failed_write=%d fetch_errors=%d\n",
		r.Checked, r.Matched, r.AlreadyOK, r.Updated, r.FailedWrite, r.FetchErrors)
}
