// Package syncer drives one synchronization run: discover the collection,
// then per object fetch, classify, and conditionally write back, with a
// single bounded retry on an entity-tag conflict.
package syncer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/emersion/go-ical"

	"github.com/fourfp/calpatch/internal/davclient"
	"github.com/fourfp/calpatch/internal/rules"
	"github.com/fourfp/calpatch/internal/vobject"
)

// Options are the operational flags of one run, supplied by the CLI layer.
type Options struct {
	// Collection is the calendar collection URL to discover.
	Collection string
	// DryRun skips all writes and reports what would change.
	DryRun bool
	// Force writes even when no diff was detected and waives the write
	// precondition.
	Force bool
	// Limit caps the number of objects processed; 0 means no cap.
	Limit int
	// Normalize canonicalizes summaries before rule matching.
	Normalize bool
	// Workers is the number of concurrent object pipelines; values below
	// 2 run sequentially.
	Workers int
}

// Engine composes discovery, the codec, the rule engine and the object
// store into per-object pipelines.
type Engine struct {
	dav    davclient.Client
	rules  *rules.Engine
	opts   Options
	retry  RetryPolicy
	logger *slog.Logger
}

// New creates an engine. A nil logger discards output.
func New(dav davclient.Client, ruleEngine *rules.Engine, opts Options, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		dav:    dav,
		rules:  ruleEngine,
		opts:   opts,
		retry:  DefaultRetryPolicy,
		logger: logger,
	}
}

// Run executes one synchronization run. Only a discovery failure aborts
// the run; per-object failures are recorded and the run continues.
// Cancellation is observed between objects.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	objects, err := e.dav.ListObjects(ctx, e.opts.Collection)
	if err != nil {
		return nil, err
	}

	e.logger.Info("collection discovered",
		"collection", e.opts.Collection,
		"objects", len(objects))

	if e.opts.Limit > 0 && len(objects) > e.opts.Limit {
		objects = objects[:e.opts.Limit]
	}

	report := &Report{}
	if e.opts.Workers > 1 {
		err = e.runParallel(ctx, objects, report)
	} else {
		err = e.runSequential(ctx, objects, report)
	}

	e.logger.Info("run complete",
		"checked", report.Checked,
		"matched", report.Matched,
		"already_ok", report.AlreadyOK,
		"updated", report.Updated,
		"failed_write", report.FailedWrite,
		"fetch_errors", report.FetchErrors)
	return report, err
}

func (e *Engine) runSequential(ctx context.Context, objects []davclient.CalendarObject, report *Report) error {
	for _, obj := range objects {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		report.record(e.processObject(ctx, obj))
	}
	return nil
}

// runParallel fans the objects out over a bounded worker pool. Each
// object's pipeline is self-contained; the report is the only shared state
// and is updated under the mutex.
func (e *Engine) runParallel(ctx context.Context, objects []davclient.CalendarObject, report *Report) error {
	jobs := make(chan davclient.CalendarObject)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i := 0; i < e.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for obj := range jobs {
				outcome := e.processObject(ctx, obj)
				mu.Lock()
				report.record(outcome)
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, obj := range objects {
		select {
		case <-ctx.Done():
			break dispatch
		case jobs <- obj:
		}
	}
	close(jobs)
	wg.Wait()
	return ctx.Err()
}

// processObject runs the per-object state machine:
// fetched -> classified -> unchanged | pending write -> written | conflict retry.
func (e *Engine) processObject(ctx context.Context, obj davclient.CalendarObject) Outcome {
	body, etag, err := e.dav.FetchObject(ctx, obj.URL, obj.ETag)
	if err != nil {
		e.logger.Warn("fetch failed", "url", obj.URL, "error", err)
		return OutcomeFetchError
	}

	cal, err := vobject.Decode(body)
	if err != nil {
		e.logger.Warn("object body unparseable", "url", obj.URL, "error", err)
		return OutcomeFetchError
	}

	matched, changed := e.classifyCalendar(cal)
	if matched == 0 {
		e.logger.Debug("no rule matched", "url", obj.URL)
		return OutcomeUnmatched
	}
	if changed == 0 && !e.opts.Force {
		e.logger.Debug("already in desired state", "url", obj.URL)
		return OutcomeMatchedNoChange
	}

	if e.opts.DryRun {
		e.logger.Info("dry-run: would update", "url", obj.URL, "events_changed", changed)
		return OutcomeMatchedChanged
	}

	outcome := e.writeWithRetry(ctx, obj.URL, cal, etag)
	e.logger.Debug("object processed", "url", obj.URL, "outcome", outcome.String())
	return outcome
}

// classifyCalendar applies the rule list to every VEVENT and reports how
// many events matched and how many actually changed. Classification is
// deterministic, so re-running it on a fresh copy after a conflict is safe.
func (e *Engine) classifyCalendar(cal *ical.Calendar) (matched, changed int) {
	for _, ev := range cal.Events() {
		summary, ok := vobject.Summary(ev)
		if !ok {
			continue
		}
		patch, ok := e.rules.Classify(summary, e.opts.Normalize).Get()
		if !ok {
			continue
		}
		matched++
		if vobject.Apply(ev, patch) {
			changed++
		}
	}
	return matched, changed
}

// writeWithRetry performs the conditional store, running the single-retry
// conflict cycle when the server reports a stale entity tag.
func (e *Engine) writeWithRetry(ctx context.Context, objectURL string, cal *ical.Calendar, etag string) Outcome {
	outcome := OutcomeWriteError
	_ = e.retry.Do(func(attempt int) (bool, error) {
		if attempt > 0 {
			// Stale tag: refetch fresh and reclassify from scratch.
			body, freshETag, err := e.dav.FetchObject(ctx, objectURL, "")
			if err != nil {
				e.logger.Warn("conflict refetch failed", "url", objectURL, "error", err)
				outcome = OutcomeConflictFailed
				return true, err
			}
			fresh, err := vobject.Decode(body)
			if err != nil {
				e.logger.Warn("conflict refetch unparseable", "url", objectURL, "error", err)
				outcome = OutcomeConflictFailed
				return true, err
			}
			_, changed := e.classifyCalendar(fresh)
			if changed == 0 && !e.opts.Force {
				// A concurrent writer already applied the same state.
				e.logger.Debug("conflict resolved upstream, nothing left to write", "url", objectURL)
				outcome = OutcomeConflictRetried
				return true, nil
			}
			cal, etag = fresh, freshETag
		}

		data, err := vobject.Encode(cal)
		if err != nil {
			outcome = OutcomeWriteError
			return true, err
		}

		_, err = e.dav.StoreObject(ctx, objectURL, data, etag, e.opts.Force)
		switch {
		case err == nil:
			if attempt > 0 {
				outcome = OutcomeConflictRetried
			} else {
				outcome = OutcomeMatchedChanged
			}
			return true, nil
		case errors.Is(err, davclient.ErrPreconditionFailed):
			if attempt > 0 {
				e.logger.Warn("second stale entity tag, giving up", "url", objectURL)
				outcome = OutcomeConflictFailed
				return true, err
			}
			e.logger.Debug("stale entity tag, retrying once", "url", objectURL)
			return false, err
		default:
			e.logger.Warn("write failed", "url", objectURL, "error", err)
			outcome = OutcomeWriteError
			return true, err
		}
	})
	return outcome
}
