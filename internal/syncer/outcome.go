package syncer

// Outcome is the terminal state of one object's pipeline.
type Outcome int

const (
	// OutcomeUnmatched: no rule matched any event in the object.
	OutcomeUnmatched Outcome = iota
	// OutcomeMatchedNoChange: rules matched but the object already carries
	// the desired state.
	OutcomeMatchedNoChange
	// OutcomeMatchedChanged: the object was updated on the first write.
	OutcomeMatchedChanged
	// OutcomeConflictRetried: the first conditional write hit a stale tag
	// and the refetch-reclassify-rewrite cycle succeeded.
	OutcomeConflictRetried
	// OutcomeConflictFailed: the retry cycle hit a second stale tag or
	// could not refetch.
	OutcomeConflictFailed
	// OutcomeFetchError: the object could not be retrieved or parsed.
	OutcomeFetchError
	// OutcomeWriteError: a write failed for a reason other than a stale tag.
	OutcomeWriteError
)

func (o Outcome) String() string {
	switch o {
	case OutcomeUnmatched:
		return "unmatched"
	case OutcomeMatchedNoChange:
		return "matched-no-change"
	case OutcomeMatchedChanged:
		return "matched-changed"
	case OutcomeConflictRetried:
		return "conflict-retried"
	case OutcomeConflictFailed:
		return "conflict-failed"
	case OutcomeFetchError:
		return "fetch-error"
	case OutcomeWriteError:
		return "write-error"
	default:
		return "unknown"
	}
}

// Report aggregates per-object outcomes over one run. It is a plain value;
// the engine serializes access while the run is in flight.
type Report struct {
	Checked     int // objects processed
	Matched     int // objects where at least one event matched a rule
	AlreadyOK   int // matched objects that needed no write
	Updated     int // objects written, with or without a conflict retry
	FailedWrite int // objects whose final write attempt failed
	FetchErrors int // objects skipped because retrieval or parsing failed
}

func (r *Report) record(o Outcome) {
	r.Checked++
	switch o {
	case OutcomeMatchedNoChange:
		r.Matched++
		r.AlreadyOK++
	case OutcomeMatchedChanged, OutcomeConflictRetried:
		r.Matched++
		r.Updated++
	case OutcomeConflictFailed, OutcomeWriteError:
		r.Matched++
		r.FailedWrite++
	case OutcomeFetchError:
		r.FetchErrors++
	}
}
