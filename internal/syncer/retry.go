package syncer

// RetryPolicy bounds how often an optimistic write cycle may run. The
// conflict path uses exactly one extra attempt: a second stale tag means
// sustained contention or a real error, which belongs in the report rather
// than in a loop.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int
}

// DefaultRetryPolicy is the single-retry policy the engine runs with.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 2}

// Do calls fn with the attempt number (0-based) until fn reports done or
// the attempt budget is exhausted. The error of the last attempt is
// returned.
func (p RetryPolicy) Do(fn func(attempt int) (done bool, err error)) error {
	var err error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		var done bool
		done, err = fn(attempt)
		if done {
			return err
		}
	}
	return err
}
