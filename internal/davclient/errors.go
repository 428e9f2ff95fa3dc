package davclient

import (
	"fmt"

	"github.com/fourfp/calpatch/internal/httpclient"
)

// ErrPreconditionFailed is returned by StoreObject when the server rejects
// a conditional write because the stored entity tag no longer matches.
var ErrPreconditionFailed = httpclient.ErrPreconditionFailed

// DiscoveryError means the collection listing itself failed. There is
// nothing to iterate, so the whole run aborts.
type DiscoveryError struct {
	URL string
	Err error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("discover %s: %v", e.URL, e.Err)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// FetchError means a single object could not be retrieved or understood.
// The object is skipped; the run continues.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// WriteError means a store attempt failed for a reason other than a stale
// precondition.
type WriteError struct {
	URL string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("store %s: %v", e.URL, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
