package syncer

import (
	"context"
	"sync"

	"github.com/fourfp/calpatch/internal/davclient"
)

// storeCall records one StoreObject invocation for assertions.
type storeCall struct {
	url           string
	body          string
	etag          string
	unconditional bool
}

// Mock collection client for engine tests.
type mockDAVClient struct {
	mu sync.Mutex

	listObjects func(ctx context.Context, collectionURL string) ([]davclient.CalendarObject, error)
	fetchObject func(ctx context.Context, objectURL, hintETag string, fetchCount int) ([]byte, string, error)
	storeObject func(ctx context.Context, objectURL string, body []byte, etag string, unconditional bool, storeCount int) (string, error)

	fetches int
	stores  []storeCall
}

func (m *mockDAVClient) ListObjects(ctx context.Context, collectionURL string) ([]davclient.CalendarObject, error) {
	return m.listObjects(ctx, collectionURL)
}

func (m *mockDAVClient) FetchObject(ctx context.Context, objectURL, hintETag string) ([]byte, string, error) {
	m.mu.Lock()
	m.fetches++
	n := m.fetches
	m.mu.Unlock()
	return m.fetchObject(ctx, objectURL, hintETag, n)
}

func (m *mockDAVClient) StoreObject(ctx context.Context, objectURL string, body []byte, etag string, unconditional bool) (string, error) {
	m.mu.Lock()
	m.stores = append(m.stores, storeCall{
		url:           objectURL,
		body:          string(body),
		etag:          etag,
		unconditional: unconditional,
	})
	n := len(m.stores)
	m.mu.Unlock()
	if m.storeObject == nil {
		return "stored-etag", nil
	}
	return m.storeObject(ctx, objectURL, body, etag, unconditional, n)
}

func (m *mockDAVClient) storeCalls() []storeCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]storeCall(nil), m.stores...)
}

func (m *mockDAVClient) fetchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetches
}
