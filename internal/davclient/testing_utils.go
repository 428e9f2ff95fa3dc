package davclient

import (
	"context"

	"github.com/fourfp/calpatch/internal/httpclient"
)

// Mock wrapper for testing
type mockHTTPClient struct {
	doPropfind func(ctx context.Context, url string, depth int, props ...string) (*httpclient.MultiStatus, error)
	doGet      func(ctx context.Context, url string) (*httpclient.Resource, error)
	doPut      func(ctx context.Context, url string, etag string, data []byte) (string, error)
}

func (m *mockHTTPClient) DoPROPFIND(ctx context.Context, url string, depth int, props ...string) (*httpclient.MultiStatus, error) {
	return m.doPropfind(ctx, url, depth, props...)
}

func (m *mockHTTPClient) DoGET(ctx context.Context, url string) (*httpclient.Resource, error) {
	return m.doGet(ctx, url)
}

func (m *mockHTTPClient) DoPUT(ctx context.Context, url string, etag string, data []byte) (string, error) {
	return m.doPut(ctx, url, etag, data)
}
