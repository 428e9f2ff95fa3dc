package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPropfindBody(t *testing.T) {
	body, err := buildPropfindBody("getetag", "getcontenttype")
	require.NoError(t, err)

	s := string(body)
	assert.Contains(t, s, `xmlns:d="DAV:"`)
	assert.Contains(t, s, "<d:getetag/>")
	assert.Contains(t, s, "<d:getcontenttype/>")
}

func TestParseMultiStatus(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []MultiStatusEntry
		wantErr bool
	}{
		{
			name: "two resources with props",
			body: `<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/remote.php/dav/calendars/airflow/outlook-1/</d:href>
    <d:propstat>
      <d:prop><d:getcontenttype/></d:prop>
      <d:status>HTTP/1.1 404 Not Found</d:status>
    </d:propstat>
  </d:response>
  <d:response>
    <d:href>/remote.php/dav/calendars/airflow/outlook-1/evt1.ics</d:href>
    <d:propstat>
      <d:prop>
        <d:getetag>"abc123"</d:getetag>
        <d:getcontenttype>text/calendar; charset=utf-8</d:getcontenttype>
      </d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`,
			want: []MultiStatusEntry{
				{Href: "/remote.php/dav/calendars/airflow/outlook-1/"},
				{
					Href:        "/remote.php/dav/calendars/airflow/outlook-1/evt1.ics",
					ETag:        "abc123",
					ContentType: "text/calendar; charset=utf-8",
				},
			},
		},
		{
			name: "different namespace prefix",
			body: `<?xml version="1.0"?>
<D:multistatus xmlns:D="DAV:">
  <D:response>
    <D:href>/cal/evt.ics</D:href>
    <D:propstat>
      <D:prop><D:getetag>W/"weak-tag"</D:getetag></D:prop>
      <D:status>HTTP/1.1 200 OK</D:status>
    </D:propstat>
  </D:response>
</D:multistatus>`,
			want: []MultiStatusEntry{
				{Href: "/cal/evt.ics", ETag: "weak-tag"},
			},
		},
		{
			name: "empty multistatus is not an error",
			body: `<?xml version="1.0"?><d:multistatus xmlns:d="DAV:"></d:multistatus>`,
			want: nil,
		},
		{
			name:    "not XML",
			body:    "<html>oops",
			wantErr: true,
		},
		{
			name:    "wrong root element",
			body:    `<?xml version="1.0"?><d:prop xmlns:d="DAV:"></d:prop>`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseMultiStatus([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Entries)
		})
	}
}

func TestDoPROPFIND(t *testing.T) {
	var gotDepth, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotDepth = r.Header.Get("Depth")
		w.WriteHeader(http.StatusMultiStatus)
		w.Write([]byte(`<?xml version="1.0"?>
<d:multistatus xmlns:d="DAV:">
  <d:response>
    <d:href>/cal/evt.ics</d:href>
    <d:propstat>
      <d:prop><d:getetag>"e1"</d:getetag></d:prop>
      <d:status>HTTP/1.1 200 OK</d:status>
    </d:propstat>
  </d:response>
</d:multistatus>`))
	}))
	defer srv.Close()

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	wrapper := NewWrapper(srv.Client(), *base, nil)

	ms, err := wrapper.DoPROPFIND(context.Background(), srv.URL+"/cal/", 1, "getetag", "getcontenttype")
	require.NoError(t, err)
	assert.Equal(t, "PROPFIND", gotMethod)
	assert.Equal(t, "1", gotDepth)
	require.Len(t, ms.Entries, 1)
	assert.Equal(t, "e1", ms.Entries[0].ETag)
}

func TestDoPROPFINDNonMultiStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	base, err := url.Parse(srv.URL)
	require.NoError(t, err)
	wrapper := NewWrapper(srv.Client(), *base, nil)

	_, err = wrapper.DoPROPFIND(context.Background(), srv.URL+"/cal/", 1, "getetag")
	require.Error(t, err)
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
}
