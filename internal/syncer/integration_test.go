package syncer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourfp/calpatch/internal/davclient"
	"github.com/fourfp/calpatch/internal/httpclient"
	"github.com/fourfp/calpatch/internal/rules"
)

// fakeDAVServer is a minimal WebDAV collection: PROPFIND Depth:1 listing,
// GET with ETag, PUT with If-Match enforcement.
type fakeDAVServer struct {
	mu      sync.Mutex
	objects map[string]*fakeObject // keyed by path, e.g. /cal/evt.ics
	seq     int

	// rejectPuts fails the first N conditional PUTs with 412.
	rejectPuts int
	putCount   int
}

type fakeObject struct {
	body string
	etag string
}

func newFakeDAVServer() *fakeDAVServer {
	return &fakeDAVServer{objects: make(map[string]*fakeObject)}
}

func (s *fakeDAVServer) put(path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.objects[path] = &fakeObject{body: body, etag: fmt.Sprintf("rev-%d", s.seq)}
}

func (s *fakeDAVServer) bodyOf(path string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj, ok := s.objects[path]; ok {
		return obj.body
	}
	return ""
}

func (s *fakeDAVServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "PROPFIND":
		s.servePropfind(w, r)
	case http.MethodGet:
		s.serveGet(w, r)
	case http.MethodPut:
		s.servePut(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *fakeDAVServer) servePropfind(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	paths := make([]string, 0, len(s.objects))
	for p := range s.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var b strings.Builder
	b.WriteString(`<?xml version="1.0"?><d:multistatus xmlns:d="DAV:">`)
	fmt.Fprintf(&b, `<d:response><d:href>%s</d:href></d:response>`, r.URL.Path)
	for _, p := range paths {
		obj := s.objects[p]
		fmt.Fprintf(&b, `<d:response><d:href>%s</d:href><d:propstat><d:prop>`+
			`<d:getetag>"%s"</d:getetag>`+
			`<d:getcontenttype>text/calendar; charset=utf-8</d:getcontenttype>`+
			`</d:prop><d:status>HTTP/1.1 200 OK</d:status></d:propstat></d:response>`,
			p, obj.etag)
	}
	b.WriteString(`</d:multistatus>`)

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusMultiStatus)
	io.WriteString(w, b.String())
}

func (s *fakeDAVServer) serveGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("ETag", `"`+obj.etag+`"`)
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	io.WriteString(w, obj.body)
}

func (s *fakeDAVServer) servePut(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj, ok := s.objects[r.URL.Path]
	if !ok {
		http.NotFound(w, r)
		return
	}

	if s.putCount < s.rejectPuts {
		s.putCount++
		w.WriteHeader(http.StatusPreconditionFailed)
		return
	}
	s.putCount++

	if match := r.Header.Get("If-Match"); match != "" {
		if strings.Trim(match, `"`) != obj.etag {
			w.WriteHeader(http.StatusPreconditionFailed)
			return
		}
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.seq++
	obj.body = string(body)
	obj.etag = fmt.Sprintf("rev-%d", s.seq)
	w.Header().Set("ETag", `"`+obj.etag+`"`)
	w.WriteHeader(http.StatusNoContent)
}

func integrationEngine(t *testing.T, srv *httptest.Server, opts Options) *Engine {
	t.Helper()
	base, err := url.Parse(srv.URL + "/cal/")
	require.NoError(t, err)

	wrapper := httpclient.NewWrapper(srv.Client(), *base, nil)
	dav := davclient.NewClient(wrapper, *base, nil)

	ruleEngine, err := rules.NewEngine([]rules.Rule{
		{Pattern: "^Focus$", Color: "blue", MakeFree: true},
	})
	require.NoError(t, err)

	if opts.Collection == "" {
		opts.Collection = srv.URL + "/cal/"
	}
	return New(dav, ruleEngine, opts, nil)
}

func TestIntegrationFullRun(t *testing.T) {
	fake := newFakeDAVServer()
	fake.put("/cal/focus.ics", string(eventBody("Focus")))
	fake.put("/cal/lunch.ics", string(eventBody("Lunch")))

	srv := httptest.NewServer(fake)
	defer srv.Close()

	engine := integrationEngine(t, srv, Options{Normalize: true})
	report, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Report{Checked: 2, Matched: 1, Updated: 1}, report)

	updated := fake.bodyOf("/cal/focus.ics")
	assert.Contains(t, updated, "TRANSP:TRANSPARENT")
	assert.Contains(t, updated, "COLOR:blue")
	assert.NotContains(t, fake.bodyOf("/cal/lunch.ics"), "COLOR")
}

func TestIntegrationRunIsIdempotent(t *testing.T) {
	fake := newFakeDAVServer()
	fake.put("/cal/focus.ics", string(eventBody("Focus")))

	srv := httptest.NewServer(fake)
	defer srv.Close()

	engine := integrationEngine(t, srv, Options{Normalize: true})

	report, err := engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Updated)
	afterFirst := fake.bodyOf("/cal/focus.ics")

	// Second run finds the desired state already present.
	report, err = engine.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Report{Checked: 1, Matched: 1, AlreadyOK: 1}, report)
	assert.Equal(t, afterFirst, fake.bodyOf("/cal/focus.ics"))
}

func TestIntegrationConflictRetry(t *testing.T) {
	fake := newFakeDAVServer()
	fake.put("/cal/focus.ics", string(eventBody("Focus")))
	fake.rejectPuts = 1

	srv := httptest.NewServer(fake)
	defer srv.Close()

	engine := integrationEngine(t, srv, Options{Normalize: true})
	report, err := engine.Run(context.Background())
	require.NoError(t, err)

	// First PUT gets 412, the refetch-rewrite cycle lands the change.
	assert.Equal(t, &Report{Checked: 1, Matched: 1, Updated: 1}, report)
	assert.Contains(t, fake.bodyOf("/cal/focus.ics"), "TRANSP:TRANSPARENT")
}
