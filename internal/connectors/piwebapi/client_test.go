package piwebapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// requestLog records request paths in arrival order.
type requestLog struct {
	mu    sync.Mutex
	paths []string
}

func (l *requestLog) add(path string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.paths = append(l.paths, path)
}

func (l *requestLog) all() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.paths...)
}

func newProbeClient(srvURL string, paths ...string) *Client {
	c := NewClient("pi.test", 5*time.Second, time.Second)
	c.candidates = c.candidates[:0]
	for _, p := range paths {
		c.candidates = append(c.candidates, srvURL+p)
	}
	return c
}

func TestEndpointCandidatesOrder(t *testing.T) {
	got := endpointCandidates("pi.example.com")
	want := []string{
		"https://pi.example.com/piwebapi",
		"https://pi.example.com:443/piwebapi",
		"http://pi.example.com/piwebapi",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d candidates, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestResolveEndpointProbesInOrder(t *testing.T) {
	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.URL.Path)
		if r.URL.Path == "/c" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := newProbeClient(srv.URL, "/a", "/b", "/c")
	endpoint, err := c.ResolveEndpoint(context.Background())
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if endpoint != srv.URL+"/c" {
		t.Fatalf("expected third candidate to win, got %q", endpoint)
	}

	paths := log.all()
	if len(paths) != 3 || paths[0] != "/a" || paths[1] != "/b" || paths[2] != "/c" {
		t.Fatalf("expected probe order [/a /b /c], got %v", paths)
	}
}

func TestResolveEndpointCachesResult(t *testing.T) {
	log := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newProbeClient(srv.URL, "/a")
	if _, err := c.ResolveEndpoint(context.Background()); err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}
	if _, err := c.ResolveEndpoint(context.Background()); err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}

	if got := len(log.all()); got != 1 {
		t.Fatalf("expected 1 probe total across both calls, got %d", got)
	}
}

func TestResolveEndpointUnauthorizedCountsAsReachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := newProbeClient(srv.URL, "/a")
	endpoint, err := c.ResolveEndpoint(context.Background())
	if err != nil {
		t.Fatalf("expected 401 to count as reachable: %v", err)
	}
	if endpoint != srv.URL+"/a" {
		t.Fatalf("unexpected endpoint %q", endpoint)
	}
}

func TestResolveEndpointAllCandidatesFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := newProbeClient(srv.URL, "/a", "/b", "/c")
	_, err := c.ResolveEndpoint(context.Background())

	var nrErr *NotReachableError
	if !errors.As(err, &nrErr) {
		t.Fatalf("expected NotReachableError, got %v", err)
	}
	if nrErr.Hostname != "pi.test" {
		t.Fatalf("expected hostname in error, got %q", nrErr.Hostname)
	}
	if len(nrErr.Tried) != 3 {
		t.Fatalf("expected 3 tried candidates, got %d", len(nrErr.Tried))
	}
}

func TestReachableStatus(t *testing.T) {
	cases := []struct {
		code int
		want bool
	}{
		{200, true},
		{204, true},
		{401, true},
		{403, false},
		{404, false},
		{500, false},
		{302, false},
	}
	for _, tc := range cases {
		if got := reachableStatus(tc.code); got != tc.want {
			t.Fatalf("reachableStatus(%d) = %v, expected %v", tc.code, got, tc.want)
		}
	}
}

func TestClientSendsBasicAuthAndAcceptHeader(t *testing.T) {
	var gotUser, gotPass, gotAccept string
	var gotAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, gotAuth = r.BasicAuth()
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := newProbeClient(srv.URL, "/a")
	c.SetBasicAuth("operator", "secret")
	if _, err := c.ResolveEndpoint(context.Background()); err != nil {
		t.Fatalf("resolve failed: %v", err)
	}

	if !gotAuth || gotUser != "operator" || gotPass != "secret" {
		t.Fatalf("expected basic auth operator/secret, got %q/%q (present=%v)", gotUser, gotPass, gotAuth)
	}
	if gotAccept != "application/json" {
		t.Fatalf("expected Accept application/json, got %q", gotAccept)
	}
}
