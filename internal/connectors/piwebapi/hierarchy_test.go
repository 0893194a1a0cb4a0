package piwebapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func writeItems(w http.ResponseWriter, items ...map[string]any) {
	if items == nil {
		items = []map[string]any{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{"Items": items})
}

// newResolvedClient points every endpoint candidate at the test server's
// /piwebapi root, which the mux must answer for the probe to succeed.
func newResolvedClient(srvURL string) *Client {
	c := NewClient("pi.test", 5*time.Second, time.Second)
	c.candidates = []string{srvURL + "/piwebapi"}
	return c
}

func TestListDatabases(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/piwebapi/assetservers", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w,
			map[string]any{"Name": "OTHER", "WebId": "AS0"},
			map[string]any{"Name": "SRV1", "WebId": "AS1", "Links": map[string]any{
				"Databases": srv.URL + "/piwebapi/assetservers/AS1/assetdatabases",
			}},
		)
	})
	mux.HandleFunc("/piwebapi/assetservers/AS1/assetdatabases", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w, map[string]any{"Name": "WellsDB", "WebId": "DB1", "Path": `\\SRV1\WellsDB`})
	})
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.URL.Path)
		mux.ServeHTTP(w, r)
	}))
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	dbs, err := c.ListDatabases(context.Background(), "srv1")
	if err != nil {
		t.Fatalf("list databases failed: %v", err)
	}
	if len(dbs) != 1 || dbs[0].Name != "WellsDB" || dbs[0].WebID != "DB1" {
		t.Fatalf("unexpected databases: %+v", dbs)
	}
}

func TestListDatabasesAssetServerNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/piwebapi/assetservers", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w,
			map[string]any{"Name": "SRV1"},
			map[string]any{"Name": "SRV2"},
		)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	_, err := c.ListDatabases(context.Background(), "MISSING")

	var nfErr *AssetServerNotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected AssetServerNotFoundError, got %v", err)
	}
	if nfErr.Name != "MISSING" {
		t.Fatalf("expected missing name in error, got %q", nfErr.Name)
	}
	if len(nfErr.Available) != 2 || nfErr.Available[0] != "SRV1" || nfErr.Available[1] != "SRV2" {
		t.Fatalf("expected available servers [SRV1 SRV2], got %v", nfErr.Available)
	}
}

func TestFindDatabaseNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/piwebapi/assetservers", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w, map[string]any{"Name": "SRV1", "WebId": "AS1"})
	})
	mux.HandleFunc("/piwebapi/assetservers/AS1/assetdatabases", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w, map[string]any{"Name": "WellsDB"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	_, err := c.FindDatabase(context.Background(), "SRV1", "OtherDB")

	var nfErr *DatabaseNotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected DatabaseNotFoundError, got %v", err)
	}
	if len(nfErr.Available) != 1 || nfErr.Available[0] != "WellsDB" {
		t.Fatalf("expected available databases [WellsDB], got %v", nfErr.Available)
	}
}

func TestListChildrenElementsEnvelope(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/children", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"Elements": []map[string]any{{"Name": "Well 1"}, {"Name": "Well 2"}},
		})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	children, err := c.ListChildren(context.Background(), Element{Name: "Pad A", ElementsLink: srv.URL + "/children"})
	if err != nil {
		t.Fatalf("list children failed: %v", err)
	}
	if len(children) != 2 || children[0].Name != "Well 1" {
		t.Fatalf("unexpected children: %+v", children)
	}
}

func TestListChildrenEmptyListIsNotAnError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/children", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	children, err := c.ListChildren(context.Background(), Element{Name: "Pad A", ElementsLink: srv.URL + "/children"})
	if err != nil {
		t.Fatalf("expected empty children without error, got %v", err)
	}
	if len(children) != 0 {
		t.Fatalf("expected no children, got %+v", children)
	}
}

func TestListChildrenFallsBackToWebIDURL(t *testing.T) {
	log := &requestLog{}
	mux := http.NewServeMux()
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/stale-link", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/piwebapi/elements/E1/elements", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w, map[string]any{"Name": "Well 1"})
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.add(r.URL.Path)
		mux.ServeHTTP(w, r)
	}))
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	el := Element{Name: "Pad A", ElementsLink: srv.URL + "/stale-link", WebID: "E1"}
	children, err := c.ListChildren(context.Background(), el)
	if err != nil {
		t.Fatalf("list children failed: %v", err)
	}
	if len(children) != 1 || children[0].Name != "Well 1" {
		t.Fatalf("unexpected children: %+v", children)
	}

	paths := log.all()
	if len(paths) < 3 || paths[1] != "/stale-link" || paths[2] != "/piwebapi/elements/E1/elements" {
		t.Fatalf("expected link strategy first, then WebId fallback; got %v", paths)
	}
}

func TestListChildrenAllStrategiesFail(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	el := Element{Name: "Pad A", ElementsLink: srv.URL + "/broken", WebID: "E1", Path: `\\SRV1\DB\Pad A`}
	_, err := c.ListChildren(context.Background(), el)

	var cuErr *ChildrenUnavailableError
	if !errors.As(err, &cuErr) {
		t.Fatalf("expected ChildrenUnavailableError, got %v", err)
	}
	if cuErr.Parent != "Pad A" {
		t.Fatalf("expected parent name in error, got %q", cuErr.Parent)
	}
}

func newNavigationServer(t *testing.T, log *requestLog) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/piwebapi/assetdatabases/DB1/elements", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w, map[string]any{"Name": "Zone1", "WebId": "Z1"})
	})
	mux.HandleFunc("/piwebapi/elements/Z1/elements", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w, map[string]any{"Name": "Pad A", "WebId": "PA"})
	})
	mux.HandleFunc("/piwebapi/elements/PA/elements", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w,
			map[string]any{"Name": "Well 1", "WebId": "W1"},
			map[string]any{"Name": "Well 2", "WebId": "W2"},
		)
	})
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if log != nil {
			log.add(r.URL.Path)
		}
		mux.ServeHTTP(w, r)
	}))
}

func TestNavigatePath(t *testing.T) {
	srv := newNavigationServer(t, nil)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	wells, err := c.NavigatePath(context.Background(), Database{Name: "WellsDB", WebID: "DB1"}, `zone1\pad a`)
	if err != nil {
		t.Fatalf("navigate failed: %v", err)
	}
	if len(wells) != 2 || wells[0].Name != "Well 1" || wells[1].Name != "Well 2" {
		t.Fatalf("unexpected wells: %+v", wells)
	}
}

func TestNavigatePathEmptyPathReturnsDatabaseChildren(t *testing.T) {
	srv := newNavigationServer(t, nil)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	children, err := c.NavigatePath(context.Background(), Database{Name: "WellsDB", WebID: "DB1"}, "")
	if err != nil {
		t.Fatalf("navigate failed: %v", err)
	}
	if len(children) != 1 || children[0].Name != "Zone1" {
		t.Fatalf("expected database children, got %+v", children)
	}
}

func TestNavigatePathSegmentNotFound(t *testing.T) {
	srv := newNavigationServer(t, nil)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	_, err := c.NavigatePath(context.Background(), Database{Name: "WellsDB", WebID: "DB1"}, `Zone1\PadX`)

	var nfErr *PathSegmentNotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected PathSegmentNotFoundError, got %v", err)
	}
	if nfErr.Segment != "PadX" {
		t.Fatalf("expected missing segment PadX, got %q", nfErr.Segment)
	}
	if nfErr.Path != `Zone1\PadX` {
		t.Fatalf("expected full path in error, got %q", nfErr.Path)
	}
}

func TestNavigatePathTooDeepRejectedBeforeAnyRequest(t *testing.T) {
	log := &requestLog{}
	srv := newNavigationServer(t, log)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	path := `a\b\c\d\e\f\g\h\i\j\k`
	_, err := c.NavigatePath(context.Background(), Database{Name: "WellsDB", WebID: "DB1"}, path)

	var deepErr *PathTooDeepError
	if !errors.As(err, &deepErr) {
		t.Fatalf("expected PathTooDeepError, got %v", err)
	}
	if deepErr.Depth != 11 || deepErr.Max != maxPathDepth {
		t.Fatalf("expected depth 11 max %d, got depth %d max %d", maxPathDepth, deepErr.Depth, deepErr.Max)
	}
	if got := len(log.all()); got != 0 {
		t.Fatalf("expected no requests for a too-deep path, got %d", got)
	}
}

func TestNavigatePathEmptyIntermediateElement(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/piwebapi", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/piwebapi/assetdatabases/DB1/elements", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w, map[string]any{"Name": "Zone1", "WebId": "Z1"})
	})
	mux.HandleFunc("/piwebapi/elements/Z1/elements", func(w http.ResponseWriter, _ *http.Request) {
		writeItems(w)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := newResolvedClient(srv.URL)
	_, err := c.NavigatePath(context.Background(), Database{Name: "WellsDB", WebID: "DB1"}, `Zone1\Pad A`)

	var emptyErr *EmptyIntermediateElementError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyIntermediateElementError, got %v", err)
	}
	if emptyErr.Name != "Zone1" {
		t.Fatalf("expected empty element Zone1, got %q", emptyErr.Name)
	}
}

func TestSplitPath(t *testing.T) {
	got := SplitPath(`Zone1\ Pad A \\Pad B\`)
	want := []string{"Zone1", "Pad A", "Pad B"}
	if len(got) != len(want) {
		t.Fatalf("expected %d segments, got %v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("segment %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestSplitPathEmpty(t *testing.T) {
	if got := SplitPath("  "); len(got) != 0 {
		t.Fatalf("expected no segments, got %v", got)
	}
}
