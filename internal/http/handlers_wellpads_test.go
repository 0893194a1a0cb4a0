package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"go-pi-well-dashboard/internal/config"
	"go-pi-well-dashboard/internal/connectors/loadhistory"
	"go-pi-well-dashboard/internal/settings"
	"go-pi-well-dashboard/internal/wells"
)

func testConfig() config.Config {
	return config.Config{
		HistoryLimit:     20,
		DefaultMode:      settings.ModeSimulated,
		PIRequestTimeout: 5 * time.Second,
		PIProbeTimeout:   time.Second,
		MaxPads:          10,
		MaxWellsPerPad:   20,
		SimSeed:          42,
	}
}

func newTestSettingsStore(t *testing.T, defaults settings.Document) *settings.Store {
	t.Helper()
	if defaults.Mode == "" {
		defaults.Mode = settings.ModeSimulated
	}
	st, err := settings.NewStore(filepath.Join(t.TempDir(), "settings.json"), defaults)
	if err != nil {
		t.Fatalf("failed to create settings store: %v", err)
	}
	return st
}

func newTestHistoryStore(t *testing.T) *loadhistory.Store {
	t.Helper()
	hist, err := loadhistory.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to create history store: %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })
	return hist
}

func TestWellPadsHandlerSimulatedSource(t *testing.T) {
	h := wellPadsHandler(testConfig(), newTestSettingsStore(t, settings.Document{}), nil)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/wellpads?source=simulated", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusOK {
		t.Fatalf("expected status %d, got %d", nethttp.StatusOK, rr.Code)
	}

	var payload struct {
		Meta map[string]any        `json:"meta"`
		Data []wells.WellPadRecord `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.Meta["source"] != sourceSimulated {
		t.Fatalf("expected simulated source in meta, got %v", payload.Meta["source"])
	}
	if len(payload.Data) != 4 {
		t.Fatalf("expected 4 simulated pads, got %d", len(payload.Data))
	}
	for _, pad := range payload.Data {
		for _, well := range pad.Wells {
			for metric, src := range well.DataSources {
				if src != wells.SourceSynthetic {
					t.Fatalf("well %s metric %s: expected synthetic, got %q", well.Name, metric, src)
				}
			}
		}
	}
}

func TestWellPadsHandlerAutoDefaultsToPersistedMode(t *testing.T) {
	h := wellPadsHandler(testConfig(), newTestSettingsStore(t, settings.Document{Mode: settings.ModeSimulated}), nil)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/wellpads", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusOK {
		t.Fatalf("expected status %d, got %d", nethttp.StatusOK, rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	meta := payload["meta"].(map[string]any)
	if meta["source"] != sourceSimulated {
		t.Fatalf("expected simulated source, got %v", meta["source"])
	}
}

func TestWellPadsHandlerInvalidSource(t *testing.T) {
	h := wellPadsHandler(testConfig(), newTestSettingsStore(t, settings.Document{}), nil)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/wellpads?source=cached", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", nethttp.StatusBadRequest, rr.Code)
	}
}

func TestWellPadsHandlerRejectsPost(t *testing.T) {
	h := wellPadsHandler(testConfig(), newTestSettingsStore(t, settings.Document{}), nil)

	req := httptest.NewRequest(nethttp.MethodPost, "/api/v1/wellpads", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusMethodNotAllowed {
		t.Fatalf("expected status %d, got %d", nethttp.StatusMethodNotAllowed, rr.Code)
	}
}

func TestWellPadsHandlerRecordsHistory(t *testing.T) {
	hist := newTestHistoryStore(t)
	h := wellPadsHandler(testConfig(), newTestSettingsStore(t, settings.Document{}), hist)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/wellpads?source=simulated", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusOK {
		t.Fatalf("expected status %d, got %d", nethttp.StatusOK, rr.Code)
	}

	entries, err := hist.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("failed to read history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(entries))
	}
	if entries[0].Source != sourceSimulated {
		t.Fatalf("expected simulated source recorded, got %q", entries[0].Source)
	}
	if entries[0].PadCount != 4 {
		t.Fatalf("expected 4 pads recorded, got %d", entries[0].PadCount)
	}
}

func TestValidateHandlerRequiresHostname(t *testing.T) {
	h := validateHandler(testConfig(), newTestSettingsStore(t, settings.Document{}))

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/wellpads/validate", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", nethttp.StatusBadRequest, rr.Code)
	}

	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["error"] == nil {
		t.Fatalf("expected error field in response")
	}
}

func TestHistoryHandlerDisabled(t *testing.T) {
	h := historyHandler(20, nil)

	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/history", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", nethttp.StatusServiceUnavailable, rr.Code)
	}
}

func TestHistoryHandlerReturnsEntries(t *testing.T) {
	hist := newTestHistoryStore(t)
	if _, err := hist.Record(context.Background(), loadhistory.Entry{
		StartedAt: time.Now().UTC(),
		Source:    sourceLive,
		PadCount:  2,
		WellCount: 7,
	}); err != nil {
		t.Fatalf("failed to seed history: %v", err)
	}

	h := historyHandler(20, hist)
	req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/history?limit=5", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	if rr.Code != nethttp.StatusOK {
		t.Fatalf("expected status %d, got %d", nethttp.StatusOK, rr.Code)
	}

	var payload struct {
		Meta map[string]any      `json:"meta"`
		Data []loadhistory.Entry `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Data) != 1 || payload.Data[0].WellCount != 7 {
		t.Fatalf("unexpected history entries: %+v", payload.Data)
	}
	if payload.Meta["limit"] != float64(5) {
		t.Fatalf("expected limit 5 in meta, got %v", payload.Meta["limit"])
	}
}

func TestParseLimit(t *testing.T) {
	cases := []struct {
		query string
		want  int
	}{
		{"", 20},
		{"limit=50", 50},
		{"limit=0", 20},
		{"limit=-3", 20},
		{"limit=2000", 20},
		{"limit=abc", 20},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(nethttp.MethodGet, "/api/v1/history?"+tc.query, nil)
		if got := parseLimit(req, 20); got != tc.want {
			t.Fatalf("parseLimit(%q) = %d, expected %d", tc.query, got, tc.want)
		}
	}
}
