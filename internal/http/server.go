package http

import (
	"context"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"strconv"
	"time"

	"go-pi-well-dashboard/internal/config"
	"go-pi-well-dashboard/internal/connectors/loadhistory"
	"go-pi-well-dashboard/internal/settings"
)

// Server wraps an HTTP server and route handlers.
type Server struct {
	httpServer *nethttp.Server
	settings   *settings.Store
	history    *loadhistory.Store
}

// NewServer creates a configured HTTP server with v1 endpoints.
func NewServer(cfg config.Config) (*Server, error) {
	settingsStore, err := settings.NewStore(cfg.SettingsPath, defaultDocument(cfg))
	if err != nil {
		return nil, err
	}

	var historyStore *loadhistory.Store
	if cfg.HistorySQLitePath != "" {
		historyStore, err = loadhistory.NewStore(cfg.HistorySQLitePath)
		if err != nil {
			return nil, err
		}
	}

	mux := nethttp.NewServeMux()

	mux.HandleFunc("/", dashboardHandler)
	mux.HandleFunc("/favicon.ico", faviconHandler)
	mux.Handle("/metrics", metricsHandler())
	mux.HandleFunc("/api/v1/metrics/app", appMetricsSummaryHandler())
	mux.HandleFunc("/health", healthHandler)
	mux.HandleFunc("/ready", readyHandler)
	mux.HandleFunc("/api/v1/wellpads", wellPadsHandler(cfg, settingsStore, historyStore))
	mux.HandleFunc("/api/v1/wellpads/validate", validateHandler(cfg, settingsStore))
	mux.HandleFunc("/api/v1/settings", settingsHandler(settingsStore))
	mux.HandleFunc("/api/v1/settings/thresholds", thresholdsHandler(cfg))
	mux.HandleFunc("/api/v1/history", historyHandler(cfg.HistoryLimit, historyStore))
	mux.HandleFunc("/api/v1/status/services", servicesStatusHandler(cfg, settingsStore, historyStore))

	httpServer := &nethttp.Server{
		Addr:         cfg.ListenAddr,
		Handler:      loggingMiddleware(observabilityMiddleware(mux)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return &Server{httpServer: httpServer, settings: settingsStore, history: historyStore}, nil
}

// defaultDocument seeds the settings document from env config until the
// operator saves one.
func defaultDocument(cfg config.Config) settings.Document {
	return settings.Document{
		Mode: cfg.DefaultMode,
		PIServerConfig: settings.PIServerConfig{
			LiveServerHostname: cfg.PIHostname,
			AssetServerName:    cfg.PIAssetServer,
			DatabaseName:       cfg.PIDatabase,
			ParentElementPath:  cfg.PIParentPath,
			TemplateNameFilter: cfg.PITemplateFilter,
		},
		AttributeMapping: map[string]string{},
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.history != nil {
		_ = s.history.Close()
	}
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}

func readyHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"status": "ready",
	})
}

func loggingMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)
		fmt.Printf("%s %s %s %s\n", r.Method, r.URL.Path, strconv.Itoa(rec.status), time.Since(start))
	})
}

func writeJSON(w nethttp.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
