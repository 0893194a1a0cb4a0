package http

import (
	"context"
	nethttp "net/http"
	"strings"
	"time"

	"go-pi-well-dashboard/internal/config"
	"go-pi-well-dashboard/internal/connectors/loadhistory"
	"go-pi-well-dashboard/internal/connectors/piwebapi"
	"go-pi-well-dashboard/internal/settings"
)

func servicesStatusHandler(cfg config.Config, st *settings.Store, hist *loadhistory.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
		defer cancel()

		doc, err := st.Load()
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to read settings"})
			return
		}

		payload := map[string]any{
			"generated_at": time.Now().UTC(),
			"services":     map[string]any{},
		}
		services := payload["services"].(map[string]any)

		services["settings"] = map[string]any{
			"enabled":      true,
			"ok":           true,
			"path":         st.Path(),
			"mode":         doc.Mode,
			"last_updated": doc.LastUpdated,
		}
		services["pi_web_api"] = piStatus(ctx, cfg, doc)
		services["load_history"] = historyStatus(ctx, hist)

		writeJSON(w, nethttp.StatusOK, payload)
	}
}

func piStatus(ctx context.Context, cfg config.Config, doc settings.Document) map[string]any {
	hostname := strings.TrimSpace(doc.PIServerConfig.LiveServerHostname)
	if hostname == "" {
		return map[string]any{"enabled": false, "ok": false, "error": "live server hostname not configured"}
	}

	client := piwebapi.NewClient(hostname, cfg.PIRequestTimeout, cfg.PIProbeTimeout)
	if creds := doc.PIServerConfig.Credentials; creds != nil && creds.Username != "" {
		client.SetBasicAuth(creds.Username, creds.Password)
	}

	start := time.Now()
	endpoint, err := client.ResolveEndpoint(ctx)
	recordExternalProbe("piwebapi", "ResolveEndpoint", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}

	return map[string]any{
		"enabled":  true,
		"ok":       true,
		"endpoint": endpoint,
		"ping_ms":  time.Since(start).Milliseconds(),
	}
}

func historyStatus(ctx context.Context, hist *loadhistory.Store) map[string]any {
	if hist == nil {
		return map[string]any{"enabled": false, "ok": false, "error": "load history disabled"}
	}

	start := time.Now()
	stats, err := hist.ServiceStats(ctx)
	recordStoreQuery("history", "ServiceStats", time.Since(start).Seconds(), err)
	if err != nil {
		return map[string]any{"enabled": true, "ok": false, "error": err.Error()}
	}
	return map[string]any{"enabled": true, "ok": true, "stats": stats}
}
