package http

import (
	"context"
	"errors"
	nethttp "net/http"
	"strconv"
	"strings"
	"time"

	"go-pi-well-dashboard/internal/config"
	"go-pi-well-dashboard/internal/connectors/loadhistory"
	"go-pi-well-dashboard/internal/connectors/piwebapi"
	"go-pi-well-dashboard/internal/connectors/sim"
	"go-pi-well-dashboard/internal/settings"
	"go-pi-well-dashboard/internal/wells"
)

// Load sources accepted by the wellpads endpoint. "auto" follows the
// persisted mode and falls back to simulated data when a live load fails, so
// the dashboard never renders an empty grid.
const (
	sourceAuto      = "auto"
	sourceLive      = "live"
	sourceSimulated = "simulated"
)

func wellPadsHandler(cfg config.Config, st *settings.Store, hist *loadhistory.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		source := strings.TrimSpace(r.URL.Query().Get("source"))
		if source == "" {
			source = sourceAuto
		}
		if source != sourceAuto && source != sourceLive && source != sourceSimulated {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{
				"error": "invalid source, expected auto, live or simulated",
			})
			return
		}

		doc, err := st.Load()
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to read settings"})
			return
		}

		wantLive := source == sourceLive || (source == sourceAuto && doc.Mode == settings.ModeLive)
		if !wantLive {
			pads := simulatedPads(cfg)
			recordLoad(r.Context(), hist, loadhistory.Entry{
				StartedAt: time.Now().UTC(),
				Source:    sourceSimulated,
				PadCount:  len(pads),
				WellCount: countWells(pads),
			})
			writePads(w, pads, map[string]any{"source": sourceSimulated})
			return
		}

		start := time.Now()
		pads, err := runLiveLoad(r.Context(), cfg, doc)
		durationMS := time.Since(start).Milliseconds()
		recordExternalProbe("piwebapi", "Load", time.Since(start).Seconds(), err)

		entry := loadhistory.Entry{
			StartedAt:  start.UTC(),
			DurationMS: durationMS,
			Source:     sourceLive,
			PadCount:   len(pads),
			WellCount:  countWells(pads),
		}
		if err != nil {
			entry.Error = err.Error()
		} else {
			entry.SyntheticFieldCount = countSyntheticFields(pads)
		}
		recordLoad(r.Context(), hist, entry)

		if err == nil {
			writePads(w, pads, map[string]any{"source": sourceLive, "duration_ms": durationMS})
			return
		}

		if source == sourceLive {
			writeJSON(w, nethttp.StatusBadGateway, loadErrorPayload(err))
			return
		}

		// auto: keep the dashboard populated instead of surfacing a hole.
		fallback := simulatedPads(cfg)
		writePads(w, fallback, map[string]any{
			"source":     sourceSimulated,
			"fallback":   true,
			"live_error": err.Error(),
		})
	}
}

func validateHandler(cfg config.Config, st *settings.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.Method != nethttp.MethodGet {
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
			return
		}

		doc, err := st.Load()
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to read settings"})
			return
		}
		if strings.TrimSpace(doc.PIServerConfig.LiveServerHostname) == "" {
			writeJSON(w, nethttp.StatusBadRequest, map[string]any{
				"error": "live server hostname not configured",
			})
			return
		}

		loader := liveLoader(cfg, doc)
		start := time.Now()
		result, err := loader.Validate(r.Context())
		recordExternalProbe("piwebapi", "Validate", time.Since(start).Seconds(), err)

		payload := map[string]any{"data": result}
		if err != nil {
			payload["error"] = err.Error()
			for k, v := range availableNames(err) {
				payload[k] = v
			}
			writeJSON(w, nethttp.StatusBadGateway, payload)
			return
		}
		writeJSON(w, nethttp.StatusOK, payload)
	}
}

func historyHandler(defaultLimit int, hist *loadhistory.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if hist == nil {
			writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
				"error": "load history disabled (set APP_HISTORY_SQLITE_PATH)",
			})
			return
		}

		limit := parseLimit(r, defaultLimit)
		start := time.Now()
		items, err := hist.Recent(r.Context(), limit)
		recordStoreQuery("history", "Recent", time.Since(start).Seconds(), err)
		if err != nil {
			writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to fetch load history"})
			return
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{"limit": limit, "count": len(items)},
			"data": items,
		})
	}
}

// liveLoader builds a fresh navigator and loader for one load. The client is
// per-load on purpose: only the resolved endpoint would be worth caching, and
// its lifetime is scoped to the navigator instance.
func liveLoader(cfg config.Config, doc settings.Document) *wells.Loader {
	client := piwebapi.NewClient(doc.PIServerConfig.LiveServerHostname, cfg.PIRequestTimeout, cfg.PIProbeTimeout)
	if creds := doc.PIServerConfig.Credentials; creds != nil && creds.Username != "" {
		client.SetBasicAuth(creds.Username, creds.Password)
	}
	return wells.NewLoader(client, wells.Config{
		AssetServerName:    doc.PIServerConfig.AssetServerName,
		DatabaseName:       doc.PIServerConfig.DatabaseName,
		ParentElementPath:  doc.PIServerConfig.ParentElementPath,
		TemplateNameFilter: doc.PIServerConfig.TemplateNameFilter,
		MaxPads:            cfg.MaxPads,
		MaxWellsPerPad:     cfg.MaxWellsPerPad,
	}, wells.Mapping(doc.AttributeMapping))
}

func runLiveLoad(ctx context.Context, cfg config.Config, doc settings.Document) ([]wells.WellPadRecord, error) {
	return liveLoader(cfg, doc).Load(ctx)
}

func simulatedPads(cfg config.Config) []wells.WellPadRecord {
	seed := cfg.SimSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return sim.NewGenerator(seed).WellPads()
}

func writePads(w nethttp.ResponseWriter, pads []wells.WellPadRecord, meta map[string]any) {
	meta["generated_at"] = time.Now().UTC()
	meta["pad_count"] = len(pads)
	meta["well_count"] = countWells(pads)
	writeJSON(w, nethttp.StatusOK, map[string]any{
		"meta": meta,
		"data": pads,
	})
}

// loadErrorPayload turns a load failure into the structured envelope the UI
// shows, including the valid alternatives when discovery found any.
func loadErrorPayload(err error) map[string]any {
	payload := map[string]any{"error": err.Error()}
	for k, v := range availableNames(err) {
		payload[k] = v
	}
	return payload
}

func availableNames(err error) map[string]any {
	out := map[string]any{}
	var serverErr *piwebapi.AssetServerNotFoundError
	if errors.As(err, &serverErr) {
		out["available_asset_servers"] = serverErr.Available
	}
	var dbErr *piwebapi.DatabaseNotFoundError
	if errors.As(err, &dbErr) {
		out["available_databases"] = dbErr.Available
	}
	return out
}

func countWells(pads []wells.WellPadRecord) int {
	total := 0
	for _, p := range pads {
		total += p.WellCount
	}
	return total
}

func countSyntheticFields(pads []wells.WellPadRecord) int {
	total := 0
	for _, p := range pads {
		for _, w := range p.Wells {
			for _, src := range w.DataSources {
				if src == wells.SourceSynthetic {
					total++
				}
			}
		}
	}
	return total
}

func recordLoad(ctx context.Context, hist *loadhistory.Store, entry loadhistory.Entry) {
	status := "success"
	if entry.Error != "" {
		status = "error"
	}
	recordLoadRun(entry.Source, status, float64(entry.DurationMS)/1000.0)

	if hist == nil {
		return
	}
	start := time.Now()
	_, err := hist.Record(ctx, entry)
	recordStoreQuery("history", "Record", time.Since(start).Seconds(), err)
}

func parseLimit(r *nethttp.Request, defaultLimit int) int {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 && parsed <= 1000 {
			limit = parsed
		}
	}
	return limit
}
