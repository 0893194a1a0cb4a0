package http

import (
	"encoding/json"
	nethttp "net/http"

	"go-pi-well-dashboard/internal/config"
	"go-pi-well-dashboard/internal/settings"
	"go-pi-well-dashboard/internal/wells"
)

func settingsHandler(st *settings.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		switch r.Method {
		case nethttp.MethodGet:
			doc, err := st.Load()
			if err != nil {
				writeJSON(w, nethttp.StatusInternalServerError, map[string]any{"error": "failed to read settings"})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{"data": redactCredentials(doc)})
		case nethttp.MethodPut, nethttp.MethodPost:
			var doc settings.Document
			if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": "invalid JSON body"})
				return
			}

			// An empty incoming password keeps the stored one, so the UI can
			// resubmit the redacted document unchanged.
			if doc.PIServerConfig.Credentials != nil && doc.PIServerConfig.Credentials.Password == "" {
				if prev, err := st.Load(); err == nil && prev.PIServerConfig.Credentials != nil {
					doc.PIServerConfig.Credentials.Password = prev.PIServerConfig.Credentials.Password
				}
			}

			saved, err := st.Save(doc)
			if err != nil {
				writeJSON(w, nethttp.StatusBadRequest, map[string]any{"error": err.Error()})
				return
			}
			writeJSON(w, nethttp.StatusOK, map[string]any{
				"meta": map[string]any{"saved": true},
				"data": redactCredentials(saved),
			})
		default:
			writeJSON(w, nethttp.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
		}
	}
}

func redactCredentials(doc settings.Document) settings.Document {
	if doc.PIServerConfig.Credentials != nil {
		redacted := *doc.PIServerConfig.Credentials
		redacted.Password = ""
		doc.PIServerConfig.Credentials = &redacted
	}
	return doc
}

func thresholdsHandler(cfg config.Config) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		writeJSON(w, nethttp.StatusOK, map[string]any{
			"data": map[string]any{
				"warning_deviation_pct": wells.WarningDeviationPct,
				"alert_deviation_pct":   wells.AlertDeviationPct,
				"warning_water_cut_pct": wells.WarningWaterCutPct,
				"alert_water_cut_pct":   wells.AlertWaterCutPct,
				"max_pads":              cfg.MaxPads,
				"max_wells_per_pad":     cfg.MaxWellsPerPad,
			},
		})
	}
}
