package http

import (
	"fmt"
	nethttp "net/http"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

var (
	appStartedAtUnix = time.Now().Unix()
	inFlightRequests int64
	metricsMu        sync.Mutex
	httpSeries       = map[httpMetricKey]*httpMetricSeries{}
	storeQuerySeries = map[storeMetricKey]*storeMetricSeries{}
	externalSeries   = map[externalMetricKey]*externalMetricSeries{}
	loadRunSeries    = map[loadRunMetricKey]*loadRunMetricSeries{}
)

type httpMetricKey struct {
	Method string
	Path   string
	Status string
}

type httpMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

type storeMetricKey struct {
	Store     string
	Operation string
}

type storeMetricSeries struct {
	Count              uint64
	Errors             uint64
	DurationSecondsSum float64
}

type externalMetricKey struct {
	Target    string
	Operation string
}

type externalMetricSeries struct {
	Count              uint64
	Errors             uint64
	DurationSecondsSum float64
}

type loadRunMetricKey struct {
	Source string
	Status string
}

type loadRunMetricSeries struct {
	Count              uint64
	DurationSecondsSum float64
}

func metricsHandler() nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")

		metricsMu.Lock()
		httpSnapshot := snapshotHTTP()
		storeSnapshot := snapshotStore()
		externalSnapshot := snapshotExternal()
		loadSnapshot := snapshotLoadRuns()
		metricsMu.Unlock()

		_, _ = fmt.Fprintln(w, "# HELP well_ui_http_requests_total Total HTTP requests handled by this app.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_http_requests_total counter")
		for _, it := range httpSnapshot {
			_, _ = fmt.Fprintf(w, "well_ui_http_requests_total{method=%q,path=%q,status=%q} %d\n",
				escapeLabel(it.Key.Method), escapeLabel(it.Key.Path), escapeLabel(it.Key.Status), it.Series.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP well_ui_http_request_duration_seconds_sum Total duration in seconds for observed requests.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_http_request_duration_seconds_sum counter")
		for _, it := range httpSnapshot {
			_, _ = fmt.Fprintf(w, "well_ui_http_request_duration_seconds_sum{method=%q,path=%q,status=%q} %.9f\n",
				escapeLabel(it.Key.Method), escapeLabel(it.Key.Path), escapeLabel(it.Key.Status), it.Series.DurationSecondsSum)
		}
		_, _ = fmt.Fprintln(w, "# HELP well_ui_http_in_flight_requests In-flight HTTP requests currently served by this app.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_http_in_flight_requests gauge")
		_, _ = fmt.Fprintf(w, "well_ui_http_in_flight_requests %d\n", atomic.LoadInt64(&inFlightRequests))

		_, _ = fmt.Fprintln(w, "# HELP well_ui_store_query_duration_seconds_sum Store query duration sum in seconds by store/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_store_query_duration_seconds_sum counter")
		for _, it := range storeSnapshot {
			_, _ = fmt.Fprintf(w, "well_ui_store_query_duration_seconds_sum{store=%q,operation=%q} %.9f\n",
				escapeLabel(it.Key.Store), escapeLabel(it.Key.Operation), it.Series.DurationSecondsSum)
		}
		_, _ = fmt.Fprintln(w, "# HELP well_ui_store_query_errors_total Store query errors by store/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_store_query_errors_total counter")
		for _, it := range storeSnapshot {
			_, _ = fmt.Fprintf(w, "well_ui_store_query_errors_total{store=%q,operation=%q} %d\n",
				escapeLabel(it.Key.Store), escapeLabel(it.Key.Operation), it.Series.Errors)
		}

		_, _ = fmt.Fprintln(w, "# HELP well_ui_external_probe_duration_seconds_sum External probe duration sum in seconds by target/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_external_probe_duration_seconds_sum counter")
		for _, it := range externalSnapshot {
			_, _ = fmt.Fprintf(w, "well_ui_external_probe_duration_seconds_sum{target=%q,operation=%q} %.9f\n",
				escapeLabel(it.Key.Target), escapeLabel(it.Key.Operation), it.Series.DurationSecondsSum)
		}
		_, _ = fmt.Fprintln(w, "# HELP well_ui_external_probe_errors_total External probe errors by target/operation.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_external_probe_errors_total counter")
		for _, it := range externalSnapshot {
			_, _ = fmt.Fprintf(w, "well_ui_external_probe_errors_total{target=%q,operation=%q} %d\n",
				escapeLabel(it.Key.Target), escapeLabel(it.Key.Operation), it.Series.Errors)
		}

		_, _ = fmt.Fprintln(w, "# HELP well_ui_load_runs_total Data load runs by source and status.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_load_runs_total counter")
		for _, it := range loadSnapshot {
			_, _ = fmt.Fprintf(w, "well_ui_load_runs_total{source=%q,status=%q} %d\n",
				escapeLabel(it.Key.Source), escapeLabel(it.Key.Status), it.Series.Count)
		}
		_, _ = fmt.Fprintln(w, "# HELP well_ui_load_run_duration_seconds_sum Data load duration sum in seconds by source and status.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_load_run_duration_seconds_sum counter")
		for _, it := range loadSnapshot {
			_, _ = fmt.Fprintf(w, "well_ui_load_run_duration_seconds_sum{source=%q,status=%q} %.9f\n",
				escapeLabel(it.Key.Source), escapeLabel(it.Key.Status), it.Series.DurationSecondsSum)
		}

		_, _ = fmt.Fprintln(w, "# HELP well_ui_uptime_seconds Process uptime in seconds.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_uptime_seconds gauge")
		_, _ = fmt.Fprintf(w, "well_ui_uptime_seconds %d\n", time.Now().Unix()-appStartedAtUnix)

		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		_, _ = fmt.Fprintln(w, "# HELP well_ui_runtime_goroutines Number of goroutines.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_runtime_goroutines gauge")
		_, _ = fmt.Fprintf(w, "well_ui_runtime_goroutines %d\n", runtime.NumGoroutine())
		_, _ = fmt.Fprintln(w, "# HELP well_ui_runtime_memory_alloc_bytes Heap allocation bytes.")
		_, _ = fmt.Fprintln(w, "# TYPE well_ui_runtime_memory_alloc_bytes gauge")
		_, _ = fmt.Fprintf(w, "well_ui_runtime_memory_alloc_bytes %d\n", ms.Alloc)
	})
}

type httpRow struct {
	Key    httpMetricKey
	Series httpMetricSeries
}

func snapshotHTTP() []httpRow {
	keys := make([]httpMetricKey, 0, len(httpSeries))
	for k := range httpSeries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Method != keys[j].Method {
			return keys[i].Method < keys[j].Method
		}
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Status < keys[j].Status
	})
	out := make([]httpRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, httpRow{Key: k, Series: *httpSeries[k]})
	}
	return out
}

type storeRow struct {
	Key    storeMetricKey
	Series storeMetricSeries
}

func snapshotStore() []storeRow {
	keys := make([]storeMetricKey, 0, len(storeQuerySeries))
	for k := range storeQuerySeries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Store != keys[j].Store {
			return keys[i].Store < keys[j].Store
		}
		return keys[i].Operation < keys[j].Operation
	})
	out := make([]storeRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, storeRow{Key: k, Series: *storeQuerySeries[k]})
	}
	return out
}

type externalRow struct {
	Key    externalMetricKey
	Series externalMetricSeries
}

func snapshotExternal() []externalRow {
	keys := make([]externalMetricKey, 0, len(externalSeries))
	for k := range externalSeries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Target != keys[j].Target {
			return keys[i].Target < keys[j].Target
		}
		return keys[i].Operation < keys[j].Operation
	})
	out := make([]externalRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, externalRow{Key: k, Series: *externalSeries[k]})
	}
	return out
}

type loadRunRow struct {
	Key    loadRunMetricKey
	Series loadRunMetricSeries
}

func snapshotLoadRuns() []loadRunRow {
	keys := make([]loadRunMetricKey, 0, len(loadRunSeries))
	for k := range loadRunSeries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Source != keys[j].Source {
			return keys[i].Source < keys[j].Source
		}
		return keys[i].Status < keys[j].Status
	})
	out := make([]loadRunRow, 0, len(keys))
	for _, k := range keys {
		out = append(out, loadRunRow{Key: k, Series: *loadRunSeries[k]})
	}
	return out
}

func appMetricsSummaryHandler() nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, _ *nethttp.Request) {
		type endpointRow struct {
			Method  string  `json:"method"`
			Path    string  `json:"path"`
			Status  string  `json:"status"`
			Count   uint64  `json:"count"`
			AvgMS   float64 `json:"avg_ms"`
			TotalMS float64 `json:"total_ms"`
		}
		type probeRow struct {
			Target    string  `json:"target"`
			Operation string  `json:"operation"`
			Count     uint64  `json:"count"`
			Errors    uint64  `json:"errors"`
			AvgMS     float64 `json:"avg_ms"`
		}

		metricsMu.Lock()
		httpRows := make([]endpointRow, 0, len(httpSeries))
		for k, s := range httpSeries {
			avg := 0.0
			if s.Count > 0 {
				avg = (s.DurationSecondsSum / float64(s.Count)) * 1000.0
			}
			httpRows = append(httpRows, endpointRow{
				Method:  k.Method,
				Path:    k.Path,
				Status:  k.Status,
				Count:   s.Count,
				AvgMS:   avg,
				TotalMS: s.DurationSecondsSum * 1000.0,
			})
		}

		probeRows := make([]probeRow, 0, len(externalSeries))
		probeErrors := uint64(0)
		for k, s := range externalSeries {
			avg := 0.0
			if s.Count > 0 {
				avg = (s.DurationSecondsSum / float64(s.Count)) * 1000.0
			}
			probeRows = append(probeRows, probeRow{
				Target:    k.Target,
				Operation: k.Operation,
				Count:     s.Count,
				Errors:    s.Errors,
				AvgMS:     avg,
			})
			probeErrors += s.Errors
		}

		storeErrors := uint64(0)
		for _, s := range storeQuerySeries {
			storeErrors += s.Errors
		}
		metricsMu.Unlock()

		sort.Slice(httpRows, func(i, j int) bool { return httpRows[i].AvgMS > httpRows[j].AvgMS })
		sort.Slice(probeRows, func(i, j int) bool { return probeRows[i].AvgMS > probeRows[j].AvgMS })

		topHTTP := httpRows
		if len(topHTTP) > 5 {
			topHTTP = topHTTP[:5]
		}

		writeJSON(w, nethttp.StatusOK, map[string]any{
			"meta": map[string]any{
				"generated_at": time.Now().UTC(),
			},
			"data": map[string]any{
				"top_http_slowest_avg_ms": topHTTP,
				"external_probes":         probeRows,
				"errors": map[string]any{
					"store_query_total":    storeErrors,
					"external_probe_total": probeErrors,
				},
			},
		})
	}
}

type statusRecorder struct {
	nethttp.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func observabilityMiddleware(next nethttp.Handler) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		start := time.Now()
		atomic.AddInt64(&inFlightRequests, 1)
		defer atomic.AddInt64(&inFlightRequests, -1)

		rec := &statusRecorder{ResponseWriter: w, status: nethttp.StatusOK}
		next.ServeHTTP(rec, r)

		recordHTTPMetric(r.Method, r.URL.Path, rec.status, time.Since(start).Seconds())
	})
}

func recordHTTPMetric(method, path string, status int, durationSeconds float64) {
	key := httpMetricKey{Method: method, Path: path, Status: fmt.Sprintf("%d", status)}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := httpSeries[key]
	if !ok {
		row = &httpMetricSeries{}
		httpSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func recordStoreQuery(store, operation string, durationSeconds float64, err error) {
	if store == "" || operation == "" {
		return
	}
	key := storeMetricKey{Store: store, Operation: operation}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := storeQuerySeries[key]
	if !ok {
		row = &storeMetricSeries{}
		storeQuerySeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
	if err != nil {
		row.Errors++
	}
}

func recordExternalProbe(target, operation string, durationSeconds float64, err error) {
	if target == "" || operation == "" {
		return
	}
	key := externalMetricKey{Target: target, Operation: operation}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := externalSeries[key]
	if !ok {
		row = &externalMetricSeries{}
		externalSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
	if err != nil {
		row.Errors++
	}
}

func recordLoadRun(source, status string, durationSeconds float64) {
	source = strings.TrimSpace(strings.ToLower(source))
	status = strings.TrimSpace(strings.ToLower(status))
	if source == "" {
		source = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	key := loadRunMetricKey{Source: source, Status: status}
	metricsMu.Lock()
	defer metricsMu.Unlock()
	row, ok := loadRunSeries[key]
	if !ok {
		row = &loadRunMetricSeries{}
		loadRunSeries[key] = row
	}
	row.Count++
	row.DurationSecondsSum += durationSeconds
}

func escapeLabel(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, "\n", `\n`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return v
}
