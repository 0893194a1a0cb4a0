package http

import nethttp "net/http"

func dashboardHandler(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.URL.Path != "/" {
		nethttp.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(nethttp.StatusOK)
	_, _ = w.Write([]byte(dashboardHTML))
}

func faviconHandler(w nethttp.ResponseWriter, _ *nethttp.Request) {
	w.WriteHeader(nethttp.StatusNoContent)
}

const dashboardHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Well Production Dashboard</title>
  <style>
    @import url("https://fonts.googleapis.com/css?family=Open+Sans:300,400,600,700");

    :root {
      --brand: #0e5d8f;
      --brand-2: #0971b2;
      --bg: #f7f7f7;
      --paper: #fff;
      --text: #333;
      --muted: #777;
      --line: #ddd;
      --line-soft: #eee;
      --head: #f0f0f0;
      --ok-bg: #dff0d8;
      --ok-text: #3c763d;
      --bad-bg: #f2dede;
      --bad-text: #a94442;
    }

    * { box-sizing: border-box; }

    body {
      margin: 0;
      background: var(--bg);
      color: var(--text);
      font-family: "Open Sans", "Helvetica Neue", Helvetica, Arial, sans-serif;
      font-size: 14px;
      line-height: 1.42857143;
    }

    a { color: #428bca; text-decoration: none; }
    a:hover { color: #2a6496; text-decoration: underline; }

    header {
      background: linear-gradient(to right, var(--brand) 0, var(--brand-2) 100%);
      border-bottom: 1px solid #0b4e79;
      box-shadow: 0 2px 5px rgba(0, 0, 0, 0.15);
    }

    .container {
      margin-right: auto;
      margin-left: auto;
      padding-left: 15px;
      padding-right: 15px;
      width: 100%;
      max-width: 1480px;
    }

    .header-inner {
      min-height: 70px;
      display: flex;
      align-items: center;
      justify-content: space-between;
      gap: 16px;
    }

    .navbar-brand {
      color: #fff;
      font-size: 22px;
      font-weight: 300;
      letter-spacing: 0.2px;
    }

    .navbar-brand strong { font-weight: 600; }

    .navbar-note {
      color: rgba(255, 255, 255, 0.88);
      font-size: 13px;
      font-weight: 300;
      text-align: right;
    }

    .fallback-banner {
      display: none;
      text-align: center;
      background-color: #ffb400;
      padding: 9px 8px 8px;
      box-shadow: inset 1px 1px 1px rgba(125, 125, 125, 0.2);
      font-size: 13px;
      color: #222;
    }

    main { padding: 18px 0 32px; }

    .tabs {
      display: flex;
      gap: 8px;
      margin-bottom: 14px;
      border-bottom: 1px solid var(--line);
      padding-bottom: 8px;
    }

    .tab-btn {
      border: 1px solid #c7d7e5;
      background: #f3f8fc;
      color: #0e5d8f;
      padding: 6px 10px;
      font-size: 12px;
      font-weight: 600;
      cursor: pointer;
    }

    .tab-btn.active {
      background: #0e5d8f;
      color: #fff;
      border-color: #0e5d8f;
    }

    .tab-pane { display: none; }
    .tab-pane.active { display: block; }

    .board {
      background: var(--paper);
      border: 1px solid var(--line);
      box-shadow: 0 1px 2px rgba(0, 0, 0, 0.05);
      padding: 16px;
      margin-bottom: 16px;
    }

    h1 {
      margin: 0 0 12px;
      font-size: 30px;
      font-weight: 300;
      border-bottom: 1px solid var(--line-soft);
      padding-bottom: 8px;
      color: #444;
    }

    h2 {
      margin: 20px 0 10px;
      font-size: 22px;
      font-weight: 400;
      color: #444;
      border-bottom: 1px solid var(--line-soft);
      padding-bottom: 6px;
    }

    h3 {
      margin: 0;
      font-size: 16px;
      font-weight: 600;
      color: #444;
    }

    .toolbar {
      display: flex;
      gap: 10px;
      align-items: center;
      flex-wrap: wrap;
      margin-bottom: 12px;
    }

    .toolbar label { font-size: 12px; color: #555; }

    select, input[type="text"], input[type="password"], input[type="number"] {
      border: 1px solid #ccc;
      padding: 5px 7px;
      font-size: 13px;
      background: #fff;
    }

    button.action {
      border: 1px solid #0e5d8f;
      background: #0e5d8f;
      color: #fff;
      padding: 6px 12px;
      font-size: 12px;
      font-weight: 600;
      cursor: pointer;
    }

    button.action.secondary {
      background: #f3f8fc;
      color: #0e5d8f;
      border-color: #c7d7e5;
    }

    .pad-grid {
      display: grid;
      gap: 14px;
      grid-template-columns: repeat(auto-fill, minmax(290px, 1fr));
      margin-bottom: 14px;
    }

    .pad-card {
      border: 1px solid var(--line);
      background: var(--paper);
    }

    .pad-card .panel-heading {
      padding: 10px 12px;
      border-bottom: 1px solid var(--line);
      background: var(--head);
      display: flex;
      justify-content: space-between;
      align-items: center;
    }

    .pad-card .panel-body { padding: 10px 12px 12px; }

    .pad-stats {
      display: grid;
      grid-template-columns: repeat(2, 1fr);
      gap: 6px;
      font-size: 12px;
      color: #555;
    }

    .pad-stats strong { color: #333; font-size: 14px; }

    .panel {
      border: 1px solid var(--line);
      background: var(--paper);
      margin-bottom: 14px;
    }

    .panel-heading {
      padding: 10px 12px;
      border-bottom: 1px solid var(--line);
      background: var(--head);
    }

    .panel-body { padding: 10px 12px 12px; }

    table {
      width: 100%;
      max-width: 100%;
      border-collapse: collapse;
    }

    th,
    td {
      padding: 8px;
      line-height: 1.42857143;
      vertical-align: top;
      border-top: 1px solid var(--line);
      text-align: left;
      font-size: 13px;
    }

    thead th {
      vertical-align: bottom;
      border-bottom: 2px solid var(--line);
      border-top: 0;
      color: #555;
      font-size: 11px;
      text-transform: uppercase;
      letter-spacing: 0.5px;
      background: #fafafa;
    }

    tbody tr:nth-child(odd) td { background: #f9f9f9; }

    .pill {
      display: inline-block;
      border-radius: 2px;
      font-size: 11px;
      padding: 2px 6px;
      font-weight: 700;
      border: 1px solid transparent;
      text-transform: uppercase;
      letter-spacing: 0.2px;
    }

    .ok {
      color: var(--ok-text);
      background: var(--ok-bg);
      border-color: #d6e9c6;
    }

    .bad {
      color: var(--bad-text);
      background: var(--bad-bg);
      border-color: #ebccd1;
    }

    .warn {
      color: #8a6d3b;
      background: #fcf8e3;
      border-color: #faebcc;
    }

    .info {
      color: #31708f;
      background: #d9edf7;
      border-color: #bce8f1;
    }

    .mono {
      font-family: Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace;
      word-break: break-all;
    }

    .hint {
      margin-top: 8px;
      color: var(--muted);
      font-size: 12px;
    }

    .form-grid {
      display: grid;
      grid-template-columns: 180px 1fr;
      gap: 8px 12px;
      align-items: center;
      max-width: 640px;
    }

    .form-grid label { font-size: 13px; color: #555; }

    .form-actions { margin-top: 12px; display: flex; gap: 8px; }

    .form-note { margin-top: 10px; font-size: 12px; }
    .form-note.ok-note { color: #3c763d; }
    .form-note.bad-note { color: #a94442; }

    pre {
      margin: 0;
      padding: 10px;
      border: 1px solid var(--line);
      background: #fafafa;
      max-height: 340px;
      overflow: auto;
      font: 12px/1.35 Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace;
    }

    .latest-update {
      margin-top: 10px;
      color: #777;
      font-size: 12px;
    }

    @media (max-width: 640px) {
      .header-inner {
        flex-direction: column;
        align-items: flex-start;
        justify-content: center;
        padding: 10px 0;
      }
      .navbar-note { text-align: left; }
      .form-grid { grid-template-columns: 1fr; }
      h1 { font-size: 26px; }
      h2 { font-size: 20px; }
    }
  </style>
</head>
<body>
  <header>
    <div class="container header-inner">
      <div class="navbar-brand"><strong>Well</strong> Production Dashboard</div>
      <div class="navbar-note">Field production monitoring from PI Web API or simulated data</div>
    </div>
  </header>

  <div class="fallback-banner" id="fallback-banner"></div>

  <main>
    <div class="container">
      <div class="board">
        <div class="tabs">
          <button class="tab-btn active" data-tab="overview">Overview</button>
          <button class="tab-btn" data-tab="settings">Settings</button>
          <button class="tab-btn" data-tab="history">Load History</button>
          <button class="tab-btn" data-tab="services">Services</button>
        </div>

        <section id="tab-overview" class="tab-pane active">
          <h1>Well Pads</h1>

          <div class="toolbar">
            <label for="source-select">Data source</label>
            <select id="source-select">
              <option value="auto">Auto (live with fallback)</option>
              <option value="live">Live (PI Web API)</option>
              <option value="simulated">Simulated</option>
            </select>
            <button class="action" id="refresh-btn">Refresh</button>
            <label><input type="checkbox" id="auto-refresh" checked /> Auto-refresh (30s)</label>
            <span class="pill info" id="source-pill">-</span>
          </div>

          <div class="pad-grid" id="pad-grid"></div>

          <div class="panel">
            <div class="panel-heading"><h3 id="wells-title">Wells</h3></div>
            <div class="panel-body">
              <table>
                <thead>
                  <tr>
                    <th>Well</th><th>Pad</th><th>Oil (bbl/d)</th><th>Liquid (bbl/d)</th>
                    <th>Water Cut %</th><th>ESP Hz</th><th>Plan Dev %</th><th>Status</th><th>Updated</th>
                  </tr>
                </thead>
                <tbody id="wells-body"><tr><td colspan="9">Loading...</td></tr></tbody>
              </table>
            </div>
          </div>
          <div class="latest-update" id="overview-updated"></div>
        </section>

        <section id="tab-settings" class="tab-pane">
          <h1>Settings</h1>
          <div class="panel">
            <div class="panel-heading"><h3>PI Web API Connection</h3></div>
            <div class="panel-body">
              <div class="form-grid">
                <label for="f-mode">Mode</label>
                <select id="f-mode">
                  <option value="simulated">simulated</option>
                  <option value="live">live</option>
                </select>
                <label for="f-hostname">Server hostname</label>
                <input type="text" id="f-hostname" placeholder="pi.example.com" />
                <label for="f-asset-server">Asset server name</label>
                <input type="text" id="f-asset-server" />
                <label for="f-database">Asset database name</label>
                <input type="text" id="f-database" />
                <label for="f-parent-path">Parent element path</label>
                <input type="text" id="f-parent-path" placeholder="Production\Field1" />
                <label for="f-template">Template name filter</label>
                <input type="text" id="f-template" placeholder="Well (optional)" />
                <label for="f-username">Username</label>
                <input type="text" id="f-username" autocomplete="off" />
                <label for="f-password">Password</label>
                <input type="password" id="f-password" placeholder="(unchanged)" autocomplete="new-password" />
              </div>
              <div class="form-actions">
                <button class="action" id="save-settings-btn">Save</button>
                <button class="action secondary" id="validate-btn">Validate Connection</button>
              </div>
              <div class="form-note" id="settings-note"></div>
            </div>
          </div>
          <div class="panel">
            <div class="panel-heading"><h3>Validation Result</h3></div>
            <div class="panel-body">
              <table>
                <thead><tr><th>Check</th><th>Result</th><th>Detail</th></tr></thead>
                <tbody id="validation-body"><tr><td colspan="3">Run validation to check the configured server.</td></tr></tbody>
              </table>
              <div class="hint" id="validation-warnings"></div>
            </div>
          </div>
          <div class="panel">
            <div class="panel-heading"><h3>Status Thresholds</h3></div>
            <div class="panel-body">
              <table>
                <tbody id="thresholds-body"><tr><td colspan="2">Loading...</td></tr></tbody>
              </table>
            </div>
          </div>
        </section>

        <section id="tab-history" class="tab-pane">
          <h1>Load History</h1>
          <div class="panel">
            <div class="panel-heading"><h3>Recent Data Loads</h3></div>
            <div class="panel-body">
              <table>
                <thead>
                  <tr><th>Started</th><th>Source</th><th>Duration</th><th>Pads</th><th>Wells</th><th>Synthetic Fields</th><th>Result</th></tr>
                </thead>
                <tbody id="history-body"><tr><td colspan="7">Loading...</td></tr></tbody>
              </table>
              <div class="hint">Source: <span class="mono">/api/v1/history</span></div>
            </div>
          </div>
        </section>

        <section id="tab-services" class="tab-pane">
          <h1>Services Status</h1>
          <div class="panel">
            <div class="panel-heading"><h3>Backing Services</h3></div>
            <div class="panel-body">
              <table>
                <thead><tr><th>Service</th><th>Status</th><th>Detail</th></tr></thead>
                <tbody id="services-body"><tr><td colspan="3">Loading...</td></tr></tbody>
              </table>
              <div class="hint">Source: <span class="mono">/api/v1/status/services</span>, app metrics at <span class="mono">/api/v1/metrics/app</span>, Prometheus exposition at <span class="mono">/metrics</span></div>
            </div>
          </div>
          <div class="panel">
            <div class="panel-heading"><h3>Raw Status</h3></div>
            <div class="panel-body">
              <pre id="services-json">Loading...</pre>
            </div>
          </div>
        </section>
      </div>
    </div>
  </main>

  <script>
    const q = (s) => document.querySelector(s);
    const qq = (s) => Array.from(document.querySelectorAll(s));

    async function getJSON(url) {
      const r = await fetch(url);
      const body = await r.json();
      if (!r.ok) {
        const msg = body && body.error ? body.error : (url + " -> " + r.status);
        const e = new Error(msg);
        e.body = body;
        throw e;
      }
      return body;
    }

    function esc(v) {
      return String(v == null ? "" : v)
        .replaceAll("&", "&amp;").replaceAll("<", "&lt;").replaceAll(">", "&gt;");
    }

    function num(v, digits) {
      if (!Number.isFinite(v)) return "-";
      return v.toFixed(digits == null ? 1 : digits);
    }

    function statusPill(status) {
      const cls = status === "good" ? "ok" : status === "warning" ? "warn" : "bad";
      return '<span class="pill ' + cls + '">' + esc(status) + '</span>';
    }

    function fmtTime(iso) {
      if (!iso) return "-";
      const d = new Date(iso);
      if (Number.isNaN(d.getTime())) return "-";
      return d.toLocaleString();
    }

    function switchTab(tab) {
      qq(".tab-btn[data-tab]").forEach((b) => b.classList.toggle("active", b.dataset.tab === tab));
      qq(".tab-pane").forEach((p) => p.classList.toggle("active", p.id === "tab-" + tab));
      if (tab === "settings") { loadSettings(); loadThresholds(); }
      if (tab === "history") { loadHistory(); }
      if (tab === "services") { loadServices(); }
    }

    qq(".tab-btn[data-tab]").forEach((b) => b.addEventListener("click", () => switchTab(b.dataset.tab)));

    async function loadWellPads() {
      const source = q("#source-select").value;
      const banner = q("#fallback-banner");
      banner.style.display = "none";
      try {
        const payload = await getJSON("/api/v1/wellpads?source=" + encodeURIComponent(source));
        const meta = payload.meta || {};
        const pads = payload.data || [];
        q("#source-pill").textContent = meta.source || source;
        if (meta.fallback) {
          banner.textContent = "Live load failed, showing simulated data. Cause: " + (meta.live_error || "unknown");
          banner.style.display = "block";
        }
        renderPads(pads);
        q("#overview-updated").textContent = "Generated " + fmtTime(meta.generated_at) +
          " | pads: " + (meta.pad_count ?? pads.length) + " | wells: " + (meta.well_count ?? "-");
      } catch (e) {
        renderPads([]);
        q("#source-pill").textContent = "error";
        banner.textContent = "Load failed: " + e.message;
        banner.style.display = "block";
      }
    }

    function renderPads(pads) {
      const grid = q("#pad-grid");
      grid.innerHTML = "";
      const rows = [];
      pads.forEach((pad) => {
        const card = document.createElement("article");
        card.className = "pad-card";
        card.innerHTML =
          '<div class="panel-heading"><h3>' + esc(pad.name) + '</h3>' + statusPill(pad.status) + '</div>' +
          '<div class="panel-body"><div class="pad-stats">' +
          '<div>Wells<br /><strong>' + pad.well_count + '</strong></div>' +
          '<div>Active<br /><strong>' + pad.active_well_count + '</strong></div>' +
          '<div>Avg oil<br /><strong>' + num(pad.avg_oil_rate) + '</strong></div>' +
          '<div>Avg water cut<br /><strong>' + num(pad.avg_water_cut) + '%</strong></div>' +
          '</div></div>';
        grid.appendChild(card);

        (pad.wells || []).forEach((well) => {
          const synthetic = well.data_sources && Object.values(well.data_sources).some((s) => s === "synthetic");
          rows.push(
            '<tr>' +
            '<td>' + esc(well.name) + (synthetic ? ' <span class="pill info">sim</span>' : '') + '</td>' +
            '<td>' + esc(well.pad_name) + '</td>' +
            '<td>' + num(well.oil_rate) + '</td>' +
            '<td>' + num(well.liquid_rate) + '</td>' +
            '<td>' + num(well.water_cut) + '</td>' +
            '<td>' + num(well.esp_frequency) + '</td>' +
            '<td>' + num(well.plan_deviation) + '</td>' +
            '<td>' + statusPill(well.status) + '</td>' +
            '<td>' + fmtTime(well.last_updated) + '</td>' +
            '</tr>');
        });
      });
      q("#wells-body").innerHTML = rows.length ? rows.join("") : '<tr><td colspan="9">No wells loaded.</td></tr>';
      q("#wells-title").textContent = "Wells (" + rows.length + ")";
    }

    async function loadSettings() {
      try {
        const payload = await getJSON("/api/v1/settings");
        const doc = payload.data || {};
        const pi = doc.piServerConfig || {};
        const creds = pi.credentials || {};
        q("#f-mode").value = doc.mode || "simulated";
        q("#f-hostname").value = pi.liveServerHostname || "";
        q("#f-asset-server").value = pi.assetServerName || "";
        q("#f-database").value = pi.databaseName || "";
        q("#f-parent-path").value = pi.parentElementPath || "";
        q("#f-template").value = pi.templateNameFilter || "";
        q("#f-username").value = creds.username || "";
        q("#f-password").value = "";
      } catch (e) {
        settingsNote("Failed to load settings: " + e.message, false);
      }
    }

    function settingsNote(msg, ok) {
      const el = q("#settings-note");
      el.textContent = msg;
      el.className = "form-note " + (ok ? "ok-note" : "bad-note");
    }

    async function saveSettings() {
      const username = q("#f-username").value.trim();
      const password = q("#f-password").value;
      const doc = {
        mode: q("#f-mode").value,
        piServerConfig: {
          liveServerHostname: q("#f-hostname").value.trim(),
          assetServerName: q("#f-asset-server").value.trim(),
          databaseName: q("#f-database").value.trim(),
          parentElementPath: q("#f-parent-path").value.trim(),
          templateNameFilter: q("#f-template").value.trim(),
        },
        attributeMapping: {},
      };
      if (username !== "" || password !== "") {
        doc.piServerConfig.credentials = { username: username, password: password };
      }
      try {
        const r = await fetch("/api/v1/settings", {
          method: "PUT",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify(doc),
        });
        const body = await r.json();
        if (!r.ok) throw new Error(body.error || ("save -> " + r.status));
        settingsNote("Settings saved.", true);
        q("#f-password").value = "";
      } catch (e) {
        settingsNote("Save failed: " + e.message, false);
      }
    }

    async function runValidation() {
      const tbody = q("#validation-body");
      tbody.innerHTML = '<tr><td colspan="3">Validating...</td></tr>';
      q("#validation-warnings").textContent = "";
      try {
        const payload = await getJSON("/api/v1/wellpads/validate");
        renderValidation(payload);
      } catch (e) {
        if (e.body && e.body.data) {
          renderValidation(e.body);
        } else {
          tbody.innerHTML = '<tr><td colspan="3">Validation failed: ' + esc(e.message) + '</td></tr>';
        }
      }
    }

    function renderValidation(payload) {
      const result = payload.data || {};
      const rows = (result.stages || []).map((s) =>
        '<tr><td>' + esc(s.name) + '</td>' +
        '<td><span class="pill ' + (s.ok ? 'ok' : 'bad') + '">' + (s.ok ? 'pass' : 'fail') + '</span></td>' +
        '<td>' + esc(s.detail || "") + '</td></tr>');
      if (payload.error) {
        rows.push('<tr><td>error</td><td><span class="pill bad">fail</span></td><td class="mono">' + esc(payload.error) + '</td></tr>');
      }
      q("#validation-body").innerHTML = rows.length ? rows.join("") : '<tr><td colspan="3">No stages reported.</td></tr>';
      const warnings = result.warnings || [];
      q("#validation-warnings").textContent = warnings.length ? ("Warnings: " + warnings.join("; ")) : "";
    }

    async function loadThresholds() {
      try {
        const payload = await getJSON("/api/v1/settings/thresholds");
        const t = payload.data || {};
        q("#thresholds-body").innerHTML = Object.keys(t).sort().map((k) =>
          '<tr><th>' + esc(k) + '</th><td>' + esc(t[k]) + '</td></tr>').join("");
      } catch (e) {
        q("#thresholds-body").innerHTML = '<tr><td colspan="2">Failed: ' + esc(e.message) + '</td></tr>';
      }
    }

    async function loadHistory() {
      const tbody = q("#history-body");
      try {
        const payload = await getJSON("/api/v1/history?limit=50");
        const entries = payload.data || [];
        tbody.innerHTML = entries.length ? entries.map((en) =>
          '<tr><td>' + fmtTime(en.started_at) + '</td>' +
          '<td>' + esc(en.source) + '</td>' +
          '<td>' + en.duration_ms + ' ms</td>' +
          '<td>' + en.pad_count + '</td>' +
          '<td>' + en.well_count + '</td>' +
          '<td>' + en.synthetic_field_count + '</td>' +
          '<td>' + (en.error ? '<span class="pill bad">failed</span> <span class="mono">' + esc(en.error) + '</span>'
                             : '<span class="pill ok">ok</span>') + '</td></tr>').join("")
          : '<tr><td colspan="7">No load runs recorded yet.</td></tr>';
      } catch (e) {
        tbody.innerHTML = '<tr><td colspan="7">' + esc(e.message) + '</td></tr>';
      }
    }

    async function loadServices() {
      try {
        const payload = await getJSON("/api/v1/status/services");
        const services = (payload.services || {});
        const rows = Object.keys(services).sort().map((name) => {
          const svc = services[name] || {};
          const label = !svc.enabled ? "disabled" : svc.ok ? "ok" : "down";
          const cls = !svc.enabled ? "info" : svc.ok ? "ok" : "bad";
          const detail = Object.keys(svc).filter((k) => k !== "enabled" && k !== "ok")
            .map((k) => k + "=" + JSON.stringify(svc[k])).join(", ");
          return '<tr><td>' + esc(name) + '</td>' +
            '<td><span class="pill ' + cls + '">' + label + '</span></td>' +
            '<td class="mono">' + esc(detail) + '</td></tr>';
        });
        q("#services-body").innerHTML = rows.join("") || '<tr><td colspan="3">No services.</td></tr>';
        q("#services-json").textContent = JSON.stringify(payload, null, 2);
      } catch (e) {
        q("#services-body").innerHTML = '<tr><td colspan="3">' + esc(e.message) + '</td></tr>';
        q("#services-json").textContent = e.message;
      }
    }

    q("#refresh-btn").addEventListener("click", loadWellPads);
    q("#source-select").addEventListener("change", loadWellPads);
    q("#save-settings-btn").addEventListener("click", saveSettings);
    q("#validate-btn").addEventListener("click", runValidation);

    setInterval(() => {
      if (q("#auto-refresh").checked && q("#tab-overview").classList.contains("active")) {
        loadWellPads();
      }
    }, 30000);

    loadWellPads();
  </script>
</body>
</html>
`
