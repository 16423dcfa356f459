package httpapi

import "net/http"

func (s *Server) handleDemo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	html := `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8"/>
  <meta name="viewport" content="width=device-width, initial-scale=1"/>
  <title>str-analyzer — demo</title>
  <style>
    body { font-family: system-ui, -apple-system, Segoe UI, Roboto, Arial, sans-serif; margin: 16px; }
    textarea { width: 100%; min-height: 260px; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, monospace; }
    button { padding: 10px 14px; font-size: 16px; }
    pre { white-space: pre-wrap; word-wrap: break-word; background: #f6f6f6; padding: 12px; border-radius: 10px; }
    .cols { display: grid; gap: 12px; grid-template-columns: 1fr; }
    @media (min-width: 900px) { .cols { grid-template-columns: 1fr 1fr; } }
    .card { border: 1px solid #e6e6e6; border-radius: 12px; padding: 12px; }
    .muted { color: #666; font-size: 14px; }
    .row { display: flex; gap: 8px; flex-wrap: wrap; align-items: center; }
  </style>
</head>
<body>
  <h2>str-analyzer — demo</h2>
  <div class="muted">Server: <code>` + r.Host + `</code></div>

  <div class="cols" style="margin-top:12px;">
    <div class="card">
      <div><b>Request (JSON)</b></div>
      <textarea id="payload"></textarea>
      <div class="row" style="margin-top:10px;">
        <button id="btnReport">POST /report</button>
        <button id="btnAnalysis">POST /analysis</button>
        <button id="btnZones">GET /zones</button>
      </div>
    </div>
    <div class="card">
      <div><b>Response</b></div>
      <pre id="out">…</pre>
    </div>
  </div>

<script>
const defaultPayload = {
  title: "Navigli, Milan",
  costs: {
    monthly_rent: 1200, condo_fees: 150, utilities: 80, wifi: 30,
    cleaning_per_stay: 60, supplies: 50, insurance: 40,
    property_management_percent: 0.10
  },
  market: { avg_price_per_night: 85, occupancy_rate: 0.70 },
  multipliers: [0.7, 0.85, 1.0, 1.15]
};

const ta = document.getElementById("payload");
const out = document.getElementById("out");
ta.value = JSON.stringify(defaultPayload, null, 2);

async function call(method, path, body) {
  out.textContent = "…";
  try {
    const opts = { method: method, headers: {"Content-Type": "application/json"} };
    if (body !== undefined) opts.body = body;
    const res = await fetch(path, opts);
    out.textContent = await res.text();
  } catch (e) {
    out.textContent = "Error: " + e.message;
  }
}

function payload() {
  try { return JSON.stringify(JSON.parse(ta.value)); } catch (e) {
    out.textContent = "Invalid JSON: " + e.message;
    return null;
  }
}

document.getElementById("btnReport").addEventListener("click", () => { const p = payload(); if (p) call("POST", "/report", p); });
document.getElementById("btnAnalysis").addEventListener("click", () => { const p = payload(); if (p) call("POST", "/analysis", p); });
document.getElementById("btnZones").addEventListener("click", () => call("GET", "/zones?limit=50"));
</script>
</body>
</html>`

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(html))
}
