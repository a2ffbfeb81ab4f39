package report

// ReportTemplate is the HTML page wrapping a rendered report. The body is
// markdown converted to HTML; charts are inline SVG.
const ReportTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root {
    --bg: #ffffff;
    --text: #1a1a2e;
    --muted: #6b7280;
    --border: #e5e7eb;
    --accent: #2563eb;
    --red: #dc2626;
    --section-bg: #f8fafc;
  }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body {
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
    color: var(--text);
    background: var(--bg);
    line-height: 1.6;
    max-width: 1100px;
    margin: 0 auto;
    padding: 20px;
  }
  h1, h2, h3 { font-weight: 600; }
  h1 { font-size: 1.5rem; margin-bottom: 4px; color: var(--accent); }
  h2 { font-size: 1.2rem; margin: 24px 0 12px; padding-bottom: 6px; border-bottom: 2px solid var(--accent); }
  p, ul { margin: 6px 0; }
  li { margin-left: 20px; }
  .muted { color: var(--muted); font-size: 0.85rem; }

  /* Header */
  .header {
    display: flex;
    justify-content: space-between;
    align-items: flex-start;
    border-bottom: 3px solid var(--accent);
    padding-bottom: 12px;
    margin-bottom: 16px;
  }
  .header-right { text-align: right; }
  .ticker-badge {
    display: inline-block;
    background: var(--accent);
    color: white;
    padding: 2px 12px;
    border-radius: 4px;
    font-weight: 700;
    font-size: 1.1rem;
    margin-right: 8px;
  }

  /* Tables */
  table { width: 100%; border-collapse: collapse; margin: 8px 0 16px; font-size: 0.85rem; display: block; overflow-x: auto; }
  th { background: var(--section-bg); padding: 6px 8px; font-weight: 600; white-space: nowrap; }
  td { padding: 6px 8px; border-bottom: 1px solid var(--border); white-space: nowrap; font-variant-numeric: tabular-nums; }

  /* Chart container */
  .chart-grid { display: grid; grid-template-columns: 1fr; gap: 12px; margin: 12px 0; }
  .chart-container { overflow-x: auto; }
  .chart-container svg { max-width: 100%; height: auto; }

  .warning { border-left: 4px solid var(--red); background: #fef2f2; padding: 8px 12px; border-radius: 4px; }

  /* Footer */
  .footer {
    margin-top: 30px;
    padding-top: 12px;
    border-top: 2px solid var(--border);
    font-size: 0.8rem;
    color: var(--muted);
    text-align: center;
  }

  @media print {
    body { max-width: 100%; padding: 10px; }
    table, .chart-container { page-break-inside: avoid; }
  }
</style>
</head>
<body>

<div class="header">
  <div class="header-left">
    <h1>{{range .Tickers}}<span class="ticker-badge">{{.}}</span>{{end}}</h1>
    {{if .Window}}<p class="muted">{{.Window}}</p>{{end}}
  </div>
  <div class="header-right">
    <p class="muted">{{.GeneratedAt}}</p>
    <p class="muted">{{.Author}}</p>
    {{if .RunID}}<p class="muted">run {{.RunID}}</p>{{end}}
  </div>
</div>

{{if .WarningCount}}
<p class="warning">{{.WarningCount}} data issue(s), see Diagnostics.</p>
{{end}}

{{if .Charts}}
<div class="chart-grid">
  {{range .Charts}}<div class="chart-container">{{.}}</div>{{end}}
</div>
{{end}}

<div class="content">
{{.Body}}
</div>

<div class="footer">
  Figures as reported in the source statements. Missing values are shown as "-".
</div>

</body>
</html>
`
