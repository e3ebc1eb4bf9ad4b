package templates

import (
	"context"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"github.com/csg33k/brq-ebookings/internal/domain"
)

var funcs = template.FuncMap{
	"money":       money,
	"itoa":        itoa,
	"stamp":       stamp,
	"modifiers":   modifiers,
	"resultClass": resultClass,
	"seq":         func(i int) int { return i + 1 },
}

var baseTmpl = template.Must(template.New("base").Funcs(funcs).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>BRQ eBookings</title>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<link href="https://fonts.googleapis.com/css2?family=IBM+Plex+Mono:wght@400;600&family=IBM+Plex+Sans:wght@400;600&display=swap" rel="stylesheet">
<style>
  :root { --ink: #0d1117; --paper: #f5f0e8; --ledger: #e8e0cc; --accent: #c0392b; --accent2: #2c6e49; --muted: #6b5e4e; --rule: #b8a898; }
  * { box-sizing: border-box; }
  body { background: var(--paper); color: var(--ink); font-family: 'IBM Plex Sans', sans-serif; margin: 0; }
  .mono { font-family: 'IBM Plex Mono', monospace; }
  .card { background: rgba(255,255,255,0.7); border: 1px solid var(--ledger); border-left: 4px solid var(--ink); padding: 24px; margin-bottom: 24px; }
  .section-header { font-family: 'IBM Plex Mono', monospace; font-size: 0.7rem; font-weight: 600; letter-spacing: 0.18em; text-transform: uppercase; color: var(--muted); border-bottom: 1px solid var(--rule); padding-bottom: 4px; margin-bottom: 16px; }
  table { width: 100%; border-collapse: collapse; font-size: 0.8rem; }
  th { text-align: left; font-family: 'IBM Plex Mono', monospace; font-size: 0.65rem; color: var(--muted); border-bottom: 2px solid var(--ink); padding: 4px; }
  td { border-bottom: 1px solid var(--ledger); padding: 4px; }
  .btn { font-family: 'IBM Plex Mono', monospace; font-weight: 600; font-size: 0.8rem; padding: 8px 18px; border: 2px solid var(--ink); background: var(--ink); color: white; cursor: pointer; text-transform: uppercase; }
  .badge { font-family: 'IBM Plex Mono', monospace; font-size: 0.65rem; font-weight: 600; padding: 2px 6px; }
  .badge-ok { color: var(--accent2); border: 1px solid var(--accent2); }
  .badge-error { color: var(--accent); border: 1px solid var(--accent); }
  input, textarea { width: 100%; font-family: 'IBM Plex Mono', monospace; border: 1px solid var(--rule); border-bottom: 2px solid var(--ink); padding: 6px 8px; }
</style>
</head>
<body>
<div style="max-width:1100px;margin:0 auto;padding:32px 24px;">
<h1 class="mono" style="font-size:1.6rem;margin:0 0 24px;"><a href="/" style="color:inherit;text-decoration:none;">BRQ eBookings</a></h1>
{{template "content" .}}
</div>
</body>
</html>`))

var indexTmpl = template.Must(template.Must(baseTmpl.Clone()).Parse(`
{{define "content"}}
<div class="card">
  <div class="section-header">Upload BRQ File</div>
  <form hx-post="/brq" hx-encoding="multipart/form-data" hx-target="body">
    <label class="section-header" for="name">File name</label>
    <input id="name" type="text" name="name" placeholder="buyer@agency.com_Weekly-Request-00001234.brq" required>
    <label class="section-header" for="file">File</label>
    <input id="file" type="file" name="file" required>
    <button class="btn" type="submit" style="margin-top:12px;">Ingest</button>
  </form>
</div>
<div class="card">
  <div class="section-header">Documents</div>
  {{if .}}
  <table>
    <tr><th>ID</th><th>Request</th><th>File</th><th>Agency</th><th>Details</th><th>Result</th><th>Received</th></tr>
    {{range .}}
    <tr>
      <td class="mono"><a href="/brq/{{itoa .ID}}/view">{{.ID}}</a></td>
      <td class="mono">{{.RequestID}}</td>
      <td>{{.FileName}}</td>
      <td>{{.AgencyName}}</td>
      <td class="mono">{{.DetailCount}}</td>
      <td><span class="{{resultClass .Result}}">{{.Result}}</span></td>
      <td class="mono">{{stamp .CreatedAt}}</td>
    </tr>
    {{end}}
  </table>
  {{else}}
  <p>No documents yet.</p>
  {{end}}
</div>
{{end}}`))

var detailTmpl = template.Must(template.Must(baseTmpl.Clone()).Parse(`
{{define "content"}}
{{$d := .Doc}}
<div class="card">
  <div class="section-header">{{$d.File.Name}}</div>
  <p class="mono">Correlation {{$d.CorrelationID}} · Request {{$d.File.RequestID}} · From {{$d.File.FromEmail}}</p>
  <p>{{$d.Document.Header.AgencyName}} → {{$d.Document.Header.NetworkName}} ({{$d.Document.Header.NetworkId}})</p>
  <p><span class="{{resultClass $d.Validation.Result}}">{{$d.Validation.Result}}</span></p>
  {{range $d.Validation.Details}}{{if .Msg}}<pre class="mono">{{.RuleName}}: {{.Msg}}</pre>{{end}}{{end}}
  {{range $d.Validation.Messages}}<p>{{.}}</p>{{end}}
  <a class="btn" href="/brq/{{itoa $d.ID}}/summary.pdf">Summary PDF</a>
  <a class="btn" href="/brq/{{itoa $d.ID}}">JSON</a>
</div>
<div class="card">
  <div class="section-header">Details</div>
  <table>
    <tr><th>#</th><th>Station</th><th>W/C</th><th>Days</th><th>Time</th><th>Size</th><th>Rate</th><th>Modifiers</th></tr>
    {{range $i, $x := $d.Document.Details}}
    <tr>
      <td class="mono">{{seq $i}}</td><td>{{$x.StationId}}</td><td class="mono">{{$x.WCDate}}</td>
      <td class="mono">{{$x.RequestedDay}}</td><td class="mono">{{$x.RequestedTime}}</td>
      <td class="mono">{{$x.RequestedSize}}</td><td class="mono">{{money $x.RequestedGrossRate}}</td>
      <td class="mono">{{modifiers $x.BookingModifiers}}</td>
    </tr>
    {{end}}
  </table>
</div>
<div class="card">
  <div class="section-header">Runs</div>
  <table>
    <tr><th>Stage</th><th>Status</th><th>Detail</th><th>At</th></tr>
    {{range .Runs}}<tr><td>{{.Stage}}</td><td>{{.Status}}</td><td>{{.Detail}}</td><td class="mono">{{stamp .CreatedAt}}</td></tr>{{end}}
  </table>
</div>
<div class="card">
  <div class="section-header">Artifacts</div>
  <ul class="mono">{{range .Artifacts}}<li>{{.Key}} <small>({{.ContentType}})</small></li>{{end}}</ul>
</div>
{{end}}`))

// Index lists stored documents with an upload form.
func Index(docs []domain.DocumentSummary) templ.Component {
	return component(indexTmpl, docs)
}

// Detail shows one document with its runs and artifacts.
func Detail(d *domain.StoredDocument, runs []domain.Run, artifacts []domain.Artifact) templ.Component {
	return component(detailTmpl, struct {
		Doc       *domain.StoredDocument
		Runs      []domain.Run
		Artifacts []domain.Artifact
	}{d, runs, artifacts})
}

func component(t *template.Template, data any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return t.Execute(w, data)
	})
}
