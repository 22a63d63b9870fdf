package dev

import (
	"html/template"
	"net/http"
)

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>gaugekit · {{.Project}}</title>
<style>
body { font-family: ui-monospace, monospace; margin: 2em; background: #111; color: #ddd; }
table { border-collapse: collapse; }
td, th { padding: 4px 12px; text-align: left; border-bottom: 1px solid #333; }
.pass { color: #5f5; } .fail { color: #f55; } .none { color: #888; }
</style>
</head>
<body>
<h1>{{.Project}}</h1>
<p>{{len .Fixtures}} fixtures · <button onclick="fetch('/api/runs', {method: 'POST'})">run all</button></p>
<table>
<tr><th>fixture</th><th>status</th><th>refs</th><th>mount</th></tr>
{{range .Fixtures}}
<tr>
<td>{{.Name}}</td>
{{with .Last}}
<td class="{{if .Passed}}pass{{else}}fail{{end}}">{{if .Passed}}pass{{else}}fail{{end}}</td>
<td>{{.Summary}}</td><td>{{.Mount}}</td>
{{else}}
<td class="none">not run</td><td></td><td></td>
{{end}}
</tr>
{{end}}
</table>
{{.Script}}
</body>
</html>
`))

// ClientScript reconnects to /ws and reloads the page when fixtures change
// or a run finishes.
const ClientScript = template.HTML(`
<script>
(function() {
    'use strict';

    var delay = 1000;

    function connect() {
        var protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
        var ws = new WebSocket(protocol + '//' + location.host + '/ws');

        ws.onopen = function() { delay = 1000; };

        ws.onmessage = function(e) {
            var msg;
            try {
                msg = JSON.parse(e.data);
            } catch (err) {
                return;
            }
            if (msg.type === 'error') {
                console.error('[gaugekit]', msg.error);
                return;
            }
            location.reload();
        };

        ws.onclose = function() {
            setTimeout(function() {
                delay = Math.min(delay * 2, 30000);
                connect();
            }, delay);
        };
    }

    connect();
})();
</script>
`)

type indexData struct {
	Project  string
	Fixtures []FixtureInfo
	Script   template.HTML
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	names := s.Names()
	data := indexData{Project: s.config.Name, Script: ClientScript}
	if data.Project == "" {
		data.Project = "fixtures"
	}
	s.mu.RLock()
	for _, name := range names {
		data.Fixtures = append(data.Fixtures, s.info(s.fixtures[name]))
	}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		s.logger.Error("index render failed", "error", err)
	}
}
