// Package dev provides the fixture inspector server.
//
// The server loads the project's fixtures, runs them on request and pushes
// results to connected browsers over a WebSocket. With watching enabled,
// edited fixture files are reloaded and re-run automatically.
//
// # Routes
//
//	GET  /                        results page
//	GET  /healthz                 liveness
//	GET  /metrics                 Prometheus metrics
//	GET  /ws                      live events
//	GET  /api/fixtures            loaded fixtures
//	GET  /api/fixtures/{name}     one fixture and its latest result
//	POST /api/fixtures/{name}/run run one fixture
//	POST /api/reload              reload fixtures from disk
//	GET  /api/runs                recent runs, newest first
//	POST /api/runs                run every fixture
//	GET  /api/runs/{id}           one run
//
// # Event Protocol
//
// Events are JSON-encoded:
//
//	{"type": "run", "run": "01J...", "passed": 3, "failed": 1}
//	{"type": "fixtures", "count": 4}
//	{"type": "error", "error": "..."}
package dev
