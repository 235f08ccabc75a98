// Package server exposes the quality check pipeline over HTTP.
//
// The server is a thin, stateless host around the same pipeline the CLI
// runs: POST a CSV and receive the quality report as JSON. Nothing
// survives a request. There is no upload storage, no job queue, and no
// result cache, so two replicas behind a load balancer cannot disagree:
// every response is a function of the request body and the server's
// configuration alone.
//
// Endpoints:
//
//	POST /api/v1/quality-checks  analyze a CSV body or multipart upload
//	GET  /api/v1/sample          download the bundled sample CSV
//	GET  /healthz                liveness probe
//	GET  /metrics                Prometheus metrics
//
// The check endpoint accepts a raw text/csv body or a multipart form
// with a "file" field. The optional "profile" query parameter applies a
// named profile from the server's configuration file, and "explain=true"
// asks the configured explanation generator for narrative prose. Reports
// for structurally broken tables are refused with 422 and a machine
// readable error kind; malformed requests get 400.
package server
