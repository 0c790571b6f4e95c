// Package metrics provides the observability hooks of the dev server.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metric calls never need nil checks:
//
//	resolver := router.NewResolver(logger).WithRecorder(recorder)
//
// PrometheusRecorder is activated by `docserve serve --metrics`, which also mounts
// HTTPHandler at /metrics.
package metrics
