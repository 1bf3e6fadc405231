// Package metrics records build and query metrics.
//
// Components receive a Recorder by injection. NoopRecorder is the default
// and does nothing; PrometheusRecorder exports to a Prometheus registry that
// HTTPHandler serves.
package metrics
