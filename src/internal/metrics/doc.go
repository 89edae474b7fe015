// Package metrics collects per-run gauges and exports them as a node_exporter
// textfile.
package metrics
