// Package metrics records batch run statistics in a private Prometheus
// registry and exports them as a node_exporter textfile.
package metrics
