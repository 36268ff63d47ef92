// Package metrics defines the recorders used to observe simulations and
// optimizations. Sinks such as the Prometheus and InfluxDB implementations in
// infra/metrics are created from configuration through a factory registry;
// several configured sinks are combined into a MultiSink. Every sink records
// evaluations; the other recorder interfaces are optional and detected with a
// type assertion.
package metrics
