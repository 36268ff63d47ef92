// Package infra contains technical adapters: the zerolog logger, metrics
// sinks, the MQTT publisher and the Sentry monitor. These packages depend
// only on interfaces defined in the core packages.
package infra
