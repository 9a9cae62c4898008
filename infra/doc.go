// Package infra holds the adapters behind the core interfaces: the sqlite
// fleet store, snapshot files, Prometheus and InfluxDB sinks, the MQTT
// publisher and Sentry reporting. Nothing in core imports these packages.
package infra
