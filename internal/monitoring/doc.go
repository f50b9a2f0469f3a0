// Package monitoring exposes Prometheus metrics for the chat client and
// the simulated backend. Collectors are registered on an injected
// prometheus.Registerer so tests can use a fresh registry.
package monitoring
