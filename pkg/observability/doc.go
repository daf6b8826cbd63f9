/*
Package observability turns engine lifecycle events into Prometheus metrics and
structured log lines.

Metrics uses its own registry so several engines (or tests) never collide on
the default one. Mount Handler on /metrics.
*/
package observability
