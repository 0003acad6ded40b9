/*
Package observability turns router lifecycle events into metrics and audit logs.

Metrics registers Prometheus collectors on its own registry and exposes them
through Hooks, which plug into the router's lifecycle hooks. LogHooks writes one
structured log line per navigation event.
*/
package observability
