/*
Package observability provides lifecycle hooks for monitoring the panmirror converter.

Metrics exposes Prometheus collectors fed by domain.LifecycleHooks, and LoggingHooks
writes the same events to a structured logger. Both can be combined with
domain.LifecycleHooks.Merge.
*/
package observability
