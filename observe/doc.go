// Package observe provides tracing, metrics and structured logging for
// dispatched cloud operations.
//
// It is a pure instrumentation library: no transport and no I/O beyond
// exporter setup. The dispatcher wraps each logical operation in a
// [Middleware]; every component defaults to a no-op when not configured.
package observe
