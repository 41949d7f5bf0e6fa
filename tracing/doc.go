// Package tracing wraps OpenTelemetry so import and query paths can open
// spans without depending on the SDK directly. Until Init is called spans
// are no-ops.
package tracing
