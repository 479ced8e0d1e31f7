// Package trace provides leveled execution tracing for the lowering
// pipeline.
//
// Events are emitted through a Tracer attached to the context. Spans give
// RAII-style begin/end pairs; the driver opens a span per module, per
// function and per phase, so a trace of a large module stays navigable.
//
// Three storage modes exist: stream (write through to a file or stderr),
// ring (keep the last N events in memory, dumped on crash), and both.
// Output formats: human-readable text and newline-delimited JSON.
package trace
