// Package diag defines the diagnostic model shared by the lowering pipeline.
//
// Diagnostic is the central record: severity, a compact numeric code with a
// stable string form, a message, the function it was found in, and an
// optional primary span plus notes. Producers emit through a Reporter so
// storage stays decoupled; BagReporter aggregates into a Bag, which supports
// sorting, deduplication and merging of per-function bags.
//
// The model is deliberately data-only and deterministic: the driver merges
// bags from parallel workers and the CLI renders them, so nothing here may
// perform IO or depend on emission order.
package diag
