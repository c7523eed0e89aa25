// Package invocation tracks one logical unit of work: its identifier, start
// time, elapsed-time checkpoints and caller metadata.
//
// A Manager holds a single current Context (last writer wins). Callers that
// run overlapping invocations should hold Contexts explicitly, or carry them
// through a context.Context with WithContext.
package invocation
