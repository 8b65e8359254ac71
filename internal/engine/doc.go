// Package engine implements the screen graph core: deterministic ID
// generation, pure mutation helpers, and the normalization pipeline
// (auto-finalization, branch auto-routing, terminal/route reconciliation and
// derived-view recomputation). Every function here is a value-in/value-out
// transform over domain.Spec snapshots; there is no shared mutable state.
package engine
