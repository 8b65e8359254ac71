// Package domain holds the core value types of the screen graph: screens,
// component blocks, branch rules and the Spec aggregate. Types here are plain
// data with value semantics; all behavior that enforces graph invariants
// lives in the engine.
package domain
