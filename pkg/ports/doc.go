/*
Package ports defines the driven ports (interfaces) for the flow editor.

These interfaces decouple the editing core from external implementations,
allowing the editor to work with various storage backends, document sources,
and lock managers.

# Key Interfaces

  - FlowStore: Responsible for persisting and loading flow specs.
  - FlowSource: Responsible for reading flow documents from read-only backends (e.g., Loam or a directory).
  - DistributedLocker: Provides distributed locking for handling concurrent flow edits.
*/
package ports
