/*
Package session implements editing-session management and persistence
orchestration.

It provides high-level abstractions for handling concurrent access to flow
specs across multiple replicas, integrating local mutexes with distributed
locking and long-term storage adapters.
*/
package session
