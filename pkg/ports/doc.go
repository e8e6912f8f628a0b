/*
Package ports defines the driven ports (interfaces) of the dashgrid engine.

These interfaces decouple the placement core from the collaborators it only
borrows: the component registry, persistence backends for layout snapshots,
distributed locking across replicas, and the platform acknowledgment signal fired
when a long-press activates.

# Key Interfaces

  - ComponentRegistry: resolves a component id to its descriptor, or absent.
  - SnapshotStore: persists and loads named layout snapshots.
  - DistributedLocker: coordinates snapshot writes across multiple instances.
  - Acknowledger: best-effort haptic-style feedback.
*/
package ports
