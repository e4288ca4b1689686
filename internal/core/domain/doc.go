// Package domain defines the core entities of the Glaximini editor.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: the shared animation aggregate (shape forest + timeline)
//   - Shape: a group or primitive node carrying props and keyframes
//   - Keyframe: a timestamped partial property override
//   - Session: one realtime connection bound to a user
//   - Command: the closed set of edit commands
//   - Animation: the renderer-agnostic compiled export tree
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Tree Invariants
//
// Shapes are never removed from a Document by editing, only tombstoned.
// Every mutation that changes a tombstone or a parent link recomputes the
// derived ParentDeleted flag of the affected subtree, so
// Alive() == !Deleted && !ParentDeleted holds after every call returns.
package domain
