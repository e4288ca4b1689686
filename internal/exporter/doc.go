// Package exporter compiles a Document's alive shape forest into the
// renderer-agnostic domain.Animation tree and caches the result on the
// Document until the next edit.
//
// Only alive roots become top-level groups. Group shapes compile their alive
// children followed by a transform; primitives compile to exactly three
// elements: geometry, stroke, fill. Each property is static when the shape
// has no keyframes, otherwise a time-sorted track where every keyframe value
// is the base props overlaid with that keyframe's override.
package exporter
