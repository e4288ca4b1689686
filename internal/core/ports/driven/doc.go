// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
//   - DocumentStore: relational persistence of documents, shapes, keyframes
//     and the user to document association
//   - IDCodec: public id obfuscation
//   - AnimationEncoder: delivery format for compiled exports
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
