// Package sqlite stores documents in a single SQLite database using
// modernc.org/sqlite, a pure Go driver that needs no CGO.
//
// # Schema
//
//   - documents: timeline fields plus the Lottie export cached at last save
//   - shapes: one row per alive shape, unique per (document_id, public_id)
//   - keyframes: one row per keyframe, cascading with its shape
//   - user_documents: which users opened which documents, newest last
//
// The schema is managed through versioned migrations in migrations/, applied
// in order on open and recorded in schema_migrations.
//
// # Data Location
//
// By default the database is stored at ~/.glaximini/data/glaximini.db.
//
// # Transactions
//
// Transactions begin IMMEDIATE so concurrent saves wait on busy_timeout
// instead of failing when a read lock is upgraded.
package sqlite
