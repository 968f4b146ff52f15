// Package store persists compiled saved queries in SQLite.
//
// Each saved query is one row in saved_queries. Tags, display fields and
// the expression tree are stored as JSON TEXT; the AQL string is stored
// as is so it can be read without decoding the tree.
//
// # Identity
//
//   - name is unique. Saving a name that exists replaces the row and bumps
//     its revision but keeps the original id.
//   - Lookups accept either the id or the name (case-insensitive).
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Schema changes are applied by PRAGMA user_version migrations in Open.
package store
