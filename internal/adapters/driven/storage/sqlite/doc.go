// Package sqlite keeps the durable cross-case records in a single SQLite
// database using modernc.org/sqlite, a pure Go driver that needs no CGO.
//
// One connection backs three stores:
//
//   - CaseLog: append-only case fingerprints behind batch analytics
//   - EvidenceLedger: every evidence record produced, keyed by run
//   - SchedulerStore: watch-mode task state and run history
//
// # Schema
//
// Versioned migrations live in migrations/ as NNN_name.up.sql files and are
// applied in order on open. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default the database is ~/.kyc/data/kyc.db.
package sqlite
