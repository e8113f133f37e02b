// Package sqlite provides the ingestion catalog and scheduler state on SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database connection serves:
//
//   - Catalog: ingested documents, chunk texts and ingestion runs
//   - SchedulerStore: the refresh task and its run history
//
// The catalog is bookkeeping only. Answers are retrieved from the vector
// index, never from this database.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// The database lives at <data dir>/catalog.db.
package sqlite
