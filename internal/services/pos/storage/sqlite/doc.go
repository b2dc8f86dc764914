// Package sqlite provides the SQLite-backed point-of-sale store.
//
// Open brings the database file up to the latest catalog version before the
// store is handed out, so every caller sees the same schema.
package sqlite
