// Package sqlitemigrate evolves a SQLite schema through an ordered catalog of
// versioned steps.
//
// A Catalog is an immutable, strictly ascending list of Steps. Each step
// carries exactly one Effect: DDL (CreateTable, AddColumn, CreateIndex,
// CreateTrigger), Seed (insert-if-absent rows keyed by primary key) or
// Backfill (predicate-restricted UPDATE). The Runner records applied versions
// in the schema_migrations ledger and applies each pending step together
// with its ledger row in one transaction, so a step is either fully visible
// or not at all.
//
// Effects are additive only. There is no drop or rename variant; a column
// that changes meaning is introduced by an AddColumn step followed by a
// separate Backfill step.
package sqlitemigrate
