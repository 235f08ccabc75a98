// Package schema validates the structural shape of parsed CSV input
// before any quality rule runs.
//
// Structural problems are fatal: a table that is empty, wider or longer
// than the configured limits, or missing required columns cannot be
// analyzed at all, so validation returns a model.StructuralError instead
// of producing per-cell issues. Checks run in a fixed order and the
// first failure wins, which keeps the reported error stable for a given
// input regardless of how many problems it has.
package schema
