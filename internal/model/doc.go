// Package model defines the core data structures used throughout crmscan.
//
// This package contains the following main types:
//   - Table / Record: an immutable, validated snapshot of a CSV export
//   - Issue: a single detected data-quality defect tied to a row
//   - DuplicateGroup: rows considered duplicates of one another
//   - QualityReport: the assembled analysis result handed to consumers
//   - StructuralError: a fatal precondition failure of the input table
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (schema, detect, dedupe, score, report) need
// to use these types, so centralizing them prevents import cycles.
//
// The models are designed to serialize to JSON with stable field names and
// stable ordering, so two runs over the same input produce byte-identical
// reports.
package model
