// Package detect runs per-cell quality rules over a validated table.
//
// Each column is bound to one rule through its column type, so a cell
// yields at most one issue and the output is fully determined by the
// input. Empty cells short-circuit: a missing value in a required
// column is reported as such and never reaches a format rule, because
// "the value is absent" and "the value is malformed" are different
// cleanup actions.
//
// Design decision: Rules receive a trimmed, non-empty value rather than
// the raw cell because:
//  1. Whitespace-only cells mean the same thing as empty cells to every
//     downstream consumer, so the distinction would only create noise.
//  2. Trimming once in the coordinator keeps the rules free of
//     normalization concerns and trivially testable.
//  3. It guarantees the missing-value check and the format checks can
//     never both fire for one cell.
package detect
