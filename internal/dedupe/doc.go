// Package dedupe finds exact and near duplicate records in a table.
//
// Detection runs in two passes over a canonical signature built from
// the identifying columns. The exact pass groups rows whose signatures
// hash identically. The near pass compares the remaining rows pairwise
// with a normalized edit distance and unions pairs above the similarity
// threshold into groups. Rows claimed by an exact group never appear in
// a near group, so the two result sets are disjoint by construction.
//
// The pairwise pass is quadratic over candidate rows. That is
// acceptable here because table size is capped upstream; inputs large
// enough to make it hurt are rejected before detection starts.
package dedupe
