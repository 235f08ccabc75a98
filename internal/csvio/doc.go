// Package csvio reads raw CSV input into a header row and data rows.
//
// The package deliberately knows nothing about CRM semantics. It turns
// bytes into strings and reports unreadable input as a structural error;
// deciding whether the parsed shape is an acceptable table is the job of
// the schema package.
//
// Design decision: We slurp the whole input before parsing because:
//  1. Encoding validation needs the complete byte stream, and a partial
//     UTF-8 check can pass on input that breaks mid-rune later.
//  2. Input size is bounded upstream (tables are capped at ten thousand
//     rows), so streaming buys nothing here.
//  3. A single read keeps the error surface small: the caller sees either
//     an I/O error or a structural error, never a half-parsed table.
package csvio
