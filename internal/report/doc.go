// Package report assembles detector outputs into a QualityReport and
// writes it in JSON, Markdown, or plain-text form.
//
// Assembly is a pure merge: the assembler concatenates the issues the
// detectors produced, attaches the duplicate groups, and fills in the
// aggregate fields. It performs no detection of its own, so the report
// always equals the sum of its inputs.
//
// Writers never include timestamps or other run-specific metadata in
// the report body. Two runs over the same input must produce
// byte-identical output, which makes reports diffable and cacheable.
package report
