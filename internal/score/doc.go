// Package score aggregates detected issues into per-column counts,
// per-record severities, and an overall severity.
//
// Everything here is a pure fold over the issue list: a table lookup
// plus max, nothing else. Severity already rides on each issue, so the
// scorer never re-derives it and never disagrees with the detectors.
package score
