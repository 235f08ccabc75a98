// Package main provides the entry point for the crmscan CLI.
//
// crmscan runs deterministic data-quality checks on CRM CSV exports.
// It validates table structure, detects field-level issues and duplicate
// records, scores their severity, and assembles a quality report.
//
// Usage:
//
//	crmscan scan leads.csv
//	crmscan scan --sample
//	crmscan serve --addr :8080
//
// See --help for all available options.
package main

// main is the entry point for crmscan.
func main() {
	Execute()
}
