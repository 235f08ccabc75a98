// Package config provides configuration structures and utilities for crmscan.
// It defines the analysis options for checking CRM tables, duplicate
// detection tuning, and report generation preferences.
package config
