// Package main provides the entry point for the crmscan CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for crmscan.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crmscan",
		Short: "Data-quality checker for CRM CSV exports",
		Long: `crmscan runs deterministic data-quality checks on CRM CSV exports.

It validates the table structure, scans every record for missing values,
malformed emails and phone numbers, invalid monetary amounts, and
suspiciously short text, detects exact and near duplicate records, and
assembles everything into a severity-ranked quality report.

Detection never calls the network. The optional --explain flag asks an
external language model to describe the business impact of the detected
issues after the report is complete; a failed explanation never changes
the report.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
// It prints errors to stderr and exits with status 1 on failure.
func Execute() {
	// Explanation provider API keys (GROQ_API_KEY and friends) may live
	// in a local .env file. A missing file is the normal case.
	_ = godotenv.Load() //nolint:errcheck // .env is optional

	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
