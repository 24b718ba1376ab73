package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "meridian",
	Short: "Meridian - airline tax rule-evaluation service",
	Long: `Meridian evaluates taxes against itineraries and reports which tax
records remain payable after all configured rules have been applied.

It exposes an HTTP endpoint for batch evaluation, providing:
  - Customer-based tax exemptions
  - Ticket value limits with currency conversion
  - Optional-service value limits
  - Service and baggage tax matching
  - Hot-reloadable reference data (customers, rulesets, bank selling rates)`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
