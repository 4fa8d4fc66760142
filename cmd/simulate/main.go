// Package main runs one scenario from the command line and prints the result
// as JSON, Markdown or CSV.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run a net worth scenario",
	Long: `Run the Monte Carlo scenario engine once: the requested regime plus the
balanced and bull reference runs, with a coach narrative.

Examples:
  simulate --monthly-investment 800 --extra-loan-payment 100 --regime bear
  simulate --horizon-years 25 --seed 42 --format markdown --output scenario.md
  simulate --regime crypto_winter --format csv`,
	SilenceUsage: true,
	RunE:         runSimulate,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("simulate failed")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
