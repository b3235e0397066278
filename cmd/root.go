// Package cmd implements the CLI commands for cardpipe using Cobra.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

var rootCmd = &cobra.Command{
	Use:   "cardpipe",
	Short: "cardpipe — extract structured credit-card product data from bank pages",
	Long: `cardpipe renders a bank page in a headless browser, follows the links
worth following, and asks a structuring model to turn the text into two
JSON records per card.

Usage:
  cardpipe extract <url> [flags]`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
