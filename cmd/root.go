package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var flagFeeds string

var rootCmd = &cobra.Command{
	Use:   "clearfeed",
	Short: "RSS aggregator with AI de-sensationalized headlines",
	Long:  "clearfeed aggregates RSS feeds by category, optionally rewrites articles into neutral language, and serves them over a JSON API.",
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagFeeds, "feeds", "", "path to a YAML source table (overrides FEEDS_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(categoriesCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
