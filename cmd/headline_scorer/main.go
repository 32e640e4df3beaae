// Package main provides the entry point for the headline scorer web server and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "headline_scorer",
	Short: "Headline Sentiment Scorer",
	Long:  "Headline Sentiment Scorer collects news headlines and sends them to a scoring backend that labels each one with a sentiment.",

	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
