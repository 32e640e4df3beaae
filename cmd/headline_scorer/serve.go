package main

import (
	"fmt"

	"github.com/jonathan/headline-scorer/internal/config"
	"github.com/jonathan/headline-scorer/internal/scoring"
	"github.com/jonathan/headline-scorer/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort   int
	serveConfig string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long:  `Start an HTTP server with the headline editing page and a JSON API for scoring headlines.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().StringVar(&serveConfig, "config", "", "Path to a JSON config file")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadServeConfig()
	if err != nil {
		return err
	}

	scorer := scoring.NewClient(&scoring.Options{
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.TimeoutDuration(),
	})

	srv, err := server.New(cfg, scorer)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(cmd.Context())
}

// loadServeConfig resolves the server configuration; an explicit --port wins
// over the file and the environment.
func loadServeConfig() (*config.Config, error) {
	cfg, err := config.Load(serveConfig)
	if err != nil {
		return nil, err
	}
	if servePort != 0 {
		cfg.Port = servePort
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
