package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satonodoka/herp-recommender/internal/audit"
	"github.com/satonodoka/herp-recommender/internal/portal"
	"github.com/satonodoka/herp-recommender/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that stages upstream payloads and resume documents and executes recommendation runs against the live portal.`,
	RunE:  runServe,
}

var (
	serveConfigPath string
	servePort       int
	serveVerbose    bool
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().BoolVarP(&serveVerbose, "verbose", "v", false, "Print detailed debug information")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := newLogger(serveVerbose)

	cfg, err := loadConfig(serveConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	writer, err := audit.NewWriter(cfg.AuditDir)
	if err != nil {
		return err
	}

	srv, err := server.New(server.Options{
		Config: cfg,
		Audit:  writer,
		NewSession: func(_ context.Context) (server.Session, error) {
			herp := portal.NewHERP(portal.Options{
				URL:               cfg.PortalURL,
				NavigationTimeout: cfg.NavigationTimeout(),
				SettleDelay:       cfg.SettleDelay(),
				Headless:          cfg.IsHeadless(),
			}, log)
			// The session outlives the request that opened it.
			if err := herp.Start(context.Background()); err != nil {
				return nil, err
			}
			return herp, nil
		},
		Log: log,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
