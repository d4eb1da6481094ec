package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/satonodoka/herp-recommender/internal/audit"
	"github.com/satonodoka/herp-recommender/internal/config"
	"github.com/satonodoka/herp-recommender/internal/pdftext"
	"github.com/satonodoka/herp-recommender/internal/pipeline"
	"github.com/satonodoka/herp-recommender/internal/portal"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run one recommendation end-to-end",
	Long: `Runs the full flow against the live portal: extract the job title from the
upstream payload, match it against the posting list, open the recommendation
form, decode the resume, and map every required field.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runRecommendation,
}

var (
	runConfigPath string
	runPayload    string
	runResume     string
	runPortalURL  string
	runAuditDir   string
	runHeadless   bool
	runVerbose    bool
)

func init() {
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	runCommand.Flags().StringVarP(&runPayload, "payload", "p", "", "Path to the upstream JSON payload (required)")
	runCommand.Flags().StringVarP(&runResume, "resume", "r", "", "Path to the candidate's resume PDF (required)")
	runCommand.Flags().StringVar(&runPortalURL, "portal-url", "", "Portal listing page URL")
	runCommand.Flags().StringVar(&runAuditDir, "audit-dir", "", "Directory for per-run audit records")
	runCommand.Flags().BoolVar(&runHeadless, "headless", true, "Run the browser headless")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	_ = runCommand.MarkFlagRequired("payload")
	_ = runCommand.MarkFlagRequired("resume")

	rootCmd.AddCommand(runCommand)
}

func runRecommendation(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	log := newLogger(runVerbose)

	cfg, err := loadConfig(runConfigPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("portal-url") {
		cfg.PortalURL = runPortalURL
	}
	if cmd.Flags().Changed("audit-dir") {
		cfg.AuditDir = runAuditDir
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = &runHeadless
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	payload, err := os.ReadFile(runPayload)
	if err != nil {
		return fmt.Errorf("failed to read payload: %w", err)
	}

	writer, err := audit.NewWriter(cfg.AuditDir)
	if err != nil {
		return err
	}

	herp := portal.NewHERP(portal.Options{
		URL:               cfg.PortalURL,
		NavigationTimeout: cfg.NavigationTimeout(),
		SettleDelay:       cfg.SettleDelay(),
		Headless:          cfg.IsHeadless(),
	}, log)
	if err := herp.Start(ctx); err != nil {
		return err
	}
	defer herp.Close()

	result, runErr := pipeline.Run(ctx, pipeline.RunOptions{
		UpstreamJSON: payload,
		ResumePath:   runResume,
		Portal:       herp,
		Extractor:    pipeline.ExtractorFunc(pdftext.Extract),
		Audit:        writer,
		Log:          log,
		OnProgress:   printProgress,
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	fmt.Println(string(out))

	return runErr
}

func loadConfig(path string) (*config.Config, error) {
	cfg := config.New()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func printProgress(ev pipeline.ProgressEvent) {
	marker := map[string]string{
		pipeline.LevelInfo:    "•",
		pipeline.LevelSuccess: "✓",
		pipeline.LevelWarning: "!",
		pipeline.LevelError:   "✗",
	}[ev.Level]
	fmt.Fprintf(os.Stderr, "%s [%s] %s\n", marker, ev.Step, ev.Message)
}
