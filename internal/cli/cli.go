package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/troutline/stocking-events/internal/config"
	"github.com/troutline/stocking-events/internal/extract"
	"github.com/troutline/stocking-events/internal/logger"
	"github.com/troutline/stocking-events/internal/match"
	"github.com/troutline/stocking-events/internal/notify"
	"github.com/troutline/stocking-events/internal/pipeline"
	"github.com/troutline/stocking-events/internal/server"
	"github.com/troutline/stocking-events/internal/store"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfig  string
	flagFormat  string
	flagDryRun  bool
	flagVerbose bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "stocking-events",
		Short: "Track state fish-stocking reports and notify subscribers",
		Long: `Polls state wildlife agency stocking reports, normalizes them into
canonical events, and pushes notifications to subscribers whose filters match
newly discovered stockings.`,
	}

	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (built-in sources if omitted)")
	root.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	pollCmd := &cobra.Command{
		Use:   "poll",
		Short: "Run one poll cycle and print its summary",
		RunE:  runPoll,
	}
	pollCmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	pollCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print notifications instead of pushing them")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API and poll sources on a schedule",
		RunE:  runServe,
	}

	subscribeCmd := &cobra.Command{
		Use:   "subscribe",
		Short: "Register or replace a subscription",
		RunE:  runSubscribe,
	}
	subscribeCmd.Flags().StringVar(&flagToken, "token", "", "Push destination token (required)")
	subscribeCmd.Flags().StringSliceVar(&flagCounties, "county", nil, "County filter (repeatable; empty matches any)")
	subscribeCmd.Flags().StringSliceVar(&flagSpecies, "species", nil, "Species filter (repeatable; empty matches any)")
	subscribeCmd.Flags().StringSliceVar(&flagWaters, "water", nil, "Water filter (repeatable; empty matches any)")
	subscribeCmd.MarkFlagRequired("token")

	root.AddCommand(pollCmd, serveCmd, subscribeCmd)
	return root
}

var (
	flagToken    string
	flagCounties []string
	flagSpecies  []string
	flagWaters   []string
)

func loadConfig() (config.Config, error) {
	if flagConfig == "" {
		return config.Default(), nil
	}
	return config.Load(flagConfig)
}

func setupLogging() {
	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	} else {
		logger.SetDefault(logger.New(logger.LevelInfo, os.Stderr))
	}
}

// buildPipeline assembles the poll pipeline from config. The caller owns
// the returned store handle.
func buildPipeline(cfg config.Config, dryRun bool) (*pipeline.Pipeline, *store.Store, error) {
	sources, err := pipeline.SourcesFromConfig(cfg.Sources)
	if err != nil {
		return nil, nil, err
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	var sender notify.Sender
	if dryRun {
		sender = notify.NewDryRunSender()
	} else {
		sender = notify.NewPushClient(cfg.Push.URL, cfg.Push.Timeout)
	}

	pipe := pipeline.New(sources, extract.NewFetcher(cfg.FetchTimeout), st, sender)

	// Twitter announcing is opt-in via credentials in the environment.
	if announcer, err := notify.NewTwitterAnnouncer(); err == nil {
		pipe.SetAnnouncer(announcer)
	}

	return pipe, st, nil
}

func runPoll(cmd *cobra.Command, args []string) error {
	setupLogging()

	format := OutputFormat(flagFormat)
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pipe, st, err := buildPipeline(cfg, flagDryRun)
	if err != nil {
		return err
	}
	defer st.Close()

	sum, err := pipe.RunOnce(cmd.Context())
	if err != nil {
		return fmt.Errorf("poll cycle: %w", err)
	}

	return WriteSummary(os.Stdout, sum, format)
}

func runServe(cmd *cobra.Command, args []string) error {
	setupLogging()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	pipe, st, err := buildPipeline(cfg, false)
	if err != nil {
		return err
	}
	defer st.Close()

	// Scheduled polls run alongside on-demand POST /api/poll; the store's
	// transactional ingest keeps the two from double-reporting an event.
	go func() {
		ticker := time.NewTicker(cfg.PollInterval)
		defer ticker.Stop()
		for {
			if _, err := pipe.RunOnce(cmd.Context()); err != nil {
				logger.Error("scheduled poll failed", nil, err)
			}
			select {
			case <-ticker.C:
			case <-cmd.Context().Done():
				return
			}
		}
	}()

	logger.Info("serving API", logger.Fields{"listen": cfg.Listen})
	return server.New(pipe, st).Listen(cfg.Listen)
}

func runSubscribe(cmd *cobra.Command, args []string) error {
	setupLogging()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st, err := store.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	sub := &match.Subscription{
		Token:    flagToken,
		Counties: flagCounties,
		Species:  flagSpecies,
		Waters:   flagWaters,
	}
	if err := st.UpsertSubscription(cmd.Context(), sub); err != nil {
		return err
	}

	fmt.Printf("Subscription saved for token %s\n", flagToken)
	return nil
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
