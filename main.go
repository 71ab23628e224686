package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/seo-optimizer/competitor/analyzer"
	"github.com/seo-optimizer/competitor/api"
	"github.com/seo-optimizer/competitor/competitor"
	"github.com/seo-optimizer/competitor/config"
	"github.com/seo-optimizer/competitor/logging"
	"github.com/seo-optimizer/competitor/relay"
	"github.com/seo-optimizer/competitor/render"
	"github.com/seo-optimizer/competitor/stats"
)

var (
	direct  bool
	verbose bool
	port    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "seo-competitor",
		Short:         "Compare the on-page SEO signals of your site and a competitor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().BoolVar(&direct, "direct", false, "Fetch pages directly instead of through the relay")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")

	compareCmd := &cobra.Command{
		Use:   "compare <your-url> <competitor-url>",
		Short: "Compare two pages and print the report",
		Args:  cobra.ExactArgs(2),
		RunE:  runCompare,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&port, "port", "", "Port to listen on (default from PORT or 8082)")

	rootCmd.AddCommand(compareCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and builds the extractor shared by both commands.
func setup() (*config.Config, *analyzer.Extractor, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if direct {
		cfg.Fetch.Direct = true
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	opts := relay.Options{Timeout: cfg.Fetch.Timeout, UserAgent: cfg.Fetch.UserAgent}
	var fetcher relay.Fetcher
	if cfg.Fetch.Direct {
		fetcher = relay.NewDirect(opts)
	} else {
		fetcher = relay.NewRelay(cfg.Fetch.RelayURL, opts)
	}

	log.Debug().
		Bool("direct", cfg.Fetch.Direct).
		Str("relay", cfg.Fetch.RelayURL).
		Dur("timeout", cfg.Fetch.Timeout).
		Msg("configuration loaded")
	return cfg, analyzer.New(fetcher), nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	_, extractor, err := setup()
	if err != nil {
		return err
	}

	svc := competitor.NewService(extractor, nil)
	req := competitor.Request{YourURL: args[0], CompetitorURL: args[1]}

	result := svc.Analyze(cmd.Context(), req, func(r competitor.Result) {
		if r.Status == competitor.StatusLoading {
			fmt.Fprintln(cmd.ErrOrStderr(), "Analyzing...")
		}
	})
	if err := render.Text(cmd.OutOrStdout(), result); err != nil {
		return err
	}
	if result.Status != competitor.StatusDone {
		return errors.New("analysis failed")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, extractor, err := setup()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}

	storage, err := stats.NewStorage(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to initialize stats storage: %w", err)
	}
	storage.Cleanup(cfg.StatsRetainMonths)
	defer func() {
		if err := storage.Shutdown(); err != nil {
			log.Error().Err(err).Msg("failed to flush statistics")
		}
	}()

	svc := competitor.NewService(extractor, storage)
	router := api.NewRouter(svc, storage, cfg, time.Now())

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", "http://localhost:"+cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced shutdown")
	}
	log.Info().Msg("server stopped")
	return nil
}
