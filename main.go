package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"perio_dictation/internal/voice"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	root := &cobra.Command{
		Use:          "perio",
		Short:        "Periodontal charting dictation parser",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or $HOME/.perio/config.yaml)")

	root.AddCommand(newServeCmd(&cfgFile), newParseCmd(&cfgFile))
	return root
}

func newServeCmd(cfgFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the dictation parser HTTP service",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*cfgFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(ctx context.Context, cfg *Config) error {
	logger := cfg.Log.newLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownMetrics, err := initMeterProvider()
	if err != nil {
		return fmt.Errorf("failed to initialise metrics: %w", err)
	}
	defer func() {
		if err := shutdownMetrics(context.Background()); err != nil {
			slog.Warn("metrics shutdown failed", "err", err)
		}
	}()
	metrics, err := NewMetrics(otel.GetMeterProvider())
	if err != nil {
		return fmt.Errorf("failed to create metrics: %w", err)
	}

	// Initialize clinic vocabulary cache with file watcher
	cache, err := NewProfileCache(cfg.Vocabulary.Dir, cfg.Parser, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vocabulary cache: %w", err)
	}
	defer cache.Close()

	// Start file watcher and session sweeper in background
	go cache.WatchFiles(ctx)
	sessions := NewSessionStore(cfg.Session.IdleTimeout, metrics)
	go sessions.Run(ctx)

	e := newEcho(&server{cfg: cfg, cache: cache, sessions: sessions, metrics: metrics})

	slog.Info("perio dictation parser starting",
		"port", cfg.Server.Port,
		"vocabulary_dir", cfg.Vocabulary.Dir,
		"min_confidence", cfg.Parser.MinConfidence,
		"thresholds", cfg.Parser.Thresholds,
	)

	errc := make(chan error, 1)
	go func() {
		errc <- e.Start(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newParseCmd(cfgFile *string) *cobra.Command {
	var (
		mode       string
		confidence float64
		clinic     string
	)

	cmd := &cobra.Command{
		Use:   "parse <transcript>",
		Short: "Parse one utterance and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(*cfgFile)
			if err != nil {
				return err
			}
			m, ok := parseMode(mode)
			if !ok {
				return fmt.Errorf("invalid mode %q; valid values: pocket_depth, bleeding, mobility", mode)
			}
			if !cmd.Flags().Changed("confidence") {
				confidence = cfg.Parser.DefaultConfidence
			}
			if confidence < 0 || confidence > 1 {
				return fmt.Errorf("confidence %.2f is out of range [0, 1]", confidence)
			}

			cache, err := NewProfileCache(cfg.Vocabulary.Dir, cfg.Parser, cfg.Log.newLogger())
			if err != nil {
				return err
			}
			defer cache.Close()

			profile, err := cache.Get(clinic)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "  ")
			return enc.Encode(ParseResponse{
				ParsedVoiceData: profile.Parse(args[0], m, confidence),
				Clinic:          clinic,
			})
		},
	}
	cmd.Flags().StringVar(&mode, "mode", string(voice.ModePocketDepth), "current input mode")
	cmd.Flags().Float64Var(&confidence, "confidence", voice.DefaultConfidence, "ASR confidence of the utterance")
	cmd.Flags().StringVar(&clinic, "clinic", "", "clinic vocabulary to use")
	return cmd
}
