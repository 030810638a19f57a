// Package main is the entry point for the webtv backend.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/telik/webtv/internal/config"
	"github.com/telik/webtv/internal/server"
)

var (
	cfg = config.DefaultConfig()
	log = logrus.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "webtv",
		Short: "Backend for the webtv browser IPTV player",
		Long: `Serves the JSON API the browser player consumes: playlist import and
channel listing, plus best-effort "now playing" information scraped from a
third-party guide page.`,
		RunE: run,
	}

	// Data sources
	rootCmd.Flags().StringVar(&cfg.PlaylistSource, "playlist", "", "M3U playlist URL or file path (optional, the UI can import one)")
	rootCmd.Flags().StringVar(&cfg.GuideURL, "guide", "", "Guide page URL for now-playing data (optional)")
	rootCmd.Flags().StringVar(&cfg.ProxyURL, "proxy", "", "CORS proxy prefix the encoded guide URL is appended to")

	// Server flags
	rootCmd.Flags().StringVar(&cfg.BindAddr, "bind", cfg.BindAddr, "Bind address")
	rootCmd.Flags().IntVar(&cfg.Port, "port", cfg.Port, "Port number")
	rootCmd.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	// Data flags
	rootCmd.Flags().DurationVar(&cfg.RefreshInterval, "refresh", cfg.RefreshInterval, "Guide refresh interval")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}

	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	if err := cfg.Validate(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"playlist": cfg.PlaylistSource,
		"guide":    cfg.GuideURL,
		"addr":     cfg.ListenAddr(),
	}).Info("Starting webtv backend")

	srv := server.NewServer(log, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("Received shutdown signal")

	return srv.Stop()
}
