// Package main provides a CLI tool for debugging guide channel matching.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/telik/webtv/internal/guide"
	"github.com/telik/webtv/internal/m3u"
	"github.com/telik/webtv/internal/match"
	"github.com/telik/webtv/internal/namekey"
)

var (
	playlistPath string
	guidePath    string
	proxyURL     string
	logLevel     string
	log          = logrus.New()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "matcher",
		Short: "Debug guide channel matching",
		Long: `A debugging tool to analyze how playlist channels resolve against a
scraped guide page.

Outputs detailed information about:
- Which channels resolved and by what strategy (exact, contains, contained)
- Which channels failed to resolve
- Summary statistics

Examples:
  # Using local files
  go run cmd/matcher/main.go --playlist testdata/channels.m3u --guide testdata/guide.html

  # Fetching the guide page through a CORS proxy
  go run cmd/matcher/main.go --playlist list.m3u --guide https://guide.example.com/now --proxy "https://proxy.example.com/get?url="`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&playlistPath, "playlist", "", "Path or URL to M3U playlist (required)")
	rootCmd.Flags().StringVar(&guidePath, "guide", "", "Path or URL to guide page (required)")
	rootCmd.Flags().StringVar(&proxyURL, "proxy", "", "CORS proxy prefix for fetching the guide URL")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	if err := rootCmd.MarkFlagRequired("playlist"); err != nil {
		log.WithError(err).Fatal("Failed to mark playlist flag as required")
	}

	if err := rootCmd.MarkFlagRequired("guide"); err != nil {
		log.WithError(err).Fatal("Failed to mark guide flag as required")
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadData fetches data from a URL or reads from a local file.
func loadData(path string) ([]byte, error) {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		resp, err := http.Get(path) //nolint:gosec,noctx // User-provided URL for CLI tool
		if err != nil {
			return nil, fmt.Errorf("failed to fetch URL: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("HTTP request failed with status: %s", resp.Status)
		}

		return io.ReadAll(resp.Body)
	}

	return os.ReadFile(path)
}

func run(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	log.SetLevel(level)

	playlistData, err := loadData(playlistPath)
	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}

	channels := m3u.Parse(string(playlistData))

	schedule, err := loadSchedule()
	if err != nil {
		return err
	}

	report(channels, schedule)

	return nil
}

// loadSchedule builds a schedule from the guide source: a URL goes through
// the regular fetcher (with optional proxy), a local file is scraped directly.
func loadSchedule() (guide.Schedule, error) {
	if strings.HasPrefix(guidePath, "http://") || strings.HasPrefix(guidePath, "https://") {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return guide.NewFetcher(log, guidePath, proxyURL).FetchSchedule(ctx), nil
	}

	markup, err := loadData(guidePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load guide page: %w", err)
	}

	return guide.ParseSchedule(log, string(markup)), nil
}

// strategyFor reports which resolution step a channel name hits, mirroring
// the priority order used by match.ResolveProgram.
func strategyFor(name string, schedule guide.Schedule) string {
	searchKey := namekey.Normalize(name)
	if searchKey == "" {
		return "empty-key"
	}

	if _, ok := schedule[searchKey]; ok {
		return "exact"
	}

	for key := range schedule {
		if len(key) > match.MinKeyLen && strings.Contains(searchKey, key) {
			return "contains"
		}
	}

	for key := range schedule {
		if len(searchKey) > match.MinKeyLen && strings.Contains(key, searchKey) {
			return "contained"
		}
	}

	return "none"
}

func report(channels []m3u.Channel, schedule guide.Schedule) {
	fmt.Printf("Playlist channels: %d\n", len(channels))
	fmt.Printf("Guide channels:    %d\n\n", len(schedule))

	counts := make(map[string]int, 4)

	var unresolved []string

	fmt.Println("=== RESOLVED ===")

	for _, ch := range channels {
		strategy := strategyFor(ch.Name, schedule)
		counts[strategy]++

		title, ok := match.ResolveProgram(ch.Name, schedule)
		if !ok {
			unresolved = append(unresolved, ch.Name)

			continue
		}

		fmt.Printf("  [%-9s] %-40s -> %s\n", strategy, ch.Name, title)
	}

	if len(unresolved) > 0 {
		fmt.Println("\n=== UNRESOLVED ===")

		sort.Strings(unresolved)

		for _, name := range unresolved {
			fmt.Printf("  %-40s (key: %q)\n", name, namekey.Normalize(name))
		}
	}

	fmt.Println("\n=== SUMMARY ===")
	fmt.Printf("  exact:     %d\n", counts["exact"])
	fmt.Printf("  contains:  %d\n", counts["contains"])
	fmt.Printf("  contained: %d\n", counts["contained"])
	fmt.Printf("  none:      %d\n", counts["none"]+counts["empty-key"])
	fmt.Printf("  total:     %d/%d resolved\n", len(channels)-len(unresolved), len(channels))
}
