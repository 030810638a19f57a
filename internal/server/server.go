package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/telik/webtv/internal/config"
	"github.com/telik/webtv/internal/data"
	"github.com/telik/webtv/internal/guide"
	"github.com/telik/webtv/internal/m3u"
)

const (
	readTimeout     = 10 * time.Second
	writeTimeout    = 30 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 30 * time.Second

	maxPlaylistSize = 50 * 1024 * 1024
)

// Server provides the HTTP backend with lifecycle management.
type Server struct {
	log       logrus.FieldLogger
	cfg       *config.Config
	store     *data.Store
	fetcher   *guide.Fetcher
	refresher *data.Refresher
	watcher   *data.Watcher
	server    *http.Server

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewServer creates a new server instance.
func NewServer(log logrus.FieldLogger, cfg *config.Config) *Server {
	store := data.NewStore()

	s := &Server{
		log:   log.WithField("component", "server"),
		cfg:   cfg,
		store: store,
	}

	if cfg.GuideURL != "" {
		s.fetcher = guide.NewFetcher(log, cfg.GuideURL, cfg.ProxyURL)
		s.refresher = data.NewRefresher(log, s.fetcher, store, cfg.RefreshInterval)
	}

	if cfg.PlaylistIsFile() {
		s.watcher = data.NewWatcher(log, cfg.PlaylistSource, store)
	}

	return s
}

// Start starts the server.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("server already running")
	}

	serverCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	if err := s.loadInitialPlaylist(serverCtx); err != nil {
		cancel()

		return err
	}

	// The guide is optional enrichment: a failed first fetch must not stop
	// the player from starting.
	if s.fetcher != nil {
		if schedule := s.fetcher.FetchSchedule(serverCtx); len(schedule) > 0 {
			s.store.SetSchedule(schedule)
		}

		if err := s.refresher.Start(serverCtx); err != nil {
			cancel()

			return fmt.Errorf("failed to start refresher: %w", err)
		}
	}

	if s.watcher != nil {
		if err := s.watcher.Start(serverCtx); err != nil {
			cancel()

			return fmt.Errorf("failed to start watcher: %w", err)
		}
	}

	routes := NewRoutes(s.log, s.store)

	s.server = &http.Server{
		Addr:         s.cfg.ListenAddr(),
		Handler:      routes.Handler(),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	go s.run(serverCtx)

	s.log.WithField("addr", s.cfg.ListenAddr()).Info("Server started")

	return nil
}

// Stop stops the server.
func (s *Server) Stop() error {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	cancel()

	if done != nil {
		<-done
	}

	if s.refresher != nil {
		if err := s.refresher.Stop(); err != nil {
			s.log.WithError(err).Warn("Failed to stop refresher")
		}
	}

	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			s.log.WithError(err).Warn("Failed to stop watcher")
		}
	}

	s.log.Info("Server stopped")

	return nil
}

// loadInitialPlaylist loads the configured playlist source, if any. A source
// with no valid entries still loads: the UI surfaces "no channels found".
func (s *Server) loadInitialPlaylist(ctx context.Context) error {
	if s.cfg.PlaylistSource == "" {
		return nil // The UI imports playlists over the API.
	}

	var (
		content []byte
		err     error
	)

	if s.cfg.PlaylistIsURL() {
		content, err = s.fetchPlaylist(ctx)
	} else {
		content, err = os.ReadFile(s.cfg.PlaylistSource)
	}

	if err != nil {
		return fmt.Errorf("failed to load playlist: %w", err)
	}

	channels := m3u.Parse(string(content))
	s.store.SetChannels(channels)

	s.log.WithFields(logrus.Fields{
		"source":   s.cfg.PlaylistSource,
		"channels": len(channels),
	}).Info("Playlist loaded")

	return nil
}

func (s *Server) fetchPlaylist(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.PlaylistSource, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: readTimeout}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxPlaylistSize))
}

func (s *Server) run(ctx context.Context) {
	defer close(s.done)

	errCh := make(chan error, 1)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down server")
	case err := <-errCh:
		if err != nil {
			s.log.WithError(err).Error("Server error")
		}

		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		s.log.WithError(err).Warn("Server shutdown error")
	}
}
