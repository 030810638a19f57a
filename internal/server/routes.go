// Package server provides the HTTP API consumed by the browser player.
package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/telik/webtv/internal/data"
	"github.com/telik/webtv/internal/m3u"
	"github.com/telik/webtv/internal/match"
	"github.com/telik/webtv/internal/metrics"
	"github.com/telik/webtv/internal/stream"
)

// channelView is the JSON shape the player consumes: the parsed channel plus
// the sniffed stream type so the UI can pick a playback path.
type channelView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Logo  string `json:"logo,omitempty"`
	URL   string `json:"url"`
	Type  string `json:"type"`
}

// Routes sets up all HTTP routes.
type Routes struct {
	log   logrus.FieldLogger
	store *data.Store
}

// NewRoutes creates a new routes instance.
func NewRoutes(log logrus.FieldLogger, store *data.Store) *Routes {
	return &Routes{
		log:   log.WithField("component", "routes"),
		store: store,
	}
}

// Handler returns the main HTTP handler with all routes.
func (r *Routes) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/playlist", r.handlePlaylist)
	mux.HandleFunc("/api/channels", r.handleChannels)
	mux.HandleFunc("/api/groups", r.handleGroups)
	mux.HandleFunc("/api/guide", r.handleGuide)
	mux.HandleFunc("/api/now", r.handleNowPlaying)

	mux.HandleFunc("/playlist.m3u", r.handleExport)

	mux.HandleFunc("/health", r.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return r.loggingMiddleware(mux)
}

// handlePlaylist imports a playlist: the request body is raw M3U text, the
// response is the parsed channel list. A body with no URL lines imports an
// empty playlist; the UI treats that as "no channels found".
func (r *Routes) handlePlaylist(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)

		return
	}

	body, err := io.ReadAll(io.LimitReader(req.Body, maxPlaylistSize))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)

		return
	}

	channels := m3u.Parse(string(body))
	r.store.SetChannels(channels)

	r.log.WithField("channels", len(channels)).Info("Playlist imported")

	r.writeJSON(w, channelViews(channels))
}

func (r *Routes) handleChannels(w http.ResponseWriter, req *http.Request) {
	channels, ok := r.store.ChannelsByGroup(req.URL.Query().Get("group"))
	if !ok {
		http.Error(w, "no playlist loaded", http.StatusServiceUnavailable)

		return
	}

	r.writeJSON(w, channelViews(channels))
}

func (r *Routes) handleGroups(w http.ResponseWriter, req *http.Request) {
	r.writeJSON(w, r.store.Groups())
}

func (r *Routes) handleGuide(w http.ResponseWriter, req *http.Request) {
	r.writeJSON(w, r.store.Schedule())
}

// handleNowPlaying resolves the current programme for a channel name.
// No match is a defined outcome, not an error: the response is 204.
func (r *Routes) handleNowPlaying(w http.ResponseWriter, req *http.Request) {
	name := req.URL.Query().Get("name")

	title, ok := match.ResolveProgram(name, r.store.Schedule())
	if !ok {
		metrics.NowPlayingLookups.WithLabelValues("miss").Inc()
		w.WriteHeader(http.StatusNoContent)

		return
	}

	metrics.NowPlayingLookups.WithLabelValues("hit").Inc()

	r.writeJSON(w, struct {
		Name    string `json:"name"`
		Program string `json:"program"`
	}{
		Name:    name,
		Program: title,
	})
}

func (r *Routes) handleExport(w http.ResponseWriter, req *http.Request) {
	channels, ok := r.store.Channels()
	if !ok {
		http.Error(w, "no playlist loaded", http.StatusServiceUnavailable)

		return
	}

	w.Header().Set("Content-Type", "application/x-mpegurl")
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write([]byte(m3u.Write(channels))); err != nil {
		r.log.WithError(err).Error("Failed to write playlist response")
	}
}

func (r *Routes) handleHealth(w http.ResponseWriter, req *http.Request) {
	status := struct {
		Status    string `json:"status"`
		Channels  bool   `json:"hasChannels"`
		Guide     int    `json:"guideChannels"`
		LastLoad  string `json:"lastLoad"`
		LastFetch string `json:"lastFetch"`
	}{
		Status:    "ok",
		Channels:  r.store.HasChannels(),
		Guide:     len(r.store.Schedule()),
		LastLoad:  r.store.LastLoad().Format(time.RFC3339),
		LastFetch: r.store.LastFetch().Format(time.RFC3339),
	}

	r.writeJSON(w, status)
}

func (r *Routes) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(v); err != nil {
		r.log.WithError(err).Error("Failed to write JSON response")
	}
}

func channelViews(channels []m3u.Channel) []channelView {
	views := make([]channelView, 0, len(channels))

	for _, ch := range channels {
		views = append(views, channelView{
			ID:    ch.ID,
			Name:  ch.Name,
			Group: ch.Group,
			Logo:  ch.Logo,
			URL:   ch.URL,
			Type:  stream.Classify(ch.URL).String(),
		})
	}

	return views
}

func (r *Routes) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.log.WithFields(logrus.Fields{
			"method": req.Method,
			"path":   req.URL.Path,
			"remote": req.RemoteAddr,
		}).Debug("HTTP request")

		next.ServeHTTP(w, req)
	})
}
