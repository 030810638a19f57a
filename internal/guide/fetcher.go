// Package guide fetches a third-party "now playing" page and scrapes it into
// a schedule keyed by normalized channel name.
package guide

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/telik/webtv/internal/metrics"
)

const (
	fetchTimeout = 15 * time.Second
	maxBodySize  = 10 * 1024 * 1024
)

// Schedule maps a normalized channel key to the programme currently listed
// for it. Keys are never empty.
type Schedule map[string]string

// envelope is the JSON wrapper returned by the CORS proxy.
type envelope struct {
	Contents string `json:"contents"`
}

// Fetcher retrieves the guide page, optionally through a CORS-bypass proxy.
type Fetcher struct {
	log        logrus.FieldLogger
	httpClient *http.Client
	guideURL   string
	proxyURL   string
}

// NewFetcher creates a guide fetcher. proxyURL is a prefix the encoded guide
// URL is appended to; empty means fetch the guide page directly.
func NewFetcher(log logrus.FieldLogger, guideURL, proxyURL string) *Fetcher {
	return &Fetcher{
		log: log.WithField("component", "guide"),
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		guideURL: guideURL,
		proxyURL: proxyURL,
	}
}

// FetchSchedule retrieves and scrapes the guide page. It never returns an
// error: any failure is logged and yields an empty schedule, so callers keep
// whatever snapshot they already hold.
func (f *Fetcher) FetchSchedule(ctx context.Context) Schedule {
	markup, err := f.fetchMarkup(ctx)
	if err != nil {
		f.log.WithError(err).Warn("Guide fetch failed")
		metrics.GuideFetches.WithLabelValues("error").Inc()

		return Schedule{}
	}

	schedule := ParseSchedule(f.log, markup)

	metrics.GuideFetches.WithLabelValues("ok").Inc()
	metrics.GuideChannelsResolved.Set(float64(len(schedule)))

	f.log.WithField("channels", len(schedule)).Info("Guide schedule resolved")

	return schedule
}

func (f *Fetcher) fetchMarkup(ctx context.Context) (string, error) {
	requestURL := f.guideURL
	if f.proxyURL != "" {
		requestURL = f.proxyURL + url.QueryEscape(f.guideURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	// Direct fetches return raw markup; the proxy wraps it in JSON.
	if f.proxyURL == "" {
		return string(body), nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", fmt.Errorf("failed to decode proxy envelope: %w", err)
	}

	return env.Contents, nil
}
