// Package metrics exposes Prometheus collectors for the guide pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GuideFetches counts schedule fetch attempts by outcome (ok, error).
	GuideFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webtv_guide_fetches_total",
		Help: "Total number of guide schedule fetches",
	}, []string{"outcome"})

	// GuideChannelsResolved tracks how many distinct channels the last
	// scrape produced.
	GuideChannelsResolved = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "webtv_guide_channels_resolved",
		Help: "Distinct channels resolved by the last guide scrape",
	})

	// NowPlayingLookups counts programme resolutions by outcome (hit, miss).
	NowPlayingLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "webtv_now_playing_lookups_total",
		Help: "Total number of now-playing lookups",
	}, []string{"outcome"})

	// ChannelsLoaded tracks the size of the currently loaded playlist.
	ChannelsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "webtv_channels_loaded",
		Help: "Number of channels in the loaded playlist",
	})
)
