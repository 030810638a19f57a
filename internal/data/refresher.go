package data

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/telik/webtv/internal/guide"
)

// Refresher periodically re-fetches the guide schedule. The fetch itself
// never fails; an empty result leaves the stored snapshot alone.
type Refresher struct {
	log      logrus.FieldLogger
	fetcher  *guide.Fetcher
	store    *Store
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRefresher creates a schedule refresher.
func NewRefresher(log logrus.FieldLogger, fetcher *guide.Fetcher, store *Store, interval time.Duration) *Refresher {
	return &Refresher{
		log:      log.WithField("component", "refresher"),
		fetcher:  fetcher,
		store:    store,
		interval: interval,
	}
}

// Start begins the refresh loop.
func (r *Refresher) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return nil // Already running
	}

	refreshCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	go r.run(refreshCtx)

	r.log.WithField("interval", r.interval).Info("Schedule refresher started")

	return nil
}

// Stop stops the refresh loop.
func (r *Refresher) Stop() error {
	r.mu.Lock()
	cancel := r.cancel
	done := r.done
	r.cancel = nil
	r.done = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()

		if done != nil {
			<-done
		}
	}

	r.log.Info("Schedule refresher stopped")

	return nil
}

func (r *Refresher) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.refresh(ctx)
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	r.log.Debug("Refreshing schedule")

	schedule := r.fetcher.FetchSchedule(ctx)
	if len(schedule) == 0 {
		r.log.Warn("Schedule refresh produced no channels, keeping previous snapshot")

		return
	}

	r.store.SetSchedule(schedule)
}
