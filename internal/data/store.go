// Package data provides in-memory storage and refresh of playlist and
// schedule snapshots.
package data

import (
	"sort"
	"sync"
	"time"

	"github.com/telik/webtv/internal/guide"
	"github.com/telik/webtv/internal/m3u"
	"github.com/telik/webtv/internal/metrics"
)

// Store holds the loaded playlist and the latest guide schedule. Both are
// replaced wholesale under the write lock, so readers never observe a
// partially updated snapshot.
type Store struct {
	mu sync.RWMutex

	channels  []m3u.Channel
	schedule  guide.Schedule
	lastLoad  time.Time
	lastFetch time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		schedule: make(guide.Schedule),
	}
}

// SetChannels replaces the loaded playlist.
func (s *Store) SetChannels(channels []m3u.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.channels = channels
	s.lastLoad = time.Now()

	metrics.ChannelsLoaded.Set(float64(len(channels)))
}

// Channels returns the loaded playlist in import order.
func (s *Store) Channels() ([]m3u.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.channels == nil {
		return nil, false
	}

	return s.channels, true
}

// SetSchedule replaces the guide schedule. Callers with a failed fetch should
// not call this, so the previous snapshot survives fetch failures.
func (s *Store) SetSchedule(schedule guide.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.schedule = schedule
	s.lastFetch = time.Now()
}

// Schedule returns the current guide schedule.
func (s *Store) Schedule() guide.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.schedule
}

// LastLoad returns when the playlist was last replaced.
func (s *Store) LastLoad() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastLoad
}

// LastFetch returns when the schedule was last replaced.
func (s *Store) LastFetch() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastFetch
}

// HasChannels reports whether a playlist has been loaded.
func (s *Store) HasChannels() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.channels != nil
}

// Groups returns the distinct channel groups, sorted alphabetically.
func (s *Store) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]bool)
	groups := make([]string, 0)

	for _, ch := range s.channels {
		if ch.Group != "" && !seen[ch.Group] {
			seen[ch.Group] = true
			groups = append(groups, ch.Group)
		}
	}

	sort.Strings(groups)

	return groups
}

// ChannelsByGroup returns channels in a specific group; an empty group
// returns the whole playlist.
func (s *Store) ChannelsByGroup(group string) ([]m3u.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.channels == nil {
		return nil, false
	}

	if group == "" {
		return s.channels, true
	}

	filtered := make([]m3u.Channel, 0)

	for _, ch := range s.channels {
		if ch.Group == group {
			filtered = append(filtered, ch)
		}
	}

	return filtered, true
}
