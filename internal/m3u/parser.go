// Package m3u provides parsing and writing of extended M3U playlists.
package m3u

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const (
	// DefaultGroup is assigned to channels without a group-title attribute.
	DefaultGroup = "General"

	// maxDerivedNameLen caps names derived from URL path segments. Longer
	// segments are almost always opaque stream tokens, not human names.
	maxDerivedNameLen = 20
)

// Channel represents a single playable entry in an M3U playlist.
type Channel struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Group string `json:"group"`
	Logo  string `json:"logo,omitempty"`
	URL   string `json:"url"`
}

// pending holds metadata from an #EXTINF line until a URL line consumes it.
type pending struct {
	name  string
	group string
	logo  string
}

// Parse extracts channel records from extended M3U playlist text.
// Channels are returned in file order. Parse never fails: text with no
// URL-shaped lines yields an empty slice.
func Parse(content string) []Channel {
	channels := make([]Channel, 0, 100)

	if content == "" {
		return channels
	}

	content = strings.ReplaceAll(content, "\r", "")

	var meta pending

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "#EXTINF:") {
			// A second #EXTINF before any URL overwrites the pending
			// block; the earlier one is discarded silently.
			meta = pending{
				name:  extractName(line),
				group: extractAttribute(line, "group-title"),
				logo:  extractAttribute(line, "tvg-logo"),
			}

			continue
		}

		if strings.HasPrefix(line, "#") {
			continue
		}

		if !looksLikeURL(line) {
			continue
		}

		channels = append(channels, Channel{
			ID:    uuid.NewString(),
			Name:  channelName(meta.name, line, len(channels)+1),
			Group: channelGroup(meta.group),
			Logo:  meta.logo,
			URL:   line,
		})
		meta = pending{}
	}

	return channels
}

// extractName returns the display name from an #EXTINF line. The separator is
// the first comma outside quoted attribute values, so commas embedded in
// attributes never split the name and commas in the name stay part of it.
func extractName(line string) string {
	rest := strings.TrimPrefix(line, "#EXTINF:")

	inQuotes := false

	for i, r := range rest {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				return strings.TrimSpace(rest[i+1:])
			}
		}
	}

	return ""
}

func extractAttribute(line, attr string) string {
	pattern := fmt.Sprintf(`%s="([^"]*)"`, regexp.QuoteMeta(attr))
	re := regexp.MustCompile(pattern)
	matches := re.FindStringSubmatch(line)

	if len(matches) > 1 {
		return matches[1]
	}

	return ""
}

// looksLikeURL reports whether a non-directive line is a stream location.
func looksLikeURL(line string) bool {
	if len(line) <= 5 {
		return false
	}

	return strings.Contains(line, "http") ||
		strings.Contains(line, ".") ||
		strings.Contains(line, ":")
}

// channelName resolves the display name for a channel: pending #EXTINF name
// first, then a name derived from the URL's last path segment, then a
// positional placeholder.
func channelName(pendingName, rawURL string, n int) string {
	if pendingName != "" {
		return pendingName
	}

	if derived := deriveName(rawURL); derived != "" {
		return derived
	}

	return fmt.Sprintf("Channel %d", n)
}

// deriveName extracts a usable name from the URL's last path segment with the
// extension stripped. Returns "" when the segment is empty or too long to
// plausibly be a name.
func deriveName(rawURL string) string {
	segment := rawURL

	if idx := strings.IndexAny(segment, "?#"); idx >= 0 {
		segment = segment[:idx]
	}

	segment = path.Base(strings.TrimRight(segment, "/"))
	if segment == "." || segment == "/" {
		return ""
	}

	segment = strings.TrimSuffix(segment, path.Ext(segment))

	if segment == "" || len(segment) > maxDerivedNameLen {
		return ""
	}

	return segment
}

func channelGroup(pendingGroup string) string {
	if pendingGroup == "" {
		return DefaultGroup
	}

	return pendingGroup
}
