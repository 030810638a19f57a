// Package stream classifies stream URLs for the playback layer.
package stream

import (
	"net/url"
	"path"
	"strings"
)

// Type identifies how a stream URL should be handed to the player.
type Type int

const (
	// TypeHLS is the default: anything not recognizably DASH or a static
	// file is assumed to be an HLS playlist.
	TypeHLS Type = iota
	// TypeDASH is an MPEG-DASH manifest.
	TypeDASH
	// TypeStatic is a plain video file played directly by the media element.
	TypeStatic
)

func (t Type) String() string {
	switch t {
	case TypeDASH:
		return "dash"
	case TypeStatic:
		return "static"
	default:
		return "hls"
	}
}

// staticExts are container formats the media element plays without a
// streaming library.
var staticExts = map[string]bool{
	".mp4":  true,
	".webm": true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".ogg":  true,
}

// Classify sniffs the stream type from the URL path. Query and fragment are
// ignored; unknown extensions fall through to HLS.
func Classify(rawURL string) Type {
	p := rawURL

	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		p = u.Path
	}

	ext := strings.ToLower(path.Ext(p))

	switch {
	case ext == ".mpd":
		return TypeDASH
	case staticExts[ext]:
		return TypeStatic
	default:
		return TypeHLS
	}
}
