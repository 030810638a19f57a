package m3u

import (
	"fmt"
	"strings"
)

// Write serializes channels back to extended M3U text, preserving order.
func Write(channels []Channel) string {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\n")

	for _, ch := range channels {
		sb.WriteString("#EXTINF:-1")

		if ch.Logo != "" {
			sb.WriteString(fmt.Sprintf(" tvg-logo=%q", ch.Logo))
		}

		if ch.Group != "" {
			sb.WriteString(fmt.Sprintf(" group-title=%q", ch.Group))
		}

		sb.WriteString("," + ch.Name + "\n")
		sb.WriteString(ch.URL + "\n")
	}

	return sb.String()
}
