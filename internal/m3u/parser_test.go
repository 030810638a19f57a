package m3u

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_ValidPlaylist(t *testing.T) {
	input := `#EXTM3U
#EXTINF:-1 tvg-logo="http://logo.example.com/espn.png" group-title="US Sports",ESPN
http://stream.example.com/12345

#EXTINF:-1 tvg-logo="http://logo.example.com/hbo.png" group-title="US Movies",HBO
http://stream.example.com/12346
`
	channels := Parse(input)
	require.Len(t, channels, 2)

	require.Equal(t, "ESPN", channels[0].Name)
	require.Equal(t, "http://stream.example.com/12345", channels[0].URL)
	require.Equal(t, "http://logo.example.com/espn.png", channels[0].Logo)
	require.Equal(t, "US Sports", channels[0].Group)

	require.Equal(t, "HBO", channels[1].Name)
	require.Equal(t, "http://stream.example.com/12346", channels[1].URL)
	require.Equal(t, "http://logo.example.com/hbo.png", channels[1].Logo)
	require.Equal(t, "US Movies", channels[1].Group)
}

func TestParse_EmptyInput(t *testing.T) {
	require.Empty(t, Parse(""))
	require.Empty(t, Parse("\n\n\n"))
	require.Empty(t, Parse("#EXTM3U\n# just comments\n"))
}

func TestParse_CommasInName(t *testing.T) {
	input := `#EXTM3U
#EXTINF:-1 group-title="News" tvg-logo="http://x/logo.png",Channel,With,Commas
http://example.com/a.m3u8`

	channels := Parse(input)
	require.Len(t, channels, 1)
	require.Equal(t, "Channel,With,Commas", channels[0].Name)
	require.Equal(t, "News", channels[0].Group)
	require.Equal(t, "http://x/logo.png", channels[0].Logo)
}

func TestParse_CommaInAttributeValue(t *testing.T) {
	input := `#EXTINF:-1 group-title="News, Local",City TV
http://stream.example.com/city`

	channels := Parse(input)
	require.Len(t, channels, 1)
	require.Equal(t, "City TV", channels[0].Name)
	require.Equal(t, "News, Local", channels[0].Group)
}

func TestParse_DerivedName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "from last path segment without extension",
			input:    "http://cdn.example.com/streams/abc123.m3u8",
			expected: "abc123",
		},
		{
			name:     "long token falls back to placeholder",
			input:    "http://cdn.example.com/streams/dGhpc2lzYXZlcnlsb25ncmFuZG9tdG9rZW4.m3u8",
			expected: "Channel 1",
		},
		{
			name:     "query string stripped before deriving",
			input:    "http://cdn.example.com/live/news24.m3u8?token=abc",
			expected: "news24",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			channels := Parse(tt.input)
			require.Len(t, channels, 1)
			require.Equal(t, tt.expected, channels[0].Name)
		})
	}
}

func TestParse_PlaceholderCountsProducedChannels(t *testing.T) {
	input := strings.Join([]string{
		"http://cdn.example.com/streams/averyveryverylongsegmentname.m3u8",
		"http://cdn.example.com/streams/anotherextremelylongsegment.m3u8",
	}, "\n")

	channels := Parse(input)
	require.Len(t, channels, 2)
	require.Equal(t, "Channel 1", channels[0].Name)
	require.Equal(t, "Channel 2", channels[1].Name)
}

func TestParse_DefaultGroup(t *testing.T) {
	input := `#EXTINF:-1,Local News
http://stream.example.com/news`

	channels := Parse(input)
	require.Len(t, channels, 1)
	require.Equal(t, DefaultGroup, channels[0].Group)
}

func TestParse_NoTrailingCommaLeavesNameUnset(t *testing.T) {
	input := `#EXTINF:-1 group-title="Sports"
http://stream.example.com/sports/tennis.m3u8`

	channels := Parse(input)
	require.Len(t, channels, 1)
	// Name falls through to the URL-derived one.
	require.Equal(t, "tennis", channels[0].Name)
	require.Equal(t, "Sports", channels[0].Group)
}

func TestParse_LaterExtinfOverwritesPending(t *testing.T) {
	input := `#EXTINF:-1,First
#EXTINF:-1,Second
http://stream.example.com/1`

	channels := Parse(input)
	require.Len(t, channels, 1)
	require.Equal(t, "Second", channels[0].Name)
}

func TestParse_TrailingExtinfDiscarded(t *testing.T) {
	input := `#EXTINF:-1,Kept
http://stream.example.com/1
#EXTINF:-1,Dangling`

	channels := Parse(input)
	require.Len(t, channels, 1)
	require.Equal(t, "Kept", channels[0].Name)
}

func TestParse_PendingResetAfterEmit(t *testing.T) {
	input := `#EXTINF:-1 tvg-logo="http://x/a.png" group-title="Movies",Film One
http://stream.example.com/one
http://cdn.example.com/streams/extra.m3u8`

	channels := Parse(input)
	require.Len(t, channels, 2)

	require.Equal(t, "Film One", channels[0].Name)
	require.Equal(t, "Movies", channels[0].Group)

	// The second URL must not inherit the first block's metadata.
	require.Equal(t, "extra", channels[1].Name)
	require.Equal(t, DefaultGroup, channels[1].Group)
	require.Empty(t, channels[1].Logo)
}

func TestParse_CarriageReturns(t *testing.T) {
	input := "#EXTM3U\r\n#EXTINF:-1,CRLF Channel\r\nhttp://stream.example.com/crlf\r\n"

	channels := Parse(input)
	require.Len(t, channels, 1)
	require.Equal(t, "CRLF Channel", channels[0].Name)
	require.Equal(t, "http://stream.example.com/crlf", channels[0].URL)
}

func TestParse_OrderAndCountMatchURLLines(t *testing.T) {
	var sb strings.Builder

	sb.WriteString("#EXTM3U\n")

	for i := 0; i < 10; i++ {
		sb.WriteString(fmt.Sprintf("#EXTINF:-1,Channel %c\n", 'A'+i))
		sb.WriteString(fmt.Sprintf("http://stream.example.com/%d\n", i))
	}

	channels := Parse(sb.String())
	require.Len(t, channels, 10)

	for i, ch := range channels {
		require.Equal(t, fmt.Sprintf("Channel %c", 'A'+i), ch.Name)
		require.Equal(t, fmt.Sprintf("http://stream.example.com/%d", i), ch.URL)
	}
}

func TestParse_UniqueIDs(t *testing.T) {
	input := `http://stream.example.com/a.m3u8
http://stream.example.com/b.m3u8
http://stream.example.com/c.m3u8`

	channels := Parse(input)
	require.Len(t, channels, 3)

	seen := make(map[string]bool, len(channels))

	for _, ch := range channels {
		require.NotEmpty(t, ch.ID)
		require.False(t, seen[ch.ID])

		seen[ch.ID] = true
	}
}

func TestParse_ShortNonURLLinesIgnored(t *testing.T) {
	input := `abc
#EXTINF:-1,Real
http://stream.example.com/real`

	channels := Parse(input)
	require.Len(t, channels, 1)
	require.Equal(t, "Real", channels[0].Name)
}

func TestExtractAttribute(t *testing.T) {
	tests := []struct {
		name     string
		line     string
		attr     string
		expected string
	}{
		{
			name:     "extract tvg-logo",
			line:     `#EXTINF:-1 tvg-logo="http://logo.example.com/espn.png" group-title="US Sports",ESPN`,
			attr:     "tvg-logo",
			expected: "http://logo.example.com/espn.png",
		},
		{
			name:     "extract group-title",
			line:     `#EXTINF:-1 group-title="US Sports",ESPN`,
			attr:     "group-title",
			expected: "US Sports",
		},
		{
			name:     "missing attribute",
			line:     `#EXTINF:-1,ESPN`,
			attr:     "tvg-logo",
			expected: "",
		},
		{
			name:     "attribute with spaces in value",
			line:     `#EXTINF:-1 group-title="UK Sports News",Sky`,
			attr:     "group-title",
			expected: "UK Sports News",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, extractAttribute(tt.line, tt.attr))
		})
	}
}

func TestWrite_RoundTrip(t *testing.T) {
	original := []Channel{
		{
			Name:  "Test Channel",
			URL:   "http://stream.example.com/test",
			Logo:  "http://logo.example.com/test.png",
			Group: "Test Group",
		},
		{
			Name:  "Second",
			URL:   "http://stream.example.com/second",
			Group: DefaultGroup,
		},
	}

	parsed := Parse(Write(original))
	require.Len(t, parsed, 2)

	for i := range original {
		require.Equal(t, original[i].Name, parsed[i].Name)
		require.Equal(t, original[i].URL, parsed[i].URL)
		require.Equal(t, original[i].Logo, parsed[i].Logo)
		require.Equal(t, original[i].Group, parsed[i].Group)
	}
}

func TestWrite_EmptyChannels(t *testing.T) {
	require.Equal(t, "#EXTM3U\n", Write(nil))
}
