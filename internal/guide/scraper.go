package guide

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"

	"github.com/telik/webtv/internal/namekey"
)

// The page layout is third-party and non-contractual. Extraction runs as a
// pipeline of per-row strategies tried in priority order; a row that fits no
// strategy is skipped, so structural drift degrades coverage instead of
// breaking the fetch.

const minTitleLen = 3

// timePattern matches bare time-of-day cells ("20:30") that sit next to the
// programme title in most layouts.
var timePattern = regexp.MustCompile(`^\d{1,2}:\d{2}$`)

// channelLinkPrefixes identify channel-permalink anchors in the guide markup.
var channelLinkPrefixes = []string{"/canal", "/channel"}

// ParseSchedule scrapes guide page markup into a schedule. Rows that do not
// yield both a channel name and a programme title are skipped; later rows for
// the same channel overwrite earlier ones.
func ParseSchedule(log logrus.FieldLogger, markup string) Schedule {
	schedule := make(Schedule)

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		log.WithError(err).Warn("Failed to parse guide markup")

		return schedule
	}

	for _, row := range collectRows(doc) {
		name, title := extractRow(row)
		if name == "" || title == "" {
			continue
		}

		key := namekey.Normalize(name)
		if key == "" {
			continue
		}

		schedule[key] = title
	}

	return schedule
}

// collectRows gathers row-like nodes: table rows, plus divs the legacy layout
// marks with a "row" class. Matched nodes are not descended into, so nested
// wrappers do not produce duplicate rows.
func collectRows(doc *html.Node) []*html.Node {
	var rows []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if isRow(n) {
			rows = append(rows, n)

			return
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return rows
}

func isRow(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}

	if n.Data == "tr" {
		return true
	}

	return n.Data == "div" && strings.Contains(attr(n, "class"), "row")
}

// extractRow pulls the channel name and programme title out of one row.
// Either may come back empty; the caller skips such rows.
func extractRow(row *html.Node) (name, title string) {
	cells := collectCells(row)
	if len(cells) == 0 {
		return "", ""
	}

	name, channelIdx := extractChannel(cells)
	if name == "" {
		return "", ""
	}

	strategies := []func(cells []*html.Node, channelIdx int, channelName string) string{
		titleByClass,
		titleAfterChannel,
		titleByScan,
	}

	for _, strategy := range strategies {
		if title = strategy(cells, channelIdx, name); title != "" {
			return name, title
		}
	}

	return name, ""
}

// collectCells returns the row's cell nodes: td/th for table rows, child divs
// and spans for the legacy div layout.
func collectCells(row *html.Node) []*html.Node {
	var cells []*html.Node

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				switch c.Data {
				case "td", "th":
					cells = append(cells, c)

					continue
				}
			}

			walk(c)
		}
	}
	walk(row)

	if len(cells) > 0 {
		return cells
	}

	// Legacy layout: the row is a div and its element children are the cells.
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "div" || c.Data == "span") {
			cells = append(cells, c)
		}
	}

	return cells
}

// extractChannel identifies the channel cell: a channel logo's alt text, a
// channel-permalink anchor, or failing both, the first cell's text.
func extractChannel(cells []*html.Node) (string, int) {
	for i, cell := range cells {
		if img := findElement(cell, "img"); img != nil {
			if alt := strings.TrimSpace(attr(img, "alt")); alt != "" {
				return alt, i
			}
		}

		if a := findElement(cell, "a"); a != nil && isChannelLink(a) {
			if text := nodeText(a); text != "" {
				return text, i
			}
		}
	}

	return nodeText(cells[0]), 0
}

func isChannelLink(a *html.Node) bool {
	href := attr(a, "href")

	for _, prefix := range channelLinkPrefixes {
		if strings.Contains(href, prefix) {
			return true
		}
	}

	return false
}

// titleByClass returns the text of the first cell carrying a "title" marker in
// its class or style attribute.
func titleByClass(cells []*html.Node, _ int, _ string) string {
	for _, cell := range cells {
		if marked := findByMarker(cell, "title"); marked != nil {
			return nodeText(marked)
		}
	}

	return ""
}

// titleAfterChannel returns the text of the cell immediately following the
// channel cell, unless it is a bare time of day.
func titleAfterChannel(cells []*html.Node, channelIdx int, _ string) string {
	if channelIdx+1 >= len(cells) {
		return ""
	}

	text := nodeText(cells[channelIdx+1])
	if text == "" || timePattern.MatchString(text) {
		return ""
	}

	return text
}

// titleByScan falls back to the first cell text long enough to be a programme
// title that is neither the channel name nor a time of day.
func titleByScan(cells []*html.Node, _ int, channelName string) string {
	lowerName := strings.ToLower(channelName)

	for _, cell := range cells {
		text := nodeText(cell)
		if len(text) <= minTitleLen {
			continue
		}

		if timePattern.MatchString(text) {
			continue
		}

		if strings.Contains(strings.ToLower(text), lowerName) {
			continue
		}

		return text
	}

	return ""
}

// findByMarker returns n or the first descendant whose class or style
// attribute contains marker.
func findByMarker(n *html.Node, marker string) *html.Node {
	if n.Type == html.ElementNode {
		if strings.Contains(attr(n, "class"), marker) || strings.Contains(attr(n, "style"), marker) {
			return n
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByMarker(c, marker); found != nil {
			return found
		}
	}

	return nil
}

// findElement returns the first descendant element with the given tag.
func findElement(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}

		if found := findElement(c, tag); found != nil {
			return found
		}
	}

	return nil
}

// nodeText returns the node's text content with whitespace collapsed.
func nodeText(n *html.Node) string {
	var sb strings.Builder

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return strings.Join(strings.Fields(sb.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}

	return ""
}
