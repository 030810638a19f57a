// Package match resolves playlist channel names against guide schedule keys.
package match

import (
	"strings"

	"github.com/telik/webtv/internal/namekey"
)

// MinKeyLen is the minimum key length for containment matches. Exact lookups
// are unaffected. Below this, short abbreviations ("E!", "C5") would match
// unrelated longer names; repository history also shows 2 at one point, 3 is
// the canonical value.
const MinKeyLen = 3

// ResolveProgram returns the programme currently listed for a channel name, or
// ("", false) when the schedule has no usable entry. Strategies in priority
// order, first hit wins:
//
//  1. exact lookup of the normalized name;
//  2. the normalized name contains a schedule key (playlist names tend to be
//     the guide name plus decorations like "HD");
//  3. a schedule key contains the normalized name.
func ResolveProgram(channelName string, schedule map[string]string) (string, bool) {
	if channelName == "" || len(schedule) == 0 {
		return "", false
	}

	searchKey := namekey.Normalize(channelName)
	if searchKey == "" {
		return "", false
	}

	if title, ok := schedule[searchKey]; ok {
		return title, true
	}

	for key, title := range schedule {
		if len(key) > MinKeyLen && strings.Contains(searchKey, key) {
			return title, true
		}
	}

	for key, title := range schedule {
		if len(searchKey) > MinKeyLen && strings.Contains(key, searchKey) {
			return title, true
		}
	}

	return "", false
}
