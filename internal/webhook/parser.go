// internal/webhook/parser.go
package webhook

import (
	"regexp"
	"strconv"
	"strings"
)

// Marker is the invisible character (zero-width space) a cast must
// contain to count as a steal command. Plain posts that happen to match
// the text pattern are ignored without it.
const Marker = "\u200b"

var (
	// "steal ... from alice, @bob on @sometoken"
	commandRe = regexp.MustCompile(`(?i)from\s+(.+?)\s+on\s+@([A-Za-z0-9_.\-]+)`)
	tokenRe   = regexp.MustCompile(`/token/(\d+)`)
)

// Command is the parsed form of a steal cast.
type Command struct {
	TargetNames []string
	TokenHandle string
}

// HasMarker reports whether the text carries the steal marker.
func HasMarker(text string) bool {
	return strings.Contains(text, Marker)
}

// ParseCommand extracts the target display names and the token handle
// from the cast text. Names are comma-separated and a leading @ is
// stripped. Returns ok=false when the pattern does not match or no
// names survive trimming.
func ParseCommand(text string) (Command, bool) {
	m := commandRe.FindStringSubmatch(text)
	if m == nil {
		return Command{}, false
	}

	var names []string
	for _, raw := range strings.Split(m[1], ",") {
		name := strings.TrimSpace(raw)
		name = strings.TrimPrefix(name, "@")
		if name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return Command{}, false
	}
	return Command{TargetNames: names, TokenHandle: m[2]}, true
}

// ParseTokenID pulls the numeric token id out of the first embed URL
// matching the /token/<id> path pattern. Returns ok=false when no embed
// matches.
func ParseTokenID(urls []string) (int64, bool) {
	for _, u := range urls {
		if m := tokenRe.FindStringSubmatch(u); m != nil {
			id, err := strconv.ParseInt(m[1], 10, 64)
			if err == nil {
				return id, true
			}
		}
	}
	return 0, false
}
