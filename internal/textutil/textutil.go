package textutil

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	reURL  = regexp.MustCompile(`https?://[^\s]+`)
	reANSI = regexp.MustCompile(`\x1b(?:[@-Z\\-_]|\[[0-?]*[ -/]*[@-~])`)
)

// trailing characters a greedy URL match commonly drags along from
// surrounding prose
const trailingJunk = ".,;!?`\"'()[]<>"

// ExtractURLs pulls every well-formed http(s) URL out of free text,
// trimming trailing punctuation and de-duplicating while preserving
// first-seen order.
func ExtractURLs(text string) []string {
	var urls []string
	seen := make(map[string]bool)

	for _, match := range reURL.FindAllString(text, -1) {
		clean := strings.Trim(match, trailingJunk)
		if clean == "" || seen[clean] {
			continue
		}
		seen[clean] = true
		urls = append(urls, clean)
	}

	return urls
}

// StripANSI removes terminal color escape sequences. Resolver progress
// and error strings arrive colorized and must be cleaned before
// parsing or surfacing.
func StripANSI(s string) string {
	return reANSI.ReplaceAllString(s, "")
}

// SanitizeFilename derives a safe file name from a URL path segment,
// dropping any query string and falling back to the given default.
func SanitizeFilename(url string, fallback string) string {
	name := url
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.Index(name, "?"); i >= 0 {
		name = name[:i]
	}
	name = strings.Map(func(r rune) rune {
		switch r {
		case '\\', ':', '*', '"', '<', '>', '|':
			return '_'
		default:
			return r
		}
	}, name)
	if name == "" {
		return fallback
	}
	return name
}

// FormatTimestamp renders seconds as mm:ss for transcript display.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
