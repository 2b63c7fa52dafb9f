package transcribe

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/nguyentantai21042004/media-digest/internal/domain"
)

var (
	reTimeline = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{2}):(\d{2}):(\d{2})[,.](\d{3})`)
	reIndex    = regexp.MustCompile(`^\d+$`)
)

// parseSRT converts SubRip subtitle content into time-aligned
// segments. Cue indices are dropped; consecutive text lines of one cue
// are joined with a space.
func parseSRT(content string) []domain.Segment {
	var segments []domain.Segment
	var current *domain.Segment

	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			if current != nil && current.Text != "" {
				segments = append(segments, *current)
			}
			current = nil
			continue
		}

		if m := reTimeline.FindStringSubmatch(trimmed); m != nil {
			current = &domain.Segment{
				Start: srtTimeSeconds(m[1], m[2], m[3], m[4]),
				End:   srtTimeSeconds(m[5], m[6], m[7], m[8]),
			}
			continue
		}

		if current == nil || reIndex.MatchString(trimmed) {
			continue
		}

		if current.Text == "" {
			current.Text = trimmed
		} else {
			current.Text += " " + trimmed
		}
	}

	if current != nil && current.Text != "" {
		segments = append(segments, *current)
	}
	return segments
}

func srtTimeSeconds(h, m, s, ms string) float64 {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	return float64(hours*3600+minutes*60+seconds) + float64(millis)/1000
}

// joinSegments flattens segment text into the raw transcript string.
func joinSegments(segments []domain.Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		parts = append(parts, seg.Text)
	}
	return strings.Join(parts, " ")
}
