package textutil

import (
	"reflect"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "trailing punctuation stripped",
			text: "see https://x.com/a, and https://x.com/b.",
			want: []string{"https://x.com/a", "https://x.com/b"},
		},
		{
			name: "duplicates removed in first-seen order",
			text: "https://a.com/1\nhttps://b.com/2\nhttps://a.com/1",
			want: []string{"https://a.com/1", "https://b.com/2"},
		},
		{
			name: "brackets and quotes trimmed",
			text: `links: (https://x.com/v?id=1) "https://y.com/w" [https://z.com]`,
			want: []string{"https://x.com/v?id=1", "https://y.com/w", "https://z.com"},
		},
		{
			name: "no urls",
			text: "just some plain text",
			want: nil,
		},
		{
			name: "http scheme accepted",
			text: "http://plain.example/file.mp4",
			want: []string{"http://plain.example/file.mp4"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractURLs(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractURLs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStripANSI(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"color codes", "\x1b[0;94m 12.3%\x1b[0m", " 12.3%"},
		{"plain text untouched", "45.6% of 10MiB", "45.6% of 10MiB"},
		{"cursor codes", "\x1b[K downloading", " downloading"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripANSI(tt.in); got != tt.want {
				t.Errorf("StripANSI(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		fallback string
		want     string
	}{
		{"basename from url", "https://x.com/media/clip.mp4", "file_0", "clip.mp4"},
		{"query string dropped", "https://x.com/clip.mp4?token=abc", "file_0", "clip.mp4"},
		{"empty path uses fallback", "https://x.com/", "file_3", "file_3"},
		{"reserved characters replaced", "https://x.com/a:b*c.mp4", "file_0", "a_b_c.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SanitizeFilename(tt.url, tt.fallback); got != tt.want {
				t.Errorf("SanitizeFilename() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00"},
		{59.9, "00:59"},
		{60, "01:00"},
		{125.4, "02:05"},
		{3601, "60:01"},
		{-5, "00:00"},
	}

	for _, tt := range tests {
		if got := FormatTimestamp(tt.seconds); got != tt.want {
			t.Errorf("FormatTimestamp(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
