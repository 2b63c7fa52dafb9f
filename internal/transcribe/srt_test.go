package transcribe

import (
	"testing"
)

const sampleSRT = `1
00:00:00,000 --> 00:00:03,500
Hello and welcome

2
00:00:03,500 --> 00:00:07,250
to this short
recording.

3
00:01:05,000 --> 00:01:06,000
Goodbye.
`

func TestParseSRT(t *testing.T) {
	segments := parseSRT(sampleSRT)

	if len(segments) != 3 {
		t.Fatalf("segments = %d, want 3", len(segments))
	}

	if segments[0].Start != 0 || segments[0].End != 3.5 {
		t.Errorf("segment 0 times = %v-%v, want 0-3.5", segments[0].Start, segments[0].End)
	}
	if segments[0].Text != "Hello and welcome" {
		t.Errorf("segment 0 text = %q", segments[0].Text)
	}
	if segments[1].Text != "to this short recording." {
		t.Errorf("multi-line cue text = %q", segments[1].Text)
	}
	if segments[2].Start != 65 {
		t.Errorf("segment 2 start = %v, want 65", segments[2].Start)
	}
}

func TestParseSRTDotMillisSeparator(t *testing.T) {
	segments := parseSRT("1\n00:00:01.250 --> 00:00:02.000\nhi\n")
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	if segments[0].Start != 1.25 {
		t.Errorf("start = %v, want 1.25", segments[0].Start)
	}
}

func TestParseSRTEmpty(t *testing.T) {
	if got := parseSRT(""); len(got) != 0 {
		t.Errorf("parseSRT(\"\") = %v, want empty", got)
	}
}

func TestParseSRTMissingTrailingBlank(t *testing.T) {
	segments := parseSRT("1\n00:00:00,000 --> 00:00:01,000\nfinal line")
	if len(segments) != 1 {
		t.Fatalf("segments = %d, want 1", len(segments))
	}
	if segments[0].Text != "final line" {
		t.Errorf("text = %q", segments[0].Text)
	}
}

func TestJoinSegments(t *testing.T) {
	segments := parseSRT(sampleSRT)
	want := "Hello and welcome to this short recording. Goodbye."
	if got := joinSegments(segments); got != want {
		t.Errorf("joinSegments() = %q, want %q", got, want)
	}
}
