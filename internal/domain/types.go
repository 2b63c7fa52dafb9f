package domain

// SourceTask is one source identifier queued for acquisition.
// Index is stable and unique within a batch; correlation between
// progress events and results happens by index, never by position.
type SourceTask struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}

// FetchResult is the terminal outcome of fetching one SourceTask.
type FetchResult struct {
	Index int    `json:"index"`
	Path  string `json:"path,omitempty"`
	Err   error  `json:"-"`
}

// Success reports whether the fetch produced a local file.
func (r FetchResult) Success() bool {
	return r.Err == nil && r.Path != ""
}

// Segment is a time-aligned span of transcribed speech.
// End is zero when the engine did not report one.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end,omitempty"`
	Text  string  `json:"text"`
}

// Transcript is the output of the transcription stage.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// TimedLine is a display-ready transcript line with a mm:ss timestamp.
type TimedLine struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// PipelineResult is created once per task on success and immutable
// thereafter.
type PipelineResult struct {
	Summary        string      `json:"summary"`
	FullTranscript string      `json:"full_transcript"`
	Transcript     []TimedLine `json:"transcript"`
}

// TaskProgress is the poller-visible state of one task.
type TaskProgress struct {
	ID       string          `json:"id"`
	Index    int             `json:"index"`
	URL      string          `json:"url"`
	Status   Status          `json:"status"`
	Percent  int             `json:"progress"`
	Error    string          `json:"error,omitempty"`
	Filename string          `json:"filename,omitempty"`
	Result   *PipelineResult `json:"result,omitempty"`
}
