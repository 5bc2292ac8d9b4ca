package domain

// RecordingState is the state of the microphone capture pipeline.
type RecordingState int

const (
	RecordingIdle RecordingState = iota
	RecordingActive
	RecordingTranscribing
)

func (s RecordingState) String() string {
	switch s {
	case RecordingIdle:
		return "idle"
	case RecordingActive:
		return "recording"
	case RecordingTranscribing:
		return "transcribing"
	default:
		return "unknown"
	}
}

// AudioHandle references a finished local recording. The zero value means
// the capture produced nothing.
type AudioHandle struct {
	URI         string `json:"uri"`
	ContentType string `json:"content_type,omitempty"`
}

// IsZero reports whether the handle references no audio.
func (h AudioHandle) IsZero() bool { return h.URI == "" }

// TranscriptionRequest describes a single speech-to-text upload.
type TranscriptionRequest struct {
	Audio       []byte
	Filename    string
	ContentType string
	Model       string
	Language    string
}
