package dto

// TranscribeResponse is the body of a successful upload transcription.
type TranscribeResponse struct {
	Success       bool     `json:"success"`
	Transcription string   `json:"transcription"`
	Confidence    *float64 `json:"confidence,omitempty"`
}
