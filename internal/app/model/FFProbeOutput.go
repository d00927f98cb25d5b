package model

// FFProbeOutput is the subset of `ffprobe -of json -show_streams -show_format` we read.
type FFProbeOutput struct {
	Streams []FFProbeStream `json:"streams"`
	Format  struct {
		FormatName string `json:"format_name"`
		Duration   string `json:"duration"`
		BitRate    string `json:"bit_rate"`
	} `json:"format"`
}

type FFProbeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	SampleRate int    `json:"sample_rate,string"`
	Channels   int    `json:"channels"`
	BitRate    string `json:"bit_rate,omitempty"`
}

// ProbeInfo describes the first audio stream of a file.
type ProbeInfo struct {
	FormatName  string  `json:"format_name"`
	CodecName   string  `json:"codec_name"`
	SampleRate  int     `json:"sample_rate"`
	Channels    int     `json:"channels"`
	BitRate     int64   `json:"bit_rate,omitempty"`
	DurationSec float64 `json:"duration_sec"`
}
