package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
)

// Binaries used for probing and conversion. Overridable for tests and
// non-standard installs.
var (
	FFmpegPath  = "ffmpeg"
	FFprobePath = "ffprobe"
)

// ValidateInput checks that path names a regular, non-empty file.
func ValidateInput(path string) error {
	stat, err := os.Stat(path)
	if os.IsNotExist(err) {
		return apperrors.WithDetail(apperrors.ErrFileNotFound, path)
	}
	if err != nil {
		return apperrors.Wrapf(err, "stat %s", path)
	}
	if stat.IsDir() {
		return apperrors.WithDetail(apperrors.ErrNotAFile, path)
	}
	if stat.Size() == 0 {
		return apperrors.WithDetail(apperrors.ErrEmptyFile, path)
	}
	return nil
}

// Probe runs ffprobe on filePath and returns its first audio stream.
func Probe(ctx context.Context, filePath string) (*model.ProbeInfo, error) {
	cmd := exec.CommandContext(ctx, FFprobePath,
		"-v", "error",
		"-show_streams", "-show_format",
		"-of", "json",
		filePath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return ParseProbeOutput(output)
}

// ParseProbeOutput decodes ffprobe JSON output.
func ParseProbeOutput(output []byte) (*model.ProbeInfo, error) {
	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(output, &probeOutput); err != nil {
		return nil, fmt.Errorf("failed to parse audio info: %w", err)
	}

	for _, stream := range probeOutput.Streams {
		if stream.CodecType != "audio" {
			continue
		}
		info := &model.ProbeInfo{
			FormatName: probeOutput.Format.FormatName,
			CodecName:  stream.CodecName,
			SampleRate: stream.SampleRate,
			Channels:   stream.Channels,
		}
		if stream.BitRate != "" {
			info.BitRate, _ = strconv.ParseInt(stream.BitRate, 10, 64)
		}
		if probeOutput.Format.Duration != "" {
			info.DurationSec, _ = strconv.ParseFloat(strings.TrimSpace(probeOutput.Format.Duration), 64)
		}
		return info, nil
	}

	return nil, fmt.Errorf("no audio stream found")
}

// Is16kHzWav reports whether info describes 16-bit PCM at 16kHz, the input
// whisper.cpp expects.
func Is16kHzWav(info *model.ProbeInfo) bool {
	return info != nil && info.CodecName == "pcm_s16le" && info.SampleRate == 16000
}

// WavPathFor returns the sibling path used for a converted copy of inputFilePath.
func WavPathFor(inputFilePath string) string {
	return strings.TrimSuffix(inputFilePath, filepath.Ext(inputFilePath)) + "_16khz.wav"
}

// ConvertToWav converts any ffmpeg-readable input to 16kHz mono 16-bit WAV.
// An existing output file is overwritten.
func ConvertToWav(ctx context.Context, inputFilePath, outputWavPath string) error {
	cmd := exec.CommandContext(ctx, FFmpegPath,
		"-y",
		"-i", inputFilePath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outputWavPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return apperrors.WithDetail(apperrors.ErrConversion,
			fmt.Sprintf("FFmpeg error: %v, stderr: %s", err, lastLine(stderr.String())))
	}

	stat, err := os.Stat(outputWavPath)
	if err != nil {
		return apperrors.WithDetail(apperrors.ErrConversion, fmt.Sprintf("failed to verify output file: %v", err))
	}
	if stat.Size() == 0 {
		return apperrors.WithDetail(apperrors.ErrConversion, "conversion produced an empty file")
	}
	return nil
}

// EnsureWav16k returns a path to a 16kHz WAV version of inputFilePath,
// converting when needed. A converted copy gets a fresh name in outputDir
// (os.TempDir when empty), never next to the input. converted reports
// whether a new file was written; the caller owns removing it.
func EnsureWav16k(ctx context.Context, inputFilePath, outputDir string) (path string, converted bool, err error) {
	info, err := Probe(ctx, inputFilePath)
	if err == nil && Is16kHzWav(info) {
		return inputFilePath, false, nil
	}

	if outputDir == "" {
		outputDir = os.TempDir()
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", false, apperrors.WithDetail(apperrors.ErrConversion, fmt.Sprintf("create output dir: %v", err))
	}

	out := filepath.Join(outputDir, uuid.NewString()+"_16khz.wav")
	if err := ConvertToWav(ctx, inputFilePath, out); err != nil {
		_ = os.Remove(out)
		return "", false, err
	}
	return out, true, nil
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return lines[len(lines)-1]
}
