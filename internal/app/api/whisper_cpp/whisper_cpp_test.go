package whisper_cpp

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/audio"
	apperrors "whisper-transcribe/internal/app/errors"
)

// fakeWhisper writes a shell script that mimics whisper.cpp: it records its
// arguments and writes <-of>.txt with two segments.
const fakeWhisper = `#!/bin/sh
echo "$@" > "$(dirname "$0")/args.txt"
out=""
while [ $# -gt 0 ]; do
  case "$1" in
    -of) out="$2"; shift ;;
  esac
  shift
done
printf ' And so my fellow Americans,\n ask not what your country can do for you.\n\n' > "$out.txt"
`

const failingWhisper = `#!/bin/sh
echo "error: failed to initialize whisper context" >&2
exit 3
`

const slowWhisper = `#!/bin/sh
exec sleep 5
`

// fakeFFprobe fails so every input is treated as needing conversion.
const fakeFFprobe = `#!/bin/sh
exit 1
`

// fakeFFmpeg writes a stub WAV to its last argument.
const fakeFFmpeg = `#!/bin/sh
for last; do :; done
printf 'RIFF....WAVE' > "$last"
`

type fixture struct {
	dir       string
	binary    string
	modelsDir string
	input     string
}

func newFixture(t *testing.T, script string) fixture {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script fake binary")
	}

	dir := t.TempDir()
	f := fixture{
		dir:       dir,
		binary:    filepath.Join(dir, "whisper-cli"),
		modelsDir: filepath.Join(dir, "models"),
		input:     filepath.Join(dir, "jfk.wav"),
	}
	require.NoError(t, os.WriteFile(f.binary, []byte(script), 0755))
	require.NoError(t, os.MkdirAll(f.modelsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(f.modelsDir, "ggml-base.bin"), []byte("weights"), 0644))
	require.NoError(t, os.WriteFile(f.input, []byte("RIFF....WAVE"), 0644))
	return f
}

func (f fixture) transcriber(config LocalProviderConfig) *LocalTranscriber {
	config.BinaryPath = f.binary
	config.ModelsDir = f.modelsDir
	config.TempDir = filepath.Join(f.dir, "tmp")
	lt := NewLocalTranscriber(config)
	lt.prepare = func(ctx context.Context, path, outputDir string) (string, bool, error) {
		return path, false, nil
	}
	return lt
}

func TestLocalTranscriber_Transcript(t *testing.T) {
	f := newFixture(t, fakeWhisper)
	lt := f.transcriber(LocalProviderConfig{})

	require.NoError(t, lt.LoadModel(context.Background(), "base"))
	assert.Equal(t, filepath.Join(f.modelsDir, "ggml-base.bin"), lt.LoadedModel())

	text, err := lt.Transcript(f.input)
	require.NoError(t, err)
	assert.Equal(t, "And so my fellow Americans, ask not what your country can do for you.", text)

	args, err := os.ReadFile(filepath.Join(f.dir, "args.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "-m "+filepath.Join(f.modelsDir, "ggml-base.bin"))
	assert.Contains(t, string(args), "-l auto")
	assert.Contains(t, string(args), "-f "+f.input)

	// output file is cleaned up
	leftovers, _ := filepath.Glob(filepath.Join(f.dir, "tmp", "transcription_*"))
	assert.Empty(t, leftovers)
}

func TestLocalTranscriber_RequestOverrides(t *testing.T) {
	f := newFixture(t, fakeWhisper)
	lt := f.transcriber(LocalProviderConfig{Threads: 4, Prompt: "default prompt"})
	require.NoError(t, lt.LoadModel(context.Background(), "base"))

	resp, err := lt.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{
		InputFilePath: f.input,
		Language:      "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, "ggml-base.bin", resp.ModelUsed)
	assert.Equal(t, "whisper_cpp", resp.Provider)

	args, err := os.ReadFile(filepath.Join(f.dir, "args.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "-l en")
	assert.Contains(t, string(args), "-t 4")
	assert.Contains(t, string(args), "--prompt default prompt")
}

func TestLocalTranscriber_ConvertsIntoTempDir(t *testing.T) {
	f := newFixture(t, fakeWhisper)

	ffprobe := filepath.Join(f.dir, "ffprobe")
	ffmpeg := filepath.Join(f.dir, "ffmpeg")
	require.NoError(t, os.WriteFile(ffprobe, []byte(fakeFFprobe), 0755))
	require.NoError(t, os.WriteFile(ffmpeg, []byte(fakeFFmpeg), 0755))
	oldProbe, oldMpeg := audio.FFprobePath, audio.FFmpegPath
	audio.FFprobePath, audio.FFmpegPath = ffprobe, ffmpeg
	t.Cleanup(func() { audio.FFprobePath, audio.FFmpegPath = oldProbe, oldMpeg })

	input := filepath.Join(f.dir, "clip.mp3")
	sibling := filepath.Join(f.dir, "clip_16khz.wav")
	require.NoError(t, os.WriteFile(input, []byte("ID3"), 0644))
	require.NoError(t, os.WriteFile(sibling, []byte("USER DATA"), 0644))

	lt := f.transcriber(LocalProviderConfig{})
	lt.prepare = audio.EnsureWav16k
	require.NoError(t, lt.LoadModel(context.Background(), "base"))

	_, err := lt.Transcript(input)
	require.NoError(t, err)

	data, err := os.ReadFile(sibling)
	require.NoError(t, err)
	assert.Equal(t, "USER DATA", string(data))

	args, err := os.ReadFile(filepath.Join(f.dir, "args.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "-f "+filepath.Join(f.dir, "tmp")+string(os.PathSeparator))

	// converted copy is removed after the run
	leftovers, _ := filepath.Glob(filepath.Join(f.dir, "tmp", "*_16khz.wav"))
	assert.Empty(t, leftovers)
}

func TestLocalTranscriber_RequiresLoadedModel(t *testing.T) {
	f := newFixture(t, fakeWhisper)
	lt := f.transcriber(LocalProviderConfig{})

	_, err := lt.Transcript(f.input)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrModelNotLoaded))
}

func TestLocalTranscriber_LoadModel(t *testing.T) {
	f := newFixture(t, fakeWhisper)
	lt := f.transcriber(LocalProviderConfig{})

	err := lt.LoadModel(context.Background(), "large-v3")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrModelNotFound))
	assert.Contains(t, err.Error(), "ggml-large-v3.bin")
	assert.Equal(t, "", lt.LoadedModel())

	// empty model file is rejected
	require.NoError(t, os.WriteFile(filepath.Join(f.modelsDir, "ggml-tiny.bin"), nil, 0644))
	err = lt.LoadModel(context.Background(), "tiny")
	assert.True(t, apperrors.Is(err, apperrors.ErrModelNotFound))

	// loading twice is fine
	require.NoError(t, lt.LoadModel(context.Background(), "base"))
	require.NoError(t, lt.LoadModel(context.Background(), "base"))
}

func TestLocalTranscriber_MissingInput(t *testing.T) {
	f := newFixture(t, fakeWhisper)
	lt := f.transcriber(LocalProviderConfig{})
	require.NoError(t, lt.LoadModel(context.Background(), "base"))

	_, err := lt.Transcript(filepath.Join(f.dir, "missing.wav"))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrFileNotFound))
	assert.Equal(t, "file_not_found", provider.ErrorCode(err))
}

func TestLocalTranscriber_BinaryFailure(t *testing.T) {
	f := newFixture(t, failingWhisper)
	lt := f.transcriber(LocalProviderConfig{})
	require.NoError(t, lt.LoadModel(context.Background(), "base"))

	_, err := lt.Transcript(f.input)
	require.Error(t, err)
	assert.Equal(t, "transcription_failed", provider.ErrorCode(err))
	assert.Contains(t, err.Error(), "failed to initialize whisper context")
}

func TestLocalTranscriber_Timeout(t *testing.T) {
	f := newFixture(t, slowWhisper)
	lt := f.transcriber(LocalProviderConfig{Timeout: 100 * time.Millisecond})
	require.NoError(t, lt.LoadModel(context.Background(), "base"))

	_, err := lt.Transcript(f.input)
	require.Error(t, err)
	assert.Equal(t, "timeout", provider.ErrorCode(err))
}

func TestResolveModelPath(t *testing.T) {
	tests := []struct {
		name   string
		config LocalProviderConfig
		model  string
		want   string
		err    bool
	}{
		{name: "name in models dir", config: LocalProviderConfig{ModelsDir: "/models"}, model: "base", want: "/models/ggml-base.bin"},
		{name: "empty name is base", config: LocalProviderConfig{ModelsDir: "/models"}, model: "", want: "/models/ggml-base.bin"},
		{name: "file name in models dir", config: LocalProviderConfig{ModelsDir: "/models"}, model: "ggml-small.bin", want: "/models/ggml-small.bin"},
		{name: "absolute path", config: LocalProviderConfig{ModelsDir: "/models"}, model: "/opt/m.bin", want: "/opt/m.bin"},
		{name: "explicit model path", config: LocalProviderConfig{ModelPath: "/opt/ggml-base.en.bin"}, model: "base", want: "/opt/ggml-base.en.bin"},
		{name: "model path matching name", config: LocalProviderConfig{ModelPath: "/opt/ggml-small.bin"}, model: "small", want: "/opt/ggml-small.bin"},
		{name: "model path other name", config: LocalProviderConfig{ModelPath: "/opt/ggml-base.bin"}, model: "small", err: true},
		{name: "nothing configured", config: LocalProviderConfig{}, model: "base", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewLocalTranscriber(tt.config).ResolveModelPath(tt.model)
			if tt.err {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestLocalTranscriber_ModelPathDoesNotSwitch(t *testing.T) {
	f := newFixture(t, fakeWhisper)
	config := LocalProviderConfig{BinaryPath: f.binary, ModelPath: filepath.Join(f.modelsDir, "ggml-base.bin")}
	lt := NewLocalTranscriber(config)

	require.NoError(t, lt.LoadModel(context.Background(), "base"))

	err := lt.LoadModel(context.Background(), "tiny")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrModelNotFound))
	assert.Contains(t, err.Error(), "models_dir")
	assert.Equal(t, config.ModelPath, lt.LoadedModel())
}

func TestJoinSegments(t *testing.T) {
	assert.Equal(t, "", JoinSegments(""))
	assert.Equal(t, "one two", JoinSegments(" one\n\n two \n"))
}

func TestCreateWhisperCppProvider(t *testing.T) {
	_, err := provider.CreateProvider("whisper_cpp", map[string]interface{}{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binary_path")

	_, err = provider.CreateProvider("whisper_cpp", map[string]interface{}{"binary_path": "/bin/whisper"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "models_dir")

	p, err := provider.CreateProvider("whisper_cpp", map[string]interface{}{
		"binary_path": "/bin/whisper",
		"models_dir":  "/models",
		"threads":     8,
		"timeout_sec": 30,
	})
	require.NoError(t, err)
	lt := p.(*LocalTranscriber)
	assert.Equal(t, 8, lt.config.Threads)
	assert.Equal(t, 30*time.Second, lt.config.Timeout)
	assert.True(t, strings.HasSuffix(lt.config.TempDir, "whisper_cpp"))
	assert.NoError(t, p.ValidateConfiguration())
}
