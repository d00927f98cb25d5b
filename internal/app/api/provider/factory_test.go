package provider

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProvider(t *testing.T) {
	RegisterProviderType("test_mock", func(settings map[string]interface{}) (TranscriptionProvider, error) {
		name := StringSetting(settings, "name")
		if name == "" {
			return nil, fmt.Errorf("test_mock requires 'name' setting")
		}
		return &MockTranscriptionProvider{name: name}, nil
	})

	p, err := CreateProvider("test_mock", map[string]interface{}{"name": "x"})
	require.NoError(t, err)
	assert.Equal(t, "x", p.GetProviderInfo().Name)

	_, err = CreateProvider("test_mock", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires 'name'")

	_, err = CreateProvider("no_such_type", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")

	assert.Contains(t, ListRegisteredProviders(), "test_mock")
}

func TestSettingHelpers(t *testing.T) {
	settings := map[string]interface{}{
		"s":     "value",
		"f":     1.5,
		"i":     3,
		"b":     true,
		"wrong": []string{"x"},
	}

	assert.Equal(t, "value", StringSetting(settings, "s"))
	assert.Equal(t, "", StringSetting(settings, "f"))

	f, ok := FloatSetting(settings, "f")
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	i, ok := IntSetting(settings, "i")
	assert.True(t, ok)
	assert.Equal(t, 3, i)

	_, ok = IntSetting(settings, "wrong")
	assert.False(t, ok)

	assert.True(t, BoolSetting(settings, "b"))
	assert.False(t, BoolSetting(settings, "missing"))
}

func TestGetAudioFormatFromFilename(t *testing.T) {
	assert.Equal(t, FormatWAV, GetAudioFormatFromFilename("/a/b/clip.WAV"))
	assert.Equal(t, FormatFLAC, GetAudioFormatFromFilename("x.flac"))
	assert.Equal(t, FormatWEBM, GetAudioFormatFromFilename("audio-123.webm"))
	assert.Equal(t, AudioFormat(""), GetAudioFormatFromFilename("notes.txt"))
	assert.Equal(t, AudioFormat(""), GetAudioFormatFromFilename("noext"))
}

func TestErrorCode(t *testing.T) {
	assert.Equal(t, "", ErrorCode(nil))
	assert.Equal(t, "file_not_found", ErrorCode(fmt.Errorf("wrap: %w",
		NewError("openai", "file_not_found", "missing", false, nil))))
	assert.Equal(t, "timeout", ErrorCode(context.DeadlineExceeded))
	assert.Equal(t, "canceled", ErrorCode(context.Canceled))
	assert.Equal(t, "unknown", ErrorCode(errors.New("boom")))
}

func TestTranscriptionErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewError("whisper_cpp", "transcription_failed", "transcription failed", true, cause)

	assert.ErrorIs(t, err, cause)
	var te *TranscriptionError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Retryable)
	assert.Equal(t, "whisper_cpp", te.Provider)
}

func TestPrometheusMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProviderMetrics(reg)

	m.RecordSuccess("openai", 1.2, 30)
	m.RecordSuccess("openai", 0.8, 0)
	m.RecordFailure("openai", "timeout", 60)
	m.RecordModelLoad("openai", nil)
	m.RecordModelLoad("openai", errors.New("x"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transcriptions.WithLabelValues("openai", "success", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transcriptions.WithLabelValues("openai", "failure", "timeout")))
	assert.Equal(t, 30.0, testutil.ToFloat64(m.audioSeconds.WithLabelValues("openai")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.modelLoads.WithLabelValues("openai", "failure")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestModelSlot(t *testing.T) {
	var slot ModelSlot
	assert.Equal(t, "", slot.Get())
	slot.Set("ggml-base.bin")
	assert.Equal(t, "ggml-base.bin", slot.Get())
}

func TestModelFileServes(t *testing.T) {
	assert.True(t, ModelFileServes("/opt/ggml-small.bin", ""))
	assert.True(t, ModelFileServes("/opt/ggml-small.bin", "base"))
	assert.True(t, ModelFileServes("/opt/ggml-small.bin", "small"))
	assert.False(t, ModelFileServes("/opt/ggml-small.bin", "tiny"))
	assert.False(t, ModelFileServes("/opt/custom.bin", "large-v3"))
}
