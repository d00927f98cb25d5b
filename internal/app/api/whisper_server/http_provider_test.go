package whisper_server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whisper-transcribe/internal/app/api/provider"
	apperrors "whisper-transcribe/internal/app/errors"
)

// mockServer mimics whisper.cpp's examples/server endpoints and records the
// form fields it receives.
type mockServer struct {
	mu        sync.Mutex
	fields    map[string]string
	loaded    []string
	loadFails bool
	status    int
	body      string
}

func (m *mockServer) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/inference":
			require.NoError(t, r.ParseMultipartForm(10<<20))
			file, _, err := r.FormFile("file")
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("No file uploaded"))
				return
			}
			file.Close()

			m.mu.Lock()
			m.fields = map[string]string{}
			for key, values := range r.MultipartForm.Value {
				m.fields[key] = values[0]
			}
			status, body := m.status, m.body
			m.mu.Unlock()

			if status == 0 {
				status = http.StatusOK
			}
			if body == "" {
				data, _ := json.Marshal(WhisperServerResponse{
					Text:     " This is a test transcription. ",
					Language: "en",
					Duration: 5.2,
				})
				body = string(data)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = w.Write([]byte(body))

		case "/load":
			require.NoError(t, r.ParseMultipartForm(1<<20))
			m.mu.Lock()
			m.loaded = append(m.loaded, r.FormValue("model"))
			fails := m.loadFails
			m.mu.Unlock()
			if fails {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte("failed to load model"))
				return
			}
			_, _ = w.Write([]byte(`{"status":"ok"}`))

		case "/":
			_, _ = w.Write([]byte("whisper.cpp server"))

		default:
			http.NotFound(w, r)
		}
	})
}

func start(t *testing.T, m *mockServer) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(m.handler(t))
	t.Cleanup(server.Close)
	return server
}

func writeAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF....WAVE"), 0644))
	return path
}

func TestWhisperServerProvider_Transcript(t *testing.T) {
	m := &mockServer{}
	server := start(t, m)
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL, Temperature: 0.2})
	require.NoError(t, wsp.LoadModel(context.Background(), "base"))

	resp, err := wsp.TranscriptWithOptions(context.Background(), &provider.TranscriptionRequest{
		InputFilePath: writeAudio(t),
		Language:      "en",
	})
	require.NoError(t, err)
	assert.Equal(t, "This is a test transcription.", resp.Text)
	assert.Equal(t, "en", resp.Language)
	assert.Equal(t, "whisper_server", resp.Provider)
	assert.InDelta(t, 5.2, resp.Duration.Seconds(), 0.001)

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Equal(t, "json", m.fields["response_format"])
	assert.Equal(t, "0.20", m.fields["temperature"])
	assert.Equal(t, "en", m.fields["language"])

	// no model location configured, so nothing is pushed to /load
	assert.Empty(t, m.loaded)
}

func TestWhisperServerProvider_LoadModel(t *testing.T) {
	m := &mockServer{}
	server := start(t, m)
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL, ModelsDir: "/srv/models"})

	require.NoError(t, wsp.LoadModel(context.Background(), "base"))
	require.NoError(t, wsp.LoadModel(context.Background(), "base"))
	m.mu.Lock()
	assert.Equal(t, []string{"/srv/models/ggml-base.bin"}, m.loaded)
	m.mu.Unlock()
	assert.Equal(t, "/srv/models/ggml-base.bin", wsp.LoadedModel())

	m.mu.Lock()
	m.loadFails = true
	m.mu.Unlock()
	err := wsp.LoadModel(context.Background(), "large-v3")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrModelNotFound))
	assert.Equal(t, "/srv/models/ggml-base.bin", wsp.LoadedModel())
}

func TestWhisperServerProvider_ModelPathDoesNotSwitch(t *testing.T) {
	m := &mockServer{}
	server := start(t, m)
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL, ModelPath: "/srv/ggml-base.bin"})

	require.NoError(t, wsp.LoadModel(context.Background(), "base"))
	assert.Equal(t, "/srv/ggml-base.bin", wsp.LoadedModel())

	err := wsp.LoadModel(context.Background(), "small")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrModelNotFound))
	assert.Equal(t, "/srv/ggml-base.bin", wsp.LoadedModel())
	m.mu.Lock()
	assert.Equal(t, []string{"/srv/ggml-base.bin"}, m.loaded)
	m.mu.Unlock()
}

func TestWhisperServerProvider_RequiresLoadedModel(t *testing.T) {
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: "http://127.0.0.1:0"})
	_, err := wsp.Transcript(writeAudio(t))
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrModelNotLoaded))
}

func TestWhisperServerProvider_ServerError(t *testing.T) {
	m := &mockServer{status: http.StatusInternalServerError, body: "model crashed"}
	server := start(t, m)
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL})
	require.NoError(t, wsp.LoadModel(context.Background(), "base"))

	_, err := wsp.Transcript(writeAudio(t))
	require.Error(t, err)
	assert.Equal(t, "api_error", provider.ErrorCode(err))
	assert.Contains(t, err.Error(), "model crashed")

	var te *provider.TranscriptionError
	require.ErrorAs(t, err, &te)
	assert.True(t, te.Retryable)
}

func TestWhisperServerProvider_EmptyTranscript(t *testing.T) {
	m := &mockServer{body: `{"text": ""}`}
	server := start(t, m)
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL})
	require.NoError(t, wsp.LoadModel(context.Background(), "base"))

	text, err := wsp.Transcript(writeAudio(t))
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestParseResponse(t *testing.T) {
	wsp := NewWhisperServerProvider(WhisperServerConfig{BaseURL: "http://localhost"})

	tests := []struct {
		name   string
		format string
		data   string
		want   string
	}{
		{name: "json", format: "json", data: `{"text":"hello"}`, want: "hello"},
		{name: "text", format: "text", data: "  hello world\n", want: "hello world"},
		{name: "srt", format: "srt", data: "1\n00:00:00,000 --> 00:00:05,200\nThis is a test.\n", want: "This is a test."},
		{name: "vtt", format: "vtt", data: "WEBVTT\n\n00:00:00.000 --> 00:00:05.200\nThis is a test.\n", want: "This is a test."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := wsp.parseResponse([]byte(tt.data), tt.format)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Text)
		})
	}

	_, err := wsp.parseResponse([]byte("not json"), "json")
	assert.Error(t, err)
}

func TestValidateConfiguration(t *testing.T) {
	assert.NoError(t, NewWhisperServerProvider(WhisperServerConfig{BaseURL: "http://localhost:8080"}).ValidateConfiguration())
	assert.Error(t, NewWhisperServerProvider(WhisperServerConfig{}).ValidateConfiguration())
	assert.Error(t, NewWhisperServerProvider(WhisperServerConfig{BaseURL: "localhost:8080"}).ValidateConfiguration())
	assert.Error(t, NewWhisperServerProvider(WhisperServerConfig{BaseURL: "http://x", Temperature: 1.5}).ValidateConfiguration())
	assert.Error(t, NewWhisperServerProvider(WhisperServerConfig{BaseURL: "http://x", ResponseFormat: "xml"}).ValidateConfiguration())
}

func TestHealthCheck(t *testing.T) {
	server := start(t, &mockServer{})
	assert.NoError(t, NewWhisperServerProvider(WhisperServerConfig{BaseURL: server.URL}).HealthCheck(context.Background()))
}

func TestCreateWhisperServerProvider(t *testing.T) {
	t.Setenv("WHISPER_SERVER_URL", "")
	_, err := provider.CreateProvider("whisper_server", nil)
	require.Error(t, err)

	p, err := provider.CreateProvider("whisper_server", map[string]interface{}{
		"base_url":       "http://gpu-box:8080/",
		"timeout_sec":    120,
		"custom_headers": map[string]interface{}{"Authorization": "Bearer token"},
	})
	require.NoError(t, err)
	wsp := p.(*WhisperServerProvider)
	assert.Equal(t, "http://gpu-box:8080", wsp.config.BaseURL)
	assert.Equal(t, "Bearer token", wsp.config.CustomHeaders["Authorization"])
	assert.Equal(t, float64(120), wsp.config.Timeout.Seconds())
}
