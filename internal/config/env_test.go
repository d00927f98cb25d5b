package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestGetAPIKeys(t *testing.T) {
	testCases := []struct {
		name          string
		openaiKey     string
		geminiKey     string
		expectError   bool
		errorContains string
	}{
		{
			name:      "valid OpenAI key",
			openaiKey: "sk-1234567890abcdef1234567890abcdef",
		},
		{
			name:      "valid Gemini key",
			geminiKey: "AIzaTest-1234567890abcdef1234567890",
		},
		{
			name:      "both valid keys",
			openaiKey: "sk-1234567890abcdef1234567890abcdef",
			geminiKey: "AIzaTest-1234567890abcdef1234567890",
		},
		{
			name:          "invalid OpenAI key format",
			openaiKey:     "invalid-key",
			expectError:   true,
			errorContains: "invalid OPENAI_API_KEY format",
		},
		{
			name:          "OpenAI key too short",
			openaiKey:     "sk-short",
			expectError:   true,
			errorContains: "too short",
		},
		{
			name:          "invalid Gemini key format",
			geminiKey:     "invalid-key",
			expectError:   true,
			errorContains: "invalid GEMINI_API_KEY format",
		},
		{
			name:          "Gemini key too short",
			geminiKey:     "AIza-short",
			expectError:   true,
			errorContains: "too short",
		},
		{
			name: "empty keys are allowed",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("OPENAI_API_KEY", tc.openaiKey)
			t.Setenv("GEMINI_API_KEY", tc.geminiKey)

			apiKeys, err := GetAPIKeys()

			if tc.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errorContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.openaiKey, apiKeys.OpenAI)
			assert.Equal(t, tc.geminiKey, apiKeys.Gemini)
		})
	}
}

func TestAPIKeysAvailable(t *testing.T) {
	assert.Empty(t, (&APIKeys{}).Available())
	assert.Equal(t, []string{"openai", "gemini"}, (&APIKeys{OpenAI: "sk-x", Gemini: "AIza"}).Available())
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	// nothing to load is not an error
	path, err := LoadEnv(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "", path)

	require.NoError(t, os.WriteFile(".env.local", []byte("TRANSCRIBE_TEST_FROM_ENV_FILE=local\n"), 0644))
	os.Unsetenv("TRANSCRIBE_TEST_FROM_ENV_FILE")
	t.Cleanup(func() { os.Unsetenv("TRANSCRIBE_TEST_FROM_ENV_FILE") })

	path, err = LoadEnv(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ".env.local", path)
	assert.Equal(t, "local", os.Getenv("TRANSCRIBE_TEST_FROM_ENV_FILE"))

	// .env takes precedence over .env.local
	require.NoError(t, os.WriteFile(".env", []byte("TRANSCRIBE_TEST_OTHER=root\n"), 0644))
	path, err = LoadEnv(zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, ".env", path)
}

func TestSettingsFromEnv(t *testing.T) {
	t.Setenv("TRANSCRIBE_PROVIDER", "openai")
	t.Setenv("TRANSCRIBE_MODEL", "small")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("TRANSCRIBE_MAX_UPLOAD_MB", "25")
	t.Setenv("TRANSCRIBE_TIMEOUT", "90s")

	s := SettingsFromEnv()
	assert.Equal(t, "openai", s.Provider)
	assert.Equal(t, "small", s.Model)
	assert.Equal(t, 9090, s.ServerPort)
	assert.Equal(t, int64(25<<20), s.MaxUploadBytes)
	assert.Equal(t, 90*time.Second, s.Timeout)
	assert.NoError(t, s.Validate())
}

func TestSettingsValidate(t *testing.T) {
	valid := DefaultSettings()
	valid.Provider = "whisper_cpp"
	require.NoError(t, valid.Validate())

	tests := []struct {
		name     string
		mutate   func(*Settings)
		contains string
	}{
		{name: "missing provider", mutate: func(s *Settings) { s.Provider = "" }, contains: "provider is required"},
		{name: "missing model", mutate: func(s *Settings) { s.Model = "" }, contains: "model is required"},
		{name: "bad format", mutate: func(s *Settings) { s.Format = "xml" }, contains: "format must be one of"},
		{name: "zero timeout", mutate: func(s *Settings) { s.Timeout = 0 }, contains: "timeout must be at least"},
		{name: "bad port", mutate: func(s *Settings) { s.ServerPort = 70000 }, contains: "serverport must be at most"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestValidateURL(t *testing.T) {
	assert.NoError(t, ValidateURL("http://localhost:8080", "whisper server"))
	assert.Error(t, ValidateURL("", "whisper server"))
	assert.Error(t, ValidateURL("localhost:8080", "whisper server"))
}

func TestGetProviderDefaults(t *testing.T) {
	assert.Equal(t, 300*time.Second, GetProviderDefaults("whisper_cpp").Timeout)
	assert.Equal(t, 60*time.Second, GetProviderDefaults("openai").Timeout)
	assert.Equal(t, 60*time.Second, GetProviderDefaults("unknown").Timeout)
}
