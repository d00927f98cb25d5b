package files

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("  hello world \n\n"), 0644))

	got, err := ReadOutputFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got)

	_, err = ReadOutputFile(filepath.Join(dir, "missing.txt"))
	assert.Error(t, err)
}

func TestUniqueName(t *testing.T) {
	a := UniqueName("audio", "recording.WEBM")
	b := UniqueName("audio", "recording.webm")

	assert.True(t, strings.HasPrefix(a, "audio-"))
	assert.True(t, strings.HasSuffix(a, ".webm"))
	assert.NotEqual(t, a, b)

	assert.False(t, strings.Contains(UniqueName("audio", "../../etc/passwd"), ".."))
	assert.Equal(t, "", filepath.Ext(UniqueName("audio", "noext")))
	assert.Equal(t, "", filepath.Ext(UniqueName("audio", "x.averyveryverylongext")))
}

func TestSaveStreamAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")

	path, err := SaveStream(dir, "a.wav", strings.NewReader("RIFF"))
	require.NoError(t, err)
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(content))

	// refuses to clobber
	_, err = SaveStream(dir, "a.wav", strings.NewReader("other"))
	assert.Error(t, err)

	require.NoError(t, RemoveIfExists(path, "", filepath.Join(dir, "never-existed.wav")))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
