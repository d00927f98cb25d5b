package testutil

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WavBytes returns a minimal 16 kHz mono PCM WAV with n bytes of silence.
func WavBytes(n int) []byte {
	header := make([]byte, 44)
	copy(header[0:], "RIFF")
	binary.LittleEndian.PutUint32(header[4:], uint32(36+n))
	copy(header[8:], "WAVE")
	copy(header[12:], "fmt ")
	binary.LittleEndian.PutUint32(header[16:], 16)    // chunk size
	binary.LittleEndian.PutUint16(header[20:], 1)     // PCM
	binary.LittleEndian.PutUint16(header[22:], 1)     // mono
	binary.LittleEndian.PutUint32(header[24:], 16000) // sample rate
	binary.LittleEndian.PutUint32(header[28:], 32000) // byte rate
	binary.LittleEndian.PutUint16(header[32:], 2)     // block align
	binary.LittleEndian.PutUint16(header[34:], 16)    // bits per sample
	copy(header[36:], "data")
	binary.LittleEndian.PutUint32(header[40:], uint32(n))
	return append(header, make([]byte, n)...)
}

// CreateTestAudioFile creates a minimal valid WAV file in a temp directory
func CreateTestAudioFile(t *testing.T, filename string) string {
	t.Helper()
	return writeFile(t, filename, WavBytes(2048))
}

// CreateCorruptedAudioFile creates a file with invalid audio data for testing
func CreateCorruptedAudioFile(t *testing.T, filename string) string {
	t.Helper()
	return writeFile(t, filename, []byte("This is not a valid audio file!"))
}

// CreateEmptyFile creates an empty file for testing
func CreateEmptyFile(t *testing.T, filename string) string {
	t.Helper()
	return writeFile(t, filename, nil)
}

func writeFile(t *testing.T, filename string, data []byte) string {
	t.Helper()
	fullPath := filepath.Join(t.TempDir(), filepath.Base(filename))
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		t.Fatalf("Failed to create test file %s: %v", fullPath, err)
	}
	return fullPath
}
