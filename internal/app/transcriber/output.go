package transcriber

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf16"

	"whisper-transcribe/internal/app/api/provider"
)

// Output formats accepted by Write.
const (
	FormatJSON    = "json"
	FormatText    = "text"
	FormatVerbose = "verbose"
)

// Result is the payload printed on success.
type Result struct {
	Text string `json:"text"`
}

// EncodeJSON writes r as one line in the same byte layout Python's
// json.dumps produces with default settings: ", " and ": " separators,
// every non-ASCII rune as a \uXXXX escape, and no HTML escaping.
func EncodeJSON(w io.Writer, r Result) error {
	var b strings.Builder
	b.WriteString(`{"text": `)
	writeASCIIString(&b, r.Text)
	b.WriteString("}\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func writeASCIIString(b *strings.Builder, s string) {
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		default:
			switch {
			case r >= 0x20 && r < 0x7f:
				b.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
}

// verboseResult is the full response in the verbose format.
type verboseResult struct {
	Text          string                          `json:"text"`
	Language      string                          `json:"language,omitempty"`
	DurationSec   float64                         `json:"duration_sec,omitempty"`
	Confidence    *float64                        `json:"confidence,omitempty"`
	Provider      string                          `json:"provider"`
	Model         string                          `json:"model"`
	ProcessingSec float64                         `json:"processing_sec"`
	Segments      []provider.TranscriptionSegment `json:"segments,omitempty"`
}

// Write prints resp on w in the requested format.
func Write(w io.Writer, format string, resp *provider.TranscriptionResponse) error {
	switch format {
	case "", FormatJSON:
		return EncodeJSON(w, Result{Text: resp.Text})
	case FormatText:
		_, err := fmt.Fprintln(w, resp.Text)
		return err
	case FormatVerbose:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(verboseResult{
			Text:          resp.Text,
			Language:      resp.Language,
			DurationSec:   resp.Duration.Seconds(),
			Confidence:    resp.Confidence,
			Provider:      resp.Provider,
			Model:         resp.ModelUsed,
			ProcessingSec: resp.ProcessingTime.Seconds(),
			Segments:      resp.Segments,
		})
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
