package common

import (
	"time"

	"github.com/spf13/cobra"

	"whisper-transcribe/internal/config"
)

// SettingsFlags are the flags that override config.Settings. Only flags
// the user set take effect, so env values survive unset flags.
type SettingsFlags struct {
	Provider string
	Model    string
	Language string
	Timeout  time.Duration
}

// Register adds the flags to cmd.
func (f *SettingsFlags) Register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.Provider, "provider", "p", "", "transcription provider (default from providers config)")
	cmd.Flags().StringVarP(&f.Model, "model", "m", config.DefaultModel, "model to load")
	cmd.Flags().StringVarP(&f.Language, "language", "l", "", "language hint, empty to auto-detect")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", config.DefaultCLITimeout, "maximum time for model load plus transcription")
}

// Settings returns env settings with the set flags applied.
func (f *SettingsFlags) Settings(cmd *cobra.Command) config.Settings {
	s := config.SettingsFromEnv()
	flags := cmd.Flags()
	if flags.Changed("provider") {
		s.Provider = f.Provider
	}
	if flags.Changed("model") {
		s.Model = f.Model
	}
	if flags.Changed("language") {
		s.Language = f.Language
	}
	if flags.Changed("timeout") {
		s.Timeout = f.Timeout
	}
	return s
}
