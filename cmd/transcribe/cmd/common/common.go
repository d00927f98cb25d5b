package common

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-transcribe/internal/app"
	appcommon "whisper-transcribe/internal/app/common"
	"whisper-transcribe/internal/config"
)

// Flags shared by every command.
var (
	Verbose    bool
	ConfigPath string
)

var logger = zap.NewNop()

// Setup builds the stderr logger and loads .env files. It runs before
// every command.
func Setup(cmd *cobra.Command, args []string) error {
	l, err := appcommon.NewLogger(Verbose)
	if err != nil {
		return err
	}
	logger = l
	zap.ReplaceGlobals(l)

	// A malformed key only breaks its own backend, so keep going.
	if _, err := config.InitializeConfig(l); err != nil {
		l.Warn("configuration warning", zap.Error(err))
	}
	return nil
}

// Logger returns the logger built by Setup.
func Logger() *zap.Logger {
	return logger
}

// Sync flushes the logger; errors on non-file stderr are ignored.
func Sync() {
	_ = logger.Sync()
}

// Options builds injector options from settings and the shared flags.
func Options(settings config.Settings) app.Options {
	return app.Options{
		ConfigPath: ConfigPath,
		Settings:   settings,
		Logger:     logger,
	}
}
