package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-transcribe/cmd/transcribe/cmd/common"
	"whisper-transcribe/cmd/transcribe/cmd/providers"
	"whisper-transcribe/cmd/transcribe/cmd/serve"
	"whisper-transcribe/cmd/transcribe/cmd/version"
	"whisper-transcribe/internal/app"
	"whisper-transcribe/internal/app/progress"
	"whisper-transcribe/internal/app/transcriber"
	"whisper-transcribe/internal/config"
)

var (
	settingsFlags common.SettingsFlags
	format        string
	showProgress  bool
)

// rootCmd transcribes one audio file when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "transcribe [flags] <audio-file>",
	Short: "Transcribe an audio file and print the transcript as JSON",
	Long: `Transcribe an audio file with a speech-to-text model.

- Loads the model once (default "base")
- Runs inference on the given file
- Prints {"text": "..."} on stdout; logs and errors go to stderr`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: common.Setup,
	RunE:              runTranscribe,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

// Execute runs the command tree and exits 1 on any failure.
func Execute() {
	err := rootCmd.Execute()
	common.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(providers.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&common.Verbose, "verbose", "V", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&common.ConfigPath, "config", "c", "", "providers config file (default ~/.whisper-transcribe/providers.yaml)")

	settingsFlags.Register(rootCmd)
	rootCmd.Flags().StringVarP(&format, "format", "f", config.DefaultFormat, "output format: json, text or verbose")
	rootCmd.Flags().BoolVar(&showProgress, "progress", false, "show progress on stderr")
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	settings := settingsFlags.Settings(cmd)
	settings.Format = format

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, settings.Timeout)
	defer cancel()

	svc, err := app.InitializeService(common.Options(settings))
	if err != nil {
		return err
	}
	settings.Provider = svc.ProviderName()
	if err := settings.Validate(); err != nil {
		return err
	}

	return transcribe(ctx, svc, args[0], settings, cmd)
}

func transcribe(ctx context.Context, svc *transcriber.Service, path string, settings config.Settings, cmd *cobra.Command) error {
	logger := common.Logger()
	logger.Debug("transcribing",
		zap.String("file", path),
		zap.String("provider", settings.Provider),
		zap.String("model", settings.Model),
	)

	bars := progress.NewManager(progress.Config{Enabled: showProgress, Writer: cmd.ErrOrStderr()})
	defer bars.Wait()

	step := bars.Start(fmt.Sprintf("loading %s model (%s)", settings.Model, settings.Provider))
	err := svc.Load(ctx, settings.Model)
	step.Finish(err)
	if err != nil {
		return err
	}

	step = bars.Start("transcribing " + filepath.Base(path))
	resp, err := svc.Transcribe(ctx, path, transcriber.Options{Language: settings.Language})
	step.Finish(err)
	if err != nil {
		return err
	}

	bars.Wait()
	return transcriber.Write(cmd.OutOrStdout(), settings.Format, resp)
}
