package serve

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"whisper-transcribe/cmd/transcribe/cmd/common"
	"whisper-transcribe/internal/app"
)

var (
	settingsFlags common.SettingsFlags
	host          string
	port          int
	uploadDir     string
	maxUploadMB   int64
)

func init() {
	settingsFlags.Register(Cmd)
	Cmd.Flags().StringVar(&host, "host", "", "listen address (default $TRANSCRIBE_HOST or 0.0.0.0)")
	Cmd.Flags().IntVar(&port, "port", 0, "listen port (default $HTTP_PORT or 8080)")
	Cmd.Flags().StringVar(&uploadDir, "upload-dir", "", "directory for temporary uploads (default $TRANSCRIBE_UPLOAD_DIR or uploads)")
	Cmd.Flags().Int64Var(&maxUploadMB, "max-upload-mb", 0, "largest accepted upload in MiB (default 10)")
}

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the audio upload transcription endpoint over HTTP",
	Long: `Serve POST /api/chat/transcribe.

- The model is loaded once at startup
- Uploads are converted to 16kHz mono WAV with ffmpeg before transcription
- /health, /metrics and /api/providers are served alongside`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings := settingsFlags.Settings(cmd)
		flags := cmd.Flags()
		if flags.Changed("host") {
			settings.ServerHost = host
		}
		if flags.Changed("port") {
			settings.ServerPort = port
		}
		if flags.Changed("upload-dir") {
			settings.UploadDir = uploadDir
		}
		if flags.Changed("max-upload-mb") {
			settings.MaxUploadBytes = maxUploadMB << 20
		}

		a, err := app.InitializeServer(common.Options(settings))
		if err != nil {
			return err
		}
		settings.Provider = a.Service.ProviderName()
		if err := settings.Validate(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := common.Logger()
		logger.Info("loading model", zap.String("provider", settings.Provider), zap.String("model", settings.Model))
		if err := a.Service.Load(ctx, settings.Model); err != nil {
			return err
		}

		return a.Server.Run(ctx)
	},
}
