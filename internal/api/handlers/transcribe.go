package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"whisper-transcribe/internal/api/dto"
	"whisper-transcribe/internal/api/errors"
	"whisper-transcribe/internal/api/middleware"
	"whisper-transcribe/internal/app/api/provider"
	"whisper-transcribe/internal/app/audio"
	apperrors "whisper-transcribe/internal/app/errors"
	"whisper-transcribe/internal/app/model"
	"whisper-transcribe/internal/app/transcriber"
	"whisper-transcribe/internal/app/util/files"
)

// multipartOverhead is the room left on top of MaxBytes for part headers
// and other form fields before the request body is cut off.
const multipartOverhead = 1 << 20

// Transcriber is the part of transcriber.Service the upload route needs.
type Transcriber interface {
	Transcribe(ctx context.Context, path string, opts transcriber.Options) (*provider.TranscriptionResponse, error)
}

// UploadConfig controls where uploads land and how they are normalised.
// Nil Convert and Probe fall back to ffmpeg and ffprobe.
type UploadConfig struct {
	Dir      string
	MaxBytes int64
	Convert  func(ctx context.Context, inputPath, outputPath string) error
	Probe    func(ctx context.Context, path string) (*model.ProbeInfo, error)
}

// TranscribeHandler serves POST /api/chat/transcribe.
type TranscribeHandler struct {
	service Transcriber
	config  UploadConfig
	logger  *zap.Logger
}

func NewTranscribeHandler(service Transcriber, config UploadConfig, logger *zap.Logger) *TranscribeHandler {
	if config.Convert == nil {
		config.Convert = audio.ConvertToWav
	}
	if config.Probe == nil {
		config.Probe = audio.Probe
	}
	return &TranscribeHandler{
		service: service,
		config:  config,
		logger:  logger.Named("upload"),
	}
}

// Transcribe accepts one multipart "audio" file, converts it to 16kHz WAV
// and returns its transcript. Both files are removed afterwards.
func (h *TranscribeHandler) Transcribe(c *gin.Context) {
	if h.config.MaxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.config.MaxBytes+multipartOverhead)
	}

	header, err := c.FormFile("audio")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if apperrors.As(err, &tooLarge) {
			middleware.HandleError(c, errors.NewBadRequestError("File too large"))
			return
		}
		middleware.HandleError(c, errors.NewBadRequestError("No audio file provided"))
		return
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "audio/") {
		middleware.HandleError(c, errors.NewBadRequestError("Only audio files are allowed!"))
		return
	}
	if h.config.MaxBytes > 0 && header.Size > h.config.MaxBytes {
		middleware.HandleError(c, errors.NewBadRequestError("File too large"))
		return
	}

	logger := h.logger.With(zap.String("request_id", c.GetString(middleware.RequestIDKey)))

	src, err := header.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	uploadPath, err := files.SaveStream(h.config.Dir, files.UniqueName("audio", header.Filename), src)
	src.Close()
	if err != nil {
		h.fail(c, err)
		return
	}
	wavPath := audio.WavPathFor(uploadPath)
	defer func() {
		if err := files.RemoveIfExists(uploadPath, wavPath); err != nil {
			logger.Warn("cleanup failed", zap.Error(err))
		}
	}()
	logger.Debug("upload saved",
		zap.String("file", header.Filename),
		zap.String("content_type", header.Header.Get("Content-Type")),
		zap.Int64("size", header.Size),
	)

	ctx := c.Request.Context()
	if err := h.config.Convert(ctx, uploadPath, wavPath); err != nil {
		if !apperrors.Is(err, apperrors.ErrConversion) {
			err = apperrors.Wrap(err, apperrors.ErrConversion.Error())
		}
		h.fail(c, err)
		return
	}

	// Verification is informational only.
	if info, err := h.config.Probe(ctx, wavPath); err != nil {
		logger.Warn("audio verification failed, continuing", zap.Error(err))
	} else if !audio.Is16kHzWav(info) {
		logger.Warn("converted audio is not 16kHz PCM",
			zap.String("codec", info.CodecName),
			zap.Int("sample_rate", info.SampleRate),
		)
	}

	resp, err := h.service.Transcribe(ctx, wavPath, transcriber.Options{Language: c.PostForm("language")})
	if err != nil {
		h.fail(c, apperrors.Wrap(err, "failed to transcribe audio"))
		return
	}

	c.JSON(http.StatusOK, dto.TranscribeResponse{
		Success:       true,
		Transcription: strings.TrimSpace(resp.Text),
		Confidence:    resp.Confidence,
	})
}

func (h *TranscribeHandler) fail(c *gin.Context, err error) {
	middleware.HandleError(c, errors.WrapError(err, errors.KindInternal, "Error processing audio: "))
}
