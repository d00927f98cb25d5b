package main

import (
	"whisper-transcribe/cmd/transcribe/cmd"

	// Import providers to register them
	_ "whisper-transcribe/internal/app/api/gemini"
	_ "whisper-transcribe/internal/app/api/openai/whisper"
	_ "whisper-transcribe/internal/app/api/whisper_cpp"
	_ "whisper-transcribe/internal/app/api/whisper_server"
)

func main() {
	cmd.Execute()
}
