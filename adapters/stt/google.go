package stt

import (
	"context"
	"fmt"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
	"go.uber.org/zap"

	"github.com/gabonpeche/iasted-server/domain/repositories"
)

const defaultRecognitionLanguage = "fr-FR"

// GoogleSTT implements SpeechToText using Google Cloud Speech-to-Text batch
// recognition. Alternate provider to Whisper, selected with STT_PROVIDER.
type GoogleSTT struct {
	logger *zap.Logger
}

var _ repositories.SpeechToText = (*GoogleSTT)(nil)

func NewGoogleSTT(logger *zap.Logger) *GoogleSTT {
	return &GoogleSTT{logger: logger}
}

// Transcribe converts webm/opus audio data to text.
func (g *GoogleSTT) Transcribe(ctx context.Context, audio []byte, langHint string) (string, error) {
	if len(audio) == 0 {
		return "", fmt.Errorf("audio data is empty")
	}

	client, err := speech.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create speech client: %w", err)
	}
	defer client.Close()

	language := langHint
	if language == "" {
		language = defaultRecognitionLanguage
	}

	resp, err := client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:     speechpb.RecognitionConfig_WEBM_OPUS,
			LanguageCode: language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return "", fmt.Errorf("STT failed: %w", err)
	}

	// Take the best alternative of each result, concatenated.
	var transcript string
	for _, result := range resp.Results {
		if len(result.Alternatives) > 0 {
			transcript += result.Alternatives[0].Transcript
		}
	}

	if transcript == "" {
		return "", fmt.Errorf("no speech detected in audio")
	}

	g.logger.Info("Transcription completed",
		zap.String("language", language),
		zap.Int("textLength", len(transcript)))
	return transcript, nil
}
