package tts

import (
	"context"
	"fmt"
	"strings"

	texttospeech "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"google.golang.org/api/option"

	"github.com/tahcohcat/newsbreeze/internal/logger"
)

// GoogleTTS synthesizes builtin voices through Google Cloud
// Text-to-Speech, returning MP3 for web playback.
type GoogleTTS struct {
	client *texttospeech.Client
	logger *logger.Log
}

func NewGoogleTTS(ctx context.Context, credentialsFile string) (*GoogleTTS, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := texttospeech.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create google tts client: %w", err)
	}

	return &GoogleTTS{
		client: client,
		logger: logger.New(),
	}, nil
}

func (g *GoogleTTS) Name() string {
	return "Google Cloud Text-to-Speech"
}

func (g *GoogleTTS) Synthesize(ctx context.Context, text string, voice Voice) (*AudioClip, error) {
	if text == "" {
		return nil, fmt.Errorf("text cannot be empty")
	}

	languageCode := voice.Language
	if languageCode == "" {
		languageCode = extractLanguageCode(voice.Model)
	}

	req := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{
			InputSource: &ttspb.SynthesisInput_Text{Text: text},
		},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: languageCode,
			Name:         voice.Model,
		},
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding:   ttspb.AudioEncoding_MP3,
			SpeakingRate:    1.0,
			SampleRateHertz: 22050,
		},
	}

	g.logger.Debug(fmt.Sprintf("synthesizing %d chars with voice %s (%s)", len(text), voice.Model, languageCode))

	resp, err := g.client.SynthesizeSpeech(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to synthesize speech: %w", err)
	}
	if len(resp.AudioContent) == 0 {
		return nil, fmt.Errorf("empty audio content received")
	}

	return &AudioClip{Audio: resp.AudioContent, Format: "mp3", Voice: voice.ID}, nil
}

func (g *GoogleTTS) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// extractLanguageCode derives "en-US" from a model name like
// "en-US-Standard-C" when no explicit language is configured.
func extractLanguageCode(modelName string) string {
	parts := strings.Split(modelName, "-")
	if len(parts) >= 2 {
		return fmt.Sprintf("%s-%s", parts[0], parts[1])
	}
	return "en-US"
}
