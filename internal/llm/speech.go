// ABOUTME: Text-to-speech and transcription against the OpenAI audio endpoints
// ABOUTME: Speech returns raw mp3 bytes; transcription returns plain text
package llm

import (
	"context"
	"fmt"
	"io"

	openai "github.com/sashabaranov/go-openai"
)

// GenerateSpeech renders text as mp3 audio. Voice may be empty, in which
// case a neutral default is used. Callers base64-encode the payload before
// storing it on a conversation.
func (c *Client) GenerateSpeech(ctx context.Context, text, voice string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	v := openai.SpeechVoice(voice)
	if v == "" {
		v = openai.VoiceAlloy
	}

	resp, err := c.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.speechModel),
		Input:          text,
		Voice:          v,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, transportError(err)
	}
	defer resp.Close()

	payload, err := io.ReadAll(resp)
	if err != nil {
		return nil, fmt.Errorf("llm: reading speech payload: %w", err)
	}
	return payload, nil
}

// TranscribeAudio converts recorded audio into transcript text. The name is
// passed so the API can infer the container format from its extension.
func (c *Client) TranscribeAudio(ctx context.Context, audio io.Reader, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.whisperModel,
		Reader:   audio,
		FilePath: name,
		Format:   openai.AudioResponseFormatText,
	})
	if err != nil {
		return "", transportError(err)
	}
	return resp.Text, nil
}
