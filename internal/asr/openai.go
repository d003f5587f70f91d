package asr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"voiceinput/internal/audio"
	"voiceinput/internal/config"
)

// OpenAIClient transcribes through the official SDK. SDK retries are
// disabled so each call is a single attempt.
type OpenAIClient struct {
	cfg    config.Config
	token  string
	client openai.Client
	log    *slog.Logger
}

func NewOpenAI(cfg config.Config, token string, httpClient *http.Client) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithAPIKey(token),
		option.WithBaseURL(baseURL(cfg.APIEndpoint)),
		option.WithMaxRetries(0),
	}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	c := &OpenAIClient{
		cfg:    cfg,
		token:  token,
		client: openai.NewClient(opts...),
		log:    slog.Default().With("component", "asr"),
	}
	if cfg.ExtraConfig != "" {
		c.log.Warn("EXTRA_CONFIG is ignored by the openai backend")
	}
	return c
}

// baseURL strips the transcription route from a full endpoint URL.
func baseURL(endpoint string) string {
	base := strings.TrimSuffix(strings.TrimRight(endpoint, "/"), "/audio/transcriptions")
	return base + "/"
}

func (c *OpenAIClient) Transcribe(ctx context.Context, buf *audio.Buffer) (Result, error) {
	if c.token == "" {
		return Result{}, &AuthError{Message: fmt.Sprintf("%s is not set", c.cfg.TokenEnv)}
	}
	wavData, err := audio.EncodeWAV(buf)
	if err != nil {
		return Result{}, fmt.Errorf("encode wav: %w", err)
	}

	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(wavData), uploadName, "audio/wav"),
		Model: openai.AudioModel(c.cfg.Model),
	}
	if c.cfg.Language != "" {
		params.Language = openai.String(c.cfg.Language)
	}
	if c.cfg.Prompt != "" {
		params.Prompt = openai.String(c.cfg.Prompt)
	}

	res, err := c.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return Result{}, mapSDKError(err)
	}
	return Result{Text: strings.TrimSpace(res.Text), Raw: []byte(res.RawJSON())}, nil
}

func mapSDKError(err error) error {
	var apiErr *openai.Error
	if !errors.As(err, &apiErr) {
		return &NetworkError{Err: err}
	}
	msg := apiErr.Message
	if msg == "" {
		msg = http.StatusText(apiErr.StatusCode)
	}
	if apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden {
		return &AuthError{StatusCode: apiErr.StatusCode, Message: msg}
	}
	return &ServiceError{StatusCode: apiErr.StatusCode, Message: msg}
}
