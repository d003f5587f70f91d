// Package asr sends recorded audio to a remote speech-to-text service.
package asr

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"voiceinput/internal/audio"
	"voiceinput/internal/config"
	"voiceinput/internal/jsonpath"
)

// Result is a successful transcription. Text may be empty.
type Result struct {
	Text string
	Raw  []byte
}

// Transcriber turns a finished recording into text. It makes exactly one
// attempt; failures are *AuthError, *NetworkError or *ServiceError.
type Transcriber interface {
	Transcribe(ctx context.Context, buf *audio.Buffer) (Result, error)
}

const uploadName = "recording.wav"

// Client performs multipart uploads to an OpenAI-compatible endpoint.
type Client struct {
	cfg            config.Config
	token          string
	httpClient     *http.Client
	extraConfigMap map[string]interface{}
	log            *slog.Logger
}

// New creates a new ASR client and parses ExtraConfig.
func New(cfg config.Config, token string, httpClient *http.Client) (*Client, error) {
	c := &Client{
		cfg:        cfg,
		token:      token,
		httpClient: httpClient,
		log:        slog.Default().With("component", "asr"),
	}
	if cfg.ExtraConfig != "" {
		c.extraConfigMap = make(map[string]interface{})
		if err := json.Unmarshal([]byte(cfg.ExtraConfig), &c.extraConfigMap); err != nil {
			return nil, fmt.Errorf("invalid extra-config JSON: %w", err)
		}
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	return c, nil
}

// Transcribe encodes buf as WAV and uploads it once.
func (c *Client) Transcribe(ctx context.Context, buf *audio.Buffer) (Result, error) {
	if c.token == "" {
		return Result{}, &AuthError{Message: fmt.Sprintf("%s is not set", c.cfg.TokenEnv)}
	}
	wavData, err := audio.EncodeWAV(buf)
	if err != nil {
		return Result{}, fmt.Errorf("encode wav: %w", err)
	}
	return c.upload(ctx, wavData)
}

func (c *Client) upload(ctx context.Context, wavData []byte) (Result, error) {
	body, contentType, err := c.buildForm(wavData)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIEndpoint, body)
	if err != nil {
		return Result{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", "voice-input/1.0")

	c.log.Debug("uploading", "endpoint", c.cfg.APIEndpoint, "bytes", len(wavData))
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, &NetworkError{Err: err}
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, &NetworkError{Err: fmt.Errorf("read response: %w", err)}
	}
	c.log.Debug("response", "status", resp.StatusCode, "elapsed", time.Since(start), "body", formatResponse(respBody))

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Result{Raw: respBody}, &AuthError{StatusCode: resp.StatusCode, Message: serviceMessage(resp, respBody)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return Result{Raw: respBody}, &ServiceError{StatusCode: resp.StatusCode, Message: serviceMessage(resp, respBody)}
	}

	return Result{Text: extractText(respBody, resp.Header.Get("Content-Type"), c.cfg.TEXTPath), Raw: respBody}, nil
}

func (c *Client) buildForm(wavData []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", uploadName)
	if err != nil {
		return nil, "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("write form file: %w", err)
	}

	base := make(map[string]interface{})
	if c.cfg.Model != "" {
		base["model"] = c.cfg.Model
	}
	if c.cfg.Language != "" {
		base["language"] = c.cfg.Language
	}
	if c.cfg.Prompt != "" {
		base["prompt"] = c.cfg.Prompt
	}
	for k, v := range c.extraConfigMap {
		base[k] = v
	}
	for k, v := range base {
		var field string
		switch val := v.(type) {
		case string:
			field = val
		case bool, float64, int:
			field = fmt.Sprintf("%v", val)
		default:
			if b, err := json.Marshal(val); err == nil {
				field = string(b)
			} else {
				field = fmt.Sprintf("%v", val)
			}
		}
		if err := writer.WriteField(k, field); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close form: %w", err)
	}
	return body, writer.FormDataContentType(), nil
}

// extractText reads the transcript from a JSON body via textPath, or
// takes a plain-text body (response_format=text) as is.
func extractText(body []byte, contentType, textPath string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil && mt == "text/plain" {
		return strings.TrimSpace(string(body))
	}
	text, err := jsonpath.Transcript(body, textPath)
	if errors.Is(err, jsonpath.ErrNotJSON) {
		return strings.TrimSpace(string(body))
	}
	return strings.TrimSpace(text)
}

func serviceMessage(resp *http.Response, body []byte) string {
	if msg := jsonpath.ExtractErrorMessage(body); msg != "" {
		return msg
	}
	if len(bytes.TrimSpace(body)) > 0 && utf8.Valid(body) {
		return formatResponse(bytes.TrimSpace(body))
	}
	return resp.Status
}

func formatResponse(b []byte) string {
	if len(b) == 0 {
		return "<empty>"
	}
	const maxText = 1000
	const maxBin = 256

	if utf8.Valid(b) {
		s := string(b)
		if len(s) > maxText {
			return fmt.Sprintf("%s... (truncated, total %d bytes)", s[:maxText], len(b))
		}
		return s
	}

	if len(b) > maxBin {
		return fmt.Sprintf("<binary %d bytes, prefix hex: %s...>", len(b), hex.EncodeToString(b[:maxBin]))
	}
	return fmt.Sprintf("<binary %d bytes, hex: %s>", len(b), hex.EncodeToString(b))
}
