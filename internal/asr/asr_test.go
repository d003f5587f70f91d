package asr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"voiceinput/internal/audio"
	"voiceinput/internal/config"
)

func testBuffer() *audio.Buffer {
	return audio.NewBuffer(make([]int16, audio.SampleRate))
}

func newTestClient(t *testing.T, endpoint string, mutate func(*config.Config)) *Client {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.APIEndpoint = endpoint
	cfg.RequestTimeout = 2
	if mutate != nil {
		mutate(&cfg)
	}
	client, err := New(cfg, "sk-test", &http.Client{Timeout: cfg.Timeout()})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client
}

func TestTranscribeSendsMultipartWAV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("Authorization = %q", got)
		}
		if err := r.ParseMultipartForm(10 << 20); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.FormValue("model") != "whisper-1" || r.FormValue("language") != "en" {
			t.Errorf("unexpected fields: %v", r.MultipartForm.Value)
		}
		if r.FormValue("temperature") != "0" {
			t.Errorf("extra config not merged: %v", r.MultipartForm.Value)
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
		} else {
			defer f.Close()
			data, _ := io.ReadAll(f)
			if hdr.Filename != "recording.wav" || !strings.HasPrefix(string(data), "RIFF") {
				t.Errorf("unexpected upload %s (%d bytes)", hdr.Filename, len(data))
			}
		}
		_, _ = w.Write([]byte(`{"text":"  hello world \n"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *config.Config) {
		c.Language = "en"
		c.ExtraConfig = `{"temperature": 0}`
	})
	res, err := client.Transcribe(context.Background(), testBuffer())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "hello world" {
		t.Fatalf("expected trimmed text, got %q", res.Text)
	}
	if !strings.Contains(string(res.Raw), "hello world") {
		t.Fatalf("raw body not kept: %s", res.Raw)
	}
}

func TestTranscribeTextPath(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"alternatives":[{"transcript":"nested"}]}]}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, func(c *config.Config) {
		c.TEXTPath = "results[0].alternatives[0].transcript"
	})
	res, err := client.Transcribe(context.Background(), testBuffer())
	if err != nil || res.Text != "nested" {
		t.Fatalf("got %q, %v", res.Text, err)
	}
}

func TestTranscribePlainTextBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain words\n"))
	}))
	defer server.Close()

	res, err := newTestClient(t, server.URL, nil).Transcribe(context.Background(), testBuffer())
	if err != nil || res.Text != "plain words" {
		t.Fatalf("got %q, %v", res.Text, err)
	}
}

func TestTranscribePlainTextThatParsesAsJSON(t *testing.T) {
	tests := []struct {
		contentType string
		body        string
		want        string
	}{
		{"text/plain; charset=utf-8", "42\n", "42"},
		{"text/plain", `{"text":"braces are words too"}`, `{"text":"braces are words too"}`},
		{"", "true", "true"},
		{"application/json", `"hello"`, `"hello"`},
	}
	for _, tt := range tests {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tt.contentType != "" {
				w.Header().Set("Content-Type", tt.contentType)
			}
			_, _ = w.Write([]byte(tt.body))
		}))
		res, err := newTestClient(t, server.URL, nil).Transcribe(context.Background(), testBuffer())
		server.Close()
		if err != nil || res.Text != tt.want {
			t.Errorf("body %q (%s): got %q, %v; want %q", tt.body, tt.contentType, res.Text, err, tt.want)
		}
	}
}

func TestTranscribeEmptyTextIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"text":""}`))
	}))
	defer server.Close()

	res, err := newTestClient(t, server.URL, nil).Transcribe(context.Background(), testBuffer())
	if err != nil {
		t.Fatalf("empty text should succeed, got %v", err)
	}
	if res.Text != "" {
		t.Fatalf("expected empty text, got %q", res.Text)
	}
}

func TestTranscribeAuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, nil).Transcribe(context.Background(), testBuffer())
	var ae *AuthError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if ae.StatusCode != 401 || ae.Message != "Incorrect API key provided" {
		t.Fatalf("unexpected AuthError: %+v", ae)
	}
}

func TestTranscribeMissingToken(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.APIEndpoint = server.URL
	client, err := New(cfg, "", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Transcribe(context.Background(), testBuffer())
	var ae *AuthError
	if !errors.As(err, &ae) || !strings.Contains(ae.Error(), "OPENAI_API_KEY") {
		t.Fatalf("expected AuthError naming the variable, got %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("no request should be sent without a credential")
	}
}

func TestTranscribeServiceErrorNoRetry(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"server overloaded"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, nil).Transcribe(context.Background(), testBuffer())
	var se *ServiceError
	if !errors.As(err, &se) {
		t.Fatalf("expected ServiceError, got %T: %v", err, err)
	}
	if se.StatusCode != 503 || se.Message != "server overloaded" {
		t.Fatalf("unexpected ServiceError: %+v", se)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected a single attempt, got %d", hits.Load())
	}
}

func TestTranscribeServiceErrorNonJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(t, server.URL, nil).Transcribe(context.Background(), testBuffer())
	var se *ServiceError
	if !errors.As(err, &se) || !strings.Contains(se.Message, "502") {
		t.Fatalf("expected ServiceError with status text, got %v", err)
	}
}

func TestTranscribeNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(t, url, nil).Transcribe(context.Background(), testBuffer())
	var ne *NetworkError
	if !errors.As(err, &ne) {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
}

func TestTranscribeTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := newTestClient(t, server.URL, nil).Transcribe(ctx, testBuffer())
	var ne *NetworkError
	if !errors.As(err, &ne) || !ne.Timeout() {
		t.Fatalf("expected timeout NetworkError, got %v", err)
	}
}

func TestOpenAIBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/audio/transcriptions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		if r.Header.Get("Authorization") != "Bearer good" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"text":" from sdk "}`))
	}))
	defer server.Close()

	cfg := config.DefaultConfig()
	cfg.APIEndpoint = server.URL + "/v1/audio/transcriptions"

	res, err := NewOpenAI(cfg, "good", server.Client()).Transcribe(context.Background(), testBuffer())
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if res.Text != "from sdk" {
		t.Fatalf("got %q", res.Text)
	}

	_, err = NewOpenAI(cfg, "bad", server.Client()).Transcribe(context.Background(), testBuffer())
	var ae *AuthError
	if !errors.As(err, &ae) || ae.StatusCode != 401 {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
}

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		"https://api.openai.com/v1/audio/transcriptions":  "https://api.openai.com/v1/",
		"https://api.openai.com/v1/audio/transcriptions/": "https://api.openai.com/v1/",
		"http://localhost:8080/v1":                        "http://localhost:8080/v1/",
	}
	for in, want := range cases {
		if got := baseURL(in); got != want {
			t.Fatalf("baseURL(%q) = %q, want %q", in, got, want)
		}
	}
}
