package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"voiceinput/internal/hotkey"
	"voiceinput/internal/inject"
	"voiceinput/internal/jsonpath"
)

// Config holds configurable parameters. It is read once at startup.
type Config struct {
	APIEndpoint    string `json:"API_ENDPOINT" toml:"API_ENDPOINT" yaml:"API_ENDPOINT"`
	TokenEnv       string `json:"TOKEN_ENV" toml:"TOKEN_ENV" yaml:"TOKEN_ENV"`
	Model          string `json:"MODEL" toml:"MODEL" yaml:"MODEL"`
	Language       string `json:"LANGUAGE" toml:"LANGUAGE" yaml:"LANGUAGE"`
	Prompt         string `json:"PROMPT" toml:"PROMPT" yaml:"PROMPT"`
	TEXTPath       string `json:"TEXT_PATH" toml:"TEXT_PATH" yaml:"TEXT_PATH"`
	ExtraConfig    string `json:"EXTRA_CONFIG" toml:"EXTRA_CONFIG" yaml:"EXTRA_CONFIG"`
	ASRBackend     string `json:"ASR_BACKEND" toml:"ASR_BACKEND" yaml:"ASR_BACKEND"`
	RequestTimeout int    `json:"REQUEST_TIMEOUT" toml:"REQUEST_TIMEOUT" yaml:"REQUEST_TIMEOUT"`
	EnableHTTP2    bool   `json:"ENABLE_HTTP2" toml:"ENABLE_HTTP2" yaml:"ENABLE_HTTP2"`
	VerifySSL      bool   `json:"VERIFY_SSL" toml:"VERIFY_SSL" yaml:"VERIFY_SSL"`

	Hotkey        string `json:"HOTKEY" toml:"HOTKEY" yaml:"HOTKEY"`
	CancelKey     string `json:"CANCEL_KEY" toml:"CANCEL_KEY" yaml:"CANCEL_KEY"`
	DebounceMS    int    `json:"DEBOUNCE_MS" toml:"DEBOUNCE_MS" yaml:"DEBOUNCE_MS"`
	MinDurationMS int    `json:"MIN_DURATION_MS" toml:"MIN_DURATION_MS" yaml:"MIN_DURATION_MS"`
	InputBackend  string `json:"INPUT_BACKEND" toml:"INPUT_BACKEND" yaml:"INPUT_BACKEND"`
	InputDevice   string `json:"INPUT_DEVICE" toml:"INPUT_DEVICE" yaml:"INPUT_DEVICE"`

	AudioDevice     string `json:"AUDIO_DEVICE" toml:"AUDIO_DEVICE" yaml:"AUDIO_DEVICE"`
	FramesPerBuffer int    `json:"FRAMES_PER_BUFFER" toml:"FRAMES_PER_BUFFER" yaml:"FRAMES_PER_BUFFER"`

	ClipboardBackend string `json:"CLIPBOARD_BACKEND" toml:"CLIPBOARD_BACKEND" yaml:"CLIPBOARD_BACKEND"`
	PasteKey         string `json:"PASTE_KEY" toml:"PASTE_KEY" yaml:"PASTE_KEY"`
	PasteDelayMS     int    `json:"PASTE_DELAY_MS" toml:"PASTE_DELAY_MS" yaml:"PASTE_DELAY_MS"`
	RestoreDelayMS   int    `json:"RESTORE_DELAY_MS" toml:"RESTORE_DELAY_MS" yaml:"RESTORE_DELAY_MS"`

	Notification bool   `json:"NOTIFICATION" toml:"NOTIFICATION" yaml:"NOTIFICATION"`
	SoundCues    bool   `json:"SOUND_CUES" toml:"SOUND_CUES" yaml:"SOUND_CUES"`
	CacheDir     string `json:"CACHE_DIR" toml:"CACHE_DIR" yaml:"CACHE_DIR"`
	KeepCache    bool   `json:"KEEP_CACHE" toml:"KEEP_CACHE" yaml:"KEEP_CACHE"`
	LogLevel     string `json:"LOG_LEVEL" toml:"LOG_LEVEL" yaml:"LOG_LEVEL"`
	LogFile      string `json:"LOG_FILE" toml:"LOG_FILE" yaml:"LOG_FILE"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		APIEndpoint:    "https://api.openai.com/v1/audio/transcriptions",
		TokenEnv:       "OPENAI_API_KEY",
		Model:          "whisper-1",
		Language:       "",
		Prompt:         "",
		TEXTPath:       "text",
		ExtraConfig:    "",
		ASRBackend:     "http",
		RequestTimeout: 30,
		EnableHTTP2:    true,
		VerifySSL:      true,

		Hotkey:        "super+shift+v",
		CancelKey:     "",
		DebounceMS:    250,
		MinDurationMS: 500,
		InputBackend:  "evdev",
		InputDevice:   "",

		AudioDevice:     "",
		FramesPerBuffer: 1024,

		ClipboardBackend: "auto",
		PasteKey:         "ctrl+v",
		PasteDelayMS:     50,
		RestoreDelayMS:   150,

		Notification: true,
		SoundCues:    true,
		CacheDir:     "",
		KeepCache:    false,
		LogLevel:     "info",
		LogFile:      defaultLogFile(),
	}
}

func defaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "voice-input", "voice-input.log")
}

// Load loads config from a JSON, TOML or YAML file if provided.
// Keys missing from the file keep their default values.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	return cfg, nil
}

// Resolve picks the config file to load: the explicit path, else
// ./config.json when present, else none.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	for _, name := range []string{"config.json", "config.toml", "config.yaml"} {
		if _, err := os.Stat(name); err == nil {
			return name, nil
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat %s: %w", name, err)
		}
	}
	return "", nil
}

// Validate verifies config fields and returns an error if any value is invalid.
func Validate(cfg *Config) error {
	if cfg.APIEndpoint == "" {
		return fmt.Errorf("API_ENDPOINT is empty")
	}
	if cfg.TokenEnv == "" {
		return fmt.Errorf("TOKEN_ENV is empty")
	}
	if cfg.Hotkey == "" {
		return fmt.Errorf("HOTKEY is empty")
	}
	if _, err := hotkey.ParseCombo(cfg.Hotkey); err != nil {
		return fmt.Errorf("HOTKEY: %w", err)
	}
	if cfg.CancelKey != "" {
		if _, err := hotkey.ParseCombo(cfg.CancelKey); err != nil {
			return fmt.Errorf("CANCEL_KEY: %w", err)
		}
	}
	if _, err := inject.ParseChord(cfg.PasteKey); err != nil {
		return fmt.Errorf("PASTE_KEY: %w", err)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: %d (must be > 0)", cfg.RequestTimeout)
	}
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("invalid DEBOUNCE_MS: %d (must be >= 0)", cfg.DebounceMS)
	}
	if cfg.MinDurationMS < 0 {
		return fmt.Errorf("invalid MIN_DURATION_MS: %d (must be >= 0)", cfg.MinDurationMS)
	}
	if cfg.FramesPerBuffer < 64 || cfg.FramesPerBuffer > 16384 {
		return fmt.Errorf("invalid FRAMES_PER_BUFFER: %d (allowed 64..16384)", cfg.FramesPerBuffer)
	}
	if cfg.PasteDelayMS < 0 || cfg.RestoreDelayMS < 0 {
		return fmt.Errorf("paste delays must be >= 0")
	}

	allowed := map[string][]string{
		"ASR_BACKEND":       {"http", "openai"},
		"INPUT_BACKEND":     {"evdev", "hook"},
		"CLIPBOARD_BACKEND": {"auto", "system", "wayland"},
		"LOG_LEVEL":         {"debug", "info", "warn", "error"},
	}
	values := map[string]string{
		"ASR_BACKEND":       cfg.ASRBackend,
		"INPUT_BACKEND":     cfg.InputBackend,
		"CLIPBOARD_BACKEND": cfg.ClipboardBackend,
		"LOG_LEVEL":         cfg.LogLevel,
	}
	for key, opts := range allowed {
		v := strings.ToLower(values[key])
		ok := false
		for _, o := range opts {
			if v == o {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("invalid %s: %q (allowed: %s)", key, values[key], strings.Join(opts, ", "))
		}
	}

	if cfg.TEXTPath != "" {
		if _, err := jsonpath.Compile(cfg.TEXTPath); err != nil {
			return fmt.Errorf("invalid TEXT_PATH: %w", err)
		}
	}
	if cfg.ExtraConfig != "" {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(cfg.ExtraConfig), &m); err != nil {
			return fmt.Errorf("invalid EXTRA_CONFIG JSON: %w", err)
		}
	}
	return nil
}

// Credential returns the transcription service token from the environment.
func (c Config) Credential() (string, error) {
	token := strings.TrimSpace(os.Getenv(c.TokenEnv))
	if token == "" {
		return "", fmt.Errorf("%s environment variable is not set", c.TokenEnv)
	}
	return token, nil
}

// Debounce returns DEBOUNCE_MS as a duration.
func (c Config) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// MinDuration returns MIN_DURATION_MS as a duration.
func (c Config) MinDuration() time.Duration {
	return time.Duration(c.MinDurationMS) * time.Millisecond
}

// PasteDelay returns PASTE_DELAY_MS as a duration.
func (c Config) PasteDelay() time.Duration {
	return time.Duration(c.PasteDelayMS) * time.Millisecond
}

// RestoreDelay returns RESTORE_DELAY_MS as a duration.
func (c Config) RestoreDelay() time.Duration {
	return time.Duration(c.RestoreDelayMS) * time.Millisecond
}

// Timeout returns REQUEST_TIMEOUT as a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// InitCacheDir validates/creates the configured cache directory.
// It mutates cfg.CacheDir to an absolute path or clears it on failure.
func InitCacheDir(cfg *Config) error {
	if cfg.CacheDir == "" {
		return nil
	}
	abs, err := filepath.Abs(cfg.CacheDir)
	if err != nil {
		bad := cfg.CacheDir
		cfg.CacheDir = ""
		return fmt.Errorf("cache-dir path invalid '%s': %w", bad, err)
	}
	info, err := os.Stat(abs)
	if err == nil {
		if !info.IsDir() {
			cfg.CacheDir = ""
			return fmt.Errorf("cache-dir '%s' exists but is not a directory", abs)
		}
		cfg.CacheDir = abs
		return nil
	}
	if os.IsNotExist(err) {
		if err := os.MkdirAll(abs, 0755); err != nil {
			cfg.CacheDir = ""
			return fmt.Errorf("cannot create cache-dir '%s': %w", abs, err)
		}
		cfg.CacheDir = abs
		return nil
	}
	cfg.CacheDir = ""
	return fmt.Errorf("cannot access cache-dir '%s': %w", abs, err)
}
