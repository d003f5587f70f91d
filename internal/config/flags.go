package config

import (
	"github.com/spf13/pflag"
)

// FlagValues holds the values bound to command-line flags. Whether a flag
// was given is read back from the FlagSet, so defaults never clobber the
// config file.
type FlagValues struct {
	fs *pflag.FlagSet

	APIEndpoint      string
	TokenEnv         string
	Model            string
	Language         string
	Prompt           string
	TEXTPath         string
	ExtraConfig      string
	ASRBackend       string
	RequestTimeout   int
	EnableHTTP2      bool
	VerifySSL        bool
	Hotkey           string
	CancelKey        string
	DebounceMS       int
	MinDurationMS    int
	InputBackend     string
	InputDevice      string
	AudioDevice      string
	ClipboardBackend string
	PasteKey         string
	Notification     bool
	SoundCues        bool
	CacheDir         string
	KeepCache        bool
	LogLevel         string
	LogFile          string
}

// BindFlags registers all flags and returns the populated FlagValues.
func BindFlags(fs *pflag.FlagSet) *FlagValues {
	fv := &FlagValues{fs: fs}
	d := DefaultConfig()

	fs.StringVar(&fv.APIEndpoint, "api-endpoint", d.APIEndpoint, "transcription endpoint URL")
	fs.StringVar(&fv.TokenEnv, "token-env", d.TokenEnv, "environment variable holding the bearer token")
	fs.StringVar(&fv.Model, "model", d.Model, "transcription model")
	fs.StringVar(&fv.Language, "language", d.Language, "spoken language (empty for auto-detect)")
	fs.StringVar(&fv.Prompt, "prompt", d.Prompt, "prompt sent with each request")
	fs.StringVar(&fv.TEXTPath, "text-path", d.TEXTPath, "JSON path to extract text")
	fs.StringVar(&fv.ExtraConfig, "extra-config", d.ExtraConfig, "extra JSON config to merge into request payload")
	fs.StringVar(&fv.ASRBackend, "asr-backend", d.ASRBackend, "transcription backend (http, openai)")
	fs.IntVar(&fv.RequestTimeout, "request-timeout", d.RequestTimeout, "request timeout seconds")
	fs.BoolVar(&fv.EnableHTTP2, "enable-http2", d.EnableHTTP2, "enable HTTP/2")
	fs.BoolVar(&fv.VerifySSL, "verify-ssl", d.VerifySSL, "verify TLS certificates")

	fs.StringVar(&fv.Hotkey, "hotkey", d.Hotkey, "start/stop hotkey")
	fs.StringVar(&fv.CancelKey, "cancel-key", d.CancelKey, "cancel hotkey (empty disables)")
	fs.IntVar(&fv.DebounceMS, "debounce-ms", d.DebounceMS, "minimum interval between hotkey triggers")
	fs.IntVar(&fv.MinDurationMS, "min-duration-ms", d.MinDurationMS, "recordings shorter than this are discarded")
	fs.StringVar(&fv.InputBackend, "input-backend", d.InputBackend, "key event source (evdev, hook)")
	fs.StringVar(&fv.InputDevice, "input-device", d.InputDevice, "evdev keyboard path (empty selects the first keyboard)")

	fs.StringVar(&fv.AudioDevice, "audio-device", d.AudioDevice, "audio input device name (empty for default)")
	fs.StringVar(&fv.ClipboardBackend, "clipboard", d.ClipboardBackend, "clipboard backend (auto, system, wayland)")
	fs.StringVar(&fv.PasteKey, "paste-key", d.PasteKey, "synthetic paste chord")

	fs.BoolVar(&fv.Notification, "notification", d.Notification, "enable desktop notifications")
	fs.BoolVar(&fv.SoundCues, "sound-cues", d.SoundCues, "play start/stop tones")
	fs.StringVar(&fv.CacheDir, "cache-dir", d.CacheDir, "cache directory")
	fs.BoolVar(&fv.KeepCache, "keep-cache", d.KeepCache, "keep recordings and responses in cache-dir")
	fs.StringVar(&fv.LogLevel, "log-level", d.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&fv.LogFile, "log-file", d.LogFile, "log file path (empty disables)")

	return fv
}

// ApplyFlags applies flags the user actually set to the config.
func ApplyFlags(cfg *Config, fv *FlagValues) {
	set := func(name string) bool {
		f := fv.fs.Lookup(name)
		return f != nil && f.Changed
	}

	if set("api-endpoint") {
		cfg.APIEndpoint = fv.APIEndpoint
	}
	if set("token-env") {
		cfg.TokenEnv = fv.TokenEnv
	}
	if set("model") {
		cfg.Model = fv.Model
	}
	if set("language") {
		cfg.Language = fv.Language
	}
	if set("prompt") {
		cfg.Prompt = fv.Prompt
	}
	if set("text-path") {
		cfg.TEXTPath = fv.TEXTPath
	}
	if set("extra-config") {
		cfg.ExtraConfig = fv.ExtraConfig
	}
	if set("asr-backend") {
		cfg.ASRBackend = fv.ASRBackend
	}
	if set("request-timeout") {
		cfg.RequestTimeout = fv.RequestTimeout
	}
	if set("enable-http2") {
		cfg.EnableHTTP2 = fv.EnableHTTP2
	}
	if set("verify-ssl") {
		cfg.VerifySSL = fv.VerifySSL
	}

	if set("hotkey") {
		cfg.Hotkey = fv.Hotkey
	}
	if set("cancel-key") {
		cfg.CancelKey = fv.CancelKey
	}
	if set("debounce-ms") {
		cfg.DebounceMS = fv.DebounceMS
	}
	if set("min-duration-ms") {
		cfg.MinDurationMS = fv.MinDurationMS
	}
	if set("input-backend") {
		cfg.InputBackend = fv.InputBackend
	}
	if set("input-device") {
		cfg.InputDevice = fv.InputDevice
	}

	if set("audio-device") {
		cfg.AudioDevice = fv.AudioDevice
	}
	if set("clipboard") {
		cfg.ClipboardBackend = fv.ClipboardBackend
	}
	if set("paste-key") {
		cfg.PasteKey = fv.PasteKey
	}

	if set("notification") {
		cfg.Notification = fv.Notification
	}
	if set("sound-cues") {
		cfg.SoundCues = fv.SoundCues
	}
	if set("cache-dir") {
		cfg.CacheDir = fv.CacheDir
	}
	if set("keep-cache") {
		cfg.KeepCache = fv.KeepCache
	}
	if set("log-level") {
		cfg.LogLevel = fv.LogLevel
	}
	if set("log-file") {
		cfg.LogFile = fv.LogFile
	}
}
