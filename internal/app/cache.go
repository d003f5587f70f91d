package app

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"voiceinput/internal/asr"
	"voiceinput/internal/audio"
	"voiceinput/internal/config"
)

// archive keeps the recording and the raw service response in CACHE_DIR
// when KEEP_CACHE is set.
func (s *Service) archive(buf *audio.Buffer, res asr.Result, err error) {
	handleCache(s.cfg, buf, res.Raw, err == nil)
}

func handleCache(cfg config.Config, buf *audio.Buffer, resBody []byte, uploadOk bool) {
	if !cfg.KeepCache || cfg.CacheDir == "" {
		return
	}
	log := slog.Default().With("component", "cache")
	base := cacheBase(cfg.CacheDir, time.Now())

	if buf != nil {
		wavPath := base + ".wav"
		if err := audio.WriteWAVFile(wavPath, buf); err != nil {
			log.Warn("failed to write wav", "path", wavPath, "error", err)
		}
	}

	if uploadOk && len(resBody) > 0 {
		jsonPath := base + ".json"
		if err := os.WriteFile(jsonPath, resBody, 0644); err != nil {
			log.Warn("failed to write response", "path", jsonPath, "error", err)
		}
	}
}

// cacheBase returns a path prefix that does not collide with an existing
// archive from the same second. Any Stat error other than "exists" ends
// the search; the write that follows reports it.
func cacheBase(dir string, now time.Time) string {
	stamp := now.Format("2006-01-02-15.04.05")
	base := filepath.Join(dir, "audio-"+stamp)
	for i := 1; i <= maxCacheSuffix; i++ {
		if _, err := os.Stat(base + ".wav"); err != nil {
			return base
		}
		base = filepath.Join(dir, fmt.Sprintf("audio-%s-%d", stamp, i))
	}
	return base
}

const maxCacheSuffix = 1000
