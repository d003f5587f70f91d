package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"voiceinput/internal/asr"
	"voiceinput/internal/audio"
	"voiceinput/internal/config"
)

// RunFileMode transcribes an existing 16 kHz mono WAV file and writes the
// text next to the working directory as <name>.txt, or to outputPath.
// It returns the path written.
func RunFileMode(ctx context.Context, cfg config.Config, t asr.Transcriber, inputPath, outputPath string) (string, error) {
	if _, err := os.Stat(inputPath); err != nil {
		return "", fmt.Errorf("file '%s' stat failed: %w", inputPath, err)
	}
	buf, err := audio.ReadWAVFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", inputPath, err)
	}

	tctx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()
	res, err := t.Transcribe(tctx, buf)
	handleCache(cfg, nil, res.Raw, err == nil)
	if err != nil {
		return "", err
	}

	outPath := outputPath
	if outPath == "" {
		base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
		outPath = filepath.Join(".", base+".txt")
	}
	if err := os.WriteFile(outPath, []byte(res.Text), 0644); err != nil {
		return "", err
	}
	return outPath, nil
}
