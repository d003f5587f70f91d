// Package cli implements the voice-input command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voiceinput/internal/app"
	"voiceinput/internal/config"
	"voiceinput/internal/logging"
	"voiceinput/internal/notify"
)

var (
	cfgFile string
	flags   *config.FlagValues
)

var rootCmd = &cobra.Command{
	Use:   "voice-input",
	Short: "Hotkey-driven dictation into the focused window",
	Long: `voice-input listens for a global hotkey, records from the microphone
while dictation is active, sends the recording to a speech-to-text
service and types the result into whatever window has focus.

Press the hotkey (default Super+Shift+V) once to start recording and
again to stop. The clipboard is restored after every paste.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		var n notify.Notifier = notify.Log{}
		if cfg.Notification {
			n = notify.NewDesktop()
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runListener(ctx, cfg, n)
	},
}

// runListener runs the dictation service. A failure, including one at
// startup such as an unreadable keyboard, is also shown as a desktop
// alert since the listener usually runs without a visible terminal.
func runListener(ctx context.Context, cfg config.Config, n notify.Notifier) error {
	err := app.RunRecordMode(ctx, cfg)
	if err != nil && ctx.Err() == nil {
		if nerr := n.Error(notify.ErrorTitle, err.Error()); nerr != nil {
			slog.Warn("notification failed", "component", "cli", "error", nerr)
		}
	}
	return err
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON, TOML or YAML; default ./config.json)")
	flags = config.BindFlags(rootCmd.PersistentFlags())
}

// setup loads and validates the configuration, installs the logger and
// prepares the cache directory.
func setup() (config.Config, io.Closer, error) {
	path, err := config.Resolve(cfgFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}
	config.ApplyFlags(&cfg, flags)
	if err := config.Validate(&cfg); err != nil {
		return config.Config{}, nil, fmt.Errorf("config validation failed: %w", err)
	}

	closer, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return config.Config{}, nil, err
	}
	if path != "" {
		slog.Info("config loaded", "component", "cli", "path", path)
	}
	if err := config.InitCacheDir(&cfg); err != nil {
		slog.Warn("cache dir unavailable", "component", "cli", "error", err)
	}
	return cfg, closer, nil
}
