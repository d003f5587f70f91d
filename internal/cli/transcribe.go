package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voiceinput/internal/app"
)

var outputPath string

var transcribeCmd = &cobra.Command{
	Use:   "transcribe FILE",
	Short: "Transcribe an existing 16 kHz mono WAV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, closer, err := setup()
		if err != nil {
			return err
		}
		defer closer.Close()

		token, err := cfg.Credential()
		if err != nil {
			return err
		}
		t, err := app.NewTranscriber(cfg, token)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		out, err := app.RunFileMode(ctx, cfg, t, args[0], outputPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

func init() {
	transcribeCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output text file (default ./<name>.txt)")
	rootCmd.AddCommand(transcribeCmd)
}
