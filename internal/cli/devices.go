package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"voiceinput/internal/audio"
	"voiceinput/internal/input"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List keyboards and microphones",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()

		fmt.Fprintln(w, "Keyboards (INPUT_DEVICE):")
		kbs, err := input.ListKeyboards()
		if err != nil {
			fmt.Fprintf(w, "  unavailable: %v\n", err)
		}
		for _, kb := range kbs {
			fmt.Fprintf(w, "  %-22s %s\n", kb.Path, kb.Name)
		}

		fmt.Fprintln(w, "Microphones (AUDIO_DEVICE):")
		mics, err := audio.ListInputDevices()
		if err != nil {
			fmt.Fprintf(w, "  unavailable: %v\n", err)
		}
		for _, m := range mics {
			mark := " "
			if m.IsDefault {
				mark = "*"
			}
			fmt.Fprintf(w, " %s %s (%d ch, %.0f Hz)\n", mark, m.Name, m.MaxInputChannels, m.DefaultSampleRate)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
