// Package cli wires the cobra command surface for tunegrab.
package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func Main() {
	_ = godotenv.Load() // best-effort: load .env if present

	root := &cobra.Command{
		Use:          "tunegrab <url>",
		Short:        "Download YouTube media and post-process it into ready-to-use audio",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args[0])
		},
	}

	root.SetOut(os.Stdout)
	root.SetErr(os.Stderr)
	root.SilenceErrors = true

	root.Flags().StringP("out", "o", "", "Output folder (relative to the configured base directory)")
	root.Flags().Bool("video", false, "Download video instead of audio")
	root.Flags().Int("quality", 0, "Video height (480, 720, 1080, 2160); ignored for audio")
	root.Flags().String("start", "", "Trim start (seconds, MM:SS or HH:MM:SS)")
	root.Flags().String("end", "", "Trim end (seconds, MM:SS or HH:MM:SS)")
	root.Flags().Bool("subs", false, "Fetch subtitles and convert them to LRC lyrics")
	root.Flags().String("sub-lang", "", "Subtitle language code (default en)")
	root.Flags().Bool("normalize", false, "Loudness-normalize the audio")
	root.Flags().Bool("analyze", false, "Estimate tempo and musical key")
	root.Flags().Bool("stems", false, "Separate stems (vocals, drums, bass, ...)")
	root.Flags().String("stem-backend", "", "Stem backend: openunmix or demucs")
	root.Flags().Bool("playlist", false, "Download the whole playlist the URL belongs to")
	root.Flags().String("config", "", "Config file path")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
