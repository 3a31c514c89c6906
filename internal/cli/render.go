// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ik5/audtrig/output"
)

func newRenderCommand(app *App) *cobra.Command {
	var (
		out       string
		level     int
		maxFrames int
	)

	cmd := &cobra.Command{
		Use:   "render -o OUT.wav FILE...",
		Short: "Mix files offline into a WAV file",
		Long: `Render mixes every FILE exactly as play would and writes the stereo
result to a 16-bit WAV file as fast as possible.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			eng := app.newEngine()
			defer eng.Close()

			if err := startAll(eng, args, level); err != nil {
				return err
			}

			f, err := app.Fs.Create(out)
			if err != nil {
				return fmt.Errorf("creating %s: %w", out, err)
			}
			defer f.Close()

			frames, err := output.Render(ctx, eng, f, output.RenderOptions{
				SampleRate:  eng.SampleRate(),
				ChunkFrames: min(output.DefaultRenderChunk, max(1, app.cfg.Audio.BufferSamples()/4)),
				MaxFrames:   maxFrames,
			})
			if err != nil {
				return fmt.Errorf("rendering: %w", err)
			}

			fmt.Fprintf(app.Out, "wrote %s: %d frames at %d Hz\n", out, frames, eng.SampleRate())
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "WAV file to write")
	cmd.Flags().IntVarP(&level, "level", "l", 99, "volume level 0..99 applied to every stream")
	cmd.Flags().IntVar(&maxFrames, "max-frames", 0, "stop after this many frames (0 = until all streams end)")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}
