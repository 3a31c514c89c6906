// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ik5/audtrig/engine"
)

// idlePoll is how often play checks whether every stream has ended.
const idlePoll = 20 * time.Millisecond

func newPlayCommand(app *App) *cobra.Command {
	var (
		level    int
		feedback string
	)

	cmd := &cobra.Command{
		Use:   "play FILE...",
		Short: "Play files on the sound card, one stream each",
		Long: `Play starts every FILE on its own stream slot, mixes them to the
sound card and exits when all of them finished or on interrupt.

With --feedback the given clip is played to completion first, the way the
device announces itself before taking commands.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return app.play(ctx, args, level, feedback)
		},
	}

	cmd.Flags().IntVarP(&level, "level", "l", 99, "volume level 0..99 applied to every stream")
	cmd.Flags().StringVar(&feedback, "feedback", "", "clip played to completion before the files")

	return cmd
}

func (a *App) play(ctx context.Context, paths []string, level int, feedback string) error {
	eng := a.newEngine()
	defer eng.Close()

	dev, err := a.OpenOutput(eng, eng.SampleRate(), a.cfg.Audio.OutputBuffer)
	if err != nil {
		return fmt.Errorf("failed to open audio output: %w", err)
	}
	defer dev.Close()

	if feedback != "" {
		if err := eng.PlayBlocking(ctx, feedback); err != nil {
			return fmt.Errorf("feedback clip: %w", err)
		}
	}

	if err := startAll(eng, paths, level); err != nil {
		return err
	}

	return a.runUntilIdle(ctx, eng)
}

// runUntilIdle drives the control loop until every stream ended or ctx is
// cancelled.
func (a *App) runUntilIdle(ctx context.Context, eng *engine.Engine) error {
	g, gctx := errgroup.WithContext(ctx)
	runCtx, cancelRun := context.WithCancel(gctx)

	g.Go(func() error {
		return eng.Run(runCtx, a.cfg.Audio.FillInterval)
	})

	g.Go(func() error {
		defer cancelRun()

		ticker := time.NewTicker(idlePoll)
		defer ticker.Stop()

		for eng.ActiveCount() > 0 {
			select {
			case <-gctx.Done():
				a.log.Info("interrupted, stopping streams")
				eng.StopAll()
				return nil
			case <-ticker.C:
			}
		}
		a.log.Debug("all streams finished")
		return nil
	})

	return g.Wait()
}
