// SPDX-License-Identifier: EPL-2.0

// Package cli implements the audtrig command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ik5/audtrig/config"
	"github.com/ik5/audtrig/engine"
	"github.com/ik5/audtrig/internal/logger"
	"github.com/ik5/audtrig/output"
	"github.com/ik5/audtrig/storage"
)

// App holds what the commands share. Tests replace the seams.
type App struct {
	// Out receives command output.
	Out io.Writer
	// Fs is where render writes its file.
	Fs afero.Fs
	// NewStorage builds the storage the engine reads from.
	NewStorage func(config.StorageConfig) *storage.Storage
	// OpenOutput starts the live audio device pulling from src.
	OpenOutput func(src io.Reader, sampleRate int, buffer time.Duration) (io.Closer, error)

	v       *viper.Viper
	cfgFile string
	verbose bool
	cfg     *config.Config
	log     *slog.Logger
}

// NewApp returns an App wired to the real filesystem and sound card.
func NewApp() *App {
	return &App{
		Out: os.Stdout,
		Fs:  afero.NewOsFs(),
		NewStorage: func(c config.StorageConfig) *storage.Storage {
			return storage.NewFromRoots(c.RemovableRoot, c.FlashRoot)
		},
		OpenOutput: func(src io.Reader, rate int, buffer time.Duration) (io.Closer, error) {
			return output.Open(src, rate, output.WithBuffer(buffer))
		},
		v: config.New(),
	}
}

// NewRootCommand builds the command tree.
func NewRootCommand(app *App) *cobra.Command {
	if app.v == nil {
		app.v = config.New()
	}

	rootCmd := &cobra.Command{
		Use:   "audtrig",
		Short: "Trigger-driven multi-stream audio player",
		Long: `audtrig plays short clips from a removable card or onboard flash,
mixing several streams in real time.

Paths are resolved on the removable card unless they start with /flash/.
WAV, AIFF, MP3, AAC (ADTS), M4A and Ogg Vorbis files are supported.`,
		SilenceUsage:      true,
		PersistentPreRunE: app.setup,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&app.cfgFile, "config", "", "config file (default is ./audtrig.yaml)")
	pf.BoolVarP(&app.verbose, "verbose", "v", false, "verbose output")
	pf.String("removable-root", ".", "directory mounted as the removable card")
	pf.String("flash-root", "", "directory mounted read-only as onboard flash")
	pf.Int("sample-rate", engine.DefaultSampleRate, "output sample rate")
	pf.Int("streams", engine.DefaultSlots, "number of simultaneous streams")
	pf.Int("buffer-kb", 512, "per-stream buffer size in KiB")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")

	bind := map[string]string{
		"storage.removable_root": "removable-root",
		"storage.flash_root":     "flash-root",
		"audio.sample_rate":      "sample-rate",
		"audio.max_streams":      "streams",
		"audio.buffer_kb":        "buffer-kb",
		"logging.level":          "log-level",
		"logging.format":         "log-format",
	}
	for key, flag := range bind {
		_ = app.v.BindPFlag(key, pf.Lookup(flag))
	}

	rootCmd.AddCommand(
		newPlayCommand(app),
		newRenderCommand(app),
		newProbeCommand(app),
		newVersionCommand(app),
	)

	return rootCmd
}

// Execute runs the command line with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(NewApp()).ExecuteContext(ctx)
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	if a.verbose {
		a.v.Set("logging.level", "debug")
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	a.cfg = cfg
	a.log = logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	return nil
}

// newEngine builds storage and engine from the loaded configuration.
func (a *App) newEngine() *engine.Engine {
	st := a.NewStorage(a.cfg.Storage)
	eng := engine.New(st, a.cfg.Audio.Engine(), engine.WithLogger(a.log))
	eng.SetAudible(!a.cfg.Audio.Muted)
	return eng
}

// startAll starts each path on its own slot.
func startAll(eng *engine.Engine, paths []string, level int) error {
	if len(paths) > eng.Slots() {
		return fmt.Errorf("%d files given but only %d streams configured", len(paths), eng.Slots())
	}
	for i, p := range paths {
		if err := eng.SetGain(i, engine.GainFromLevel(level)); err != nil {
			return err
		}
		if err := eng.Start(i, p); err != nil {
			return fmt.Errorf("starting %s: %w", p, err)
		}
	}
	return nil
}
