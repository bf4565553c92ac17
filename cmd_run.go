package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"go-omen/audio"
	"go-omen/config"
	"go-omen/debug"
	"go-omen/midi"
	"go-omen/rack"
	"go-omen/theme"
	"go-omen/tui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the rack with the terminal monitor",
	Long: `Build the rack from a patch file or a saved project and run it.

MIDI ports are scanned every second. The clock port drives the Oracle at
24 PPQN, Start resets the chain, and watched outputs are sent as notes to
the trigger port. A Launchpad X, when present, mirrors the seed buttons.`,
	RunE: runRack,
}

type runOptions struct {
	patch   string
	project string
	load    string
	palette string
	debug   bool
	noAudio bool
	noTUI   bool
}

var runOpts runOptions

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&runOpts.patch, "patch", "p", "", "patch file (YAML); defaults to the configured patch")
	f.StringVar(&runOpts.project, "project", "", "project name for saves")
	f.StringVar(&runOpts.load, "load", "", "load a save from the project (\"latest\" for the newest)")
	f.StringVar(&runOpts.palette, "palette", "", "GIMP palette for the monitor")
	f.BoolVar(&runOpts.debug, "debug", false, "write ~/.config/go-omen/debug.log")
	f.BoolVar(&runOpts.noAudio, "no-audio", false, "render on a timer instead of the audio device")
	f.BoolVar(&runOpts.noTUI, "no-tui", false, "run without the monitor until interrupted")
}

func init() {
	addRunFlags(runCmd)
}

func runRack(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	opts := runOpts
	if opts.patch == "" {
		opts.patch = cfg.Patch
	}
	if opts.project == "" {
		opts.project = cfg.Project
	}
	if opts.debug || cfg.Debug {
		if err := debug.Enable(); err != nil {
			return fmt.Errorf("debug log: %w", err)
		}
		defer debug.Disable()
	}

	r, err := buildRack(cfg, opts)
	if err != nil {
		return err
	}

	palette := theme.Plasma()
	if opts.palette != "" {
		if palette, err = theme.LoadGPL(opts.palette); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return debug.RunDeferred(gctx, 250*time.Millisecond)
	})

	triggers := midi.NewTriggerOut(cfg.MIDI.Channel)
	g.Go(func() error {
		return triggers.Run(gctx, r.Triggers())
	})

	var scanner *midi.Scanner
	if cfg.MIDI.AutoConnect {
		scanner = midi.NewScanner(midi.ScannerConfig{
			ClockPort:   cfg.MIDI.ClockPort,
			TriggerPort: cfg.MIDI.TriggerPort,
			Panel:       cfg.MIDI.Panel,
			Origin:      r.Origin(),
		}, r, triggers, r.Snapshot)
		g.Go(func() error {
			return scanner.Run(gctx)
		})
	}

	g.Go(func() error {
		return renderLoop(gctx, r, cfg, opts.noAudio)
	})

	if !opts.noTUI {
		g.Go(func() error {
			defer cancel()
			m := tui.NewModel(r, scanner, theme.New(palette), opts.project)
			_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(gctx)).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		})
	}

	return g.Wait()
}

// buildRack loads a save when asked to, otherwise builds the patch.
func buildRack(cfg *config.Config, opts runOptions) (*rack.Rack, error) {
	if opts.load != "" {
		file := opts.load
		if file == "latest" {
			file = ""
		}
		st, err := rack.LoadProject(opts.project, file)
		if err != nil {
			return nil, err
		}
		return rack.FromState(st)
	}

	p := rack.DefaultPatch()
	if opts.patch != "" {
		var err error
		if p, err = rack.LoadPatch(opts.patch); err != nil {
			return nil, err
		}
	}
	if cfg.Audio.SampleRate > 0 {
		p.SampleRate = float64(cfg.Audio.SampleRate)
	}
	return p.Build()
}

// renderLoop plays the rack through the audio device, falling back to a
// timer when audio is off or the device cannot be opened.
func renderLoop(ctx context.Context, r *rack.Rack, cfg *config.Config, noAudio bool) error {
	rate := int(r.SampleRate())
	if cfg.Audio.Enabled && !noAudio {
		p, err := audio.NewPlayer(r, rate, cfg.Audio.Channels, cfg.Audio.BufferMs)
		if err == nil {
			return p.Run(ctx)
		}
		debug.Log("audio", "falling back to timer: %v", err)
	}
	return audio.NewTicker(r, rate, cfg.Audio.Channels, cfg.Audio.BufferMs).Run(ctx)
}
