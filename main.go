package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/pflag"

	"go-drumseq/config"
	"go-drumseq/debug"
	"go-drumseq/instrument"
	"go-drumseq/midi"
	"go-drumseq/oto"
	"go-drumseq/sequencer"
	"go-drumseq/theme"
	"go-drumseq/transport"
	"go-drumseq/tui"
)

const synthLookahead = 25 * time.Millisecond

type flags struct {
	config  string
	beats   int
	tempo   int
	output  string
	port    string
	channel int
	kit     string
	kitFile string
	palette string
	debug   bool
}

func main() {
	var f flags
	pflag.StringVarP(&f.config, "config", "c", "", "config file (default ~/.config/go-drumseq/config.json)")
	pflag.IntVarP(&f.beats, "beats", "b", 8, "beats per loop")
	pflag.IntVarP(&f.tempo, "tempo", "t", transport.DefaultTempo, "tempo in beats per minute")
	pflag.StringVarP(&f.output, "output", "o", string(config.BackendSynth), "output backend: synth or midi")
	pflag.StringVarP(&f.port, "port", "p", "", "midi output port name (default first port)")
	pflag.IntVar(&f.channel, "channel", 10, "midi channel 1-16")
	pflag.StringVarP(&f.kit, "kit", "k", instrument.DefaultKit, "drum kit note map: "+strings.Join(instrument.KitNames(), ", "))
	pflag.StringVar(&f.kitFile, "kit-file", "", "yaml file with extra kits")
	pflag.StringVar(&f.palette, "palette", "", "GIMP .gpl palette for the grid")
	pflag.BoolVar(&f.debug, "debug", false, "write a debug log to ~/.config/go-drumseq/debug.log")
	pflag.Parse()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and lets explicitly set flags override it.
func loadConfig(f flags) (*config.Config, string, error) {
	path := f.config
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return nil, "", err
		}
		path = p
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, "", err
	}

	set := pflag.CommandLine.Changed
	if set("beats") {
		cfg.BeatsPerLoop = f.beats
	}
	if set("tempo") {
		cfg.Tempo = f.tempo
		cfg.UI.LastTempo = 0
	}
	if set("output") {
		cfg.Output.Backend = config.Backend(f.output)
	}
	if set("port") {
		cfg.Output.PortName = f.port
	}
	if set("channel") {
		cfg.Output.Channel = f.channel
	}
	if set("kit") {
		cfg.Output.Kit = f.kit
	}
	if set("kit-file") {
		cfg.Output.KitFile = f.kitFile
	}
	if set("palette") {
		cfg.UI.Palette = f.palette
	}
	if set("debug") {
		cfg.Debug = f.debug
	}
	return cfg, path, cfg.Validate()
}

func loadKitFile(path string) error {
	if path == "" {
		return nil
	}
	fh, err := os.Open(path)
	if err != nil {
		return err
	}
	defer fh.Close()
	kits, err := instrument.LoadKits(fh)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	instrument.AddKits(kits)
	return nil
}

// openOutput builds the instrument registry on the configured backend. The
// returned resource is resumed by the first play.
func openOutput(cfg *config.Config) (*instrument.Registry, transport.Resource, io.Closer, error) {
	switch cfg.Output.Backend {
	case config.BackendMIDI:
		kit, ok := instrument.Kits[cfg.Output.Kit]
		if !ok {
			return nil, nil, nil, fmt.Errorf("unknown kit %q (have %s)", cfg.Output.Kit, strings.Join(instrument.KitNames(), ", "))
		}
		port := midi.NewPort(cfg.Output.PortName)
		reg, err := instrument.NewMIDIRegistry(port, uint8(cfg.Output.Channel), kit)
		return reg, port, port, err
	default:
		out := oto.NewOutput(cfg.Output.SampleRate)
		reg, err := instrument.NewSynthRegistry(out)
		return reg, out, out, err
	}
}

func run(f flags) error {
	cfg, cfgPath, err := loadConfig(f)
	if err != nil {
		return err
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			return err
		}
		defer debug.Disable()
		debug.Log("config", "loaded %s\n%s", cfgPath, spew.Sdump(cfg))
	}

	if err := loadKitFile(cfg.Output.KitFile); err != nil {
		return err
	}

	reg, res, closer, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer closer.Close()

	opts := []transport.Option{transport.WithTempo(cfg.StartTempo())}
	if cfg.Output.Backend != config.BackendMIDI {
		// the mixer places voices at their step time, MIDI sends on dispatch
		opts = append(opts, transport.WithLookahead(synthLookahead))
	}
	tr := transport.New(res, opts...)
	ctrl := sequencer.NewController(tr, reg, cfg.BeatsPerLoop)

	errs := make(chan error, 16)
	ctrl.OnTriggerError = func(err error) {
		debug.Log("trigger", "%v", err)
		select {
		case errs <- err:
		default:
		}
	}

	tracks, err := sequencer.NewTracks(reg, cfg.BeatsPerLoop)
	if err != nil {
		return err
	}
	for id, beats := range cfg.Pattern {
		i, ok := tracks.Index(id)
		if !ok {
			return fmt.Errorf("pattern: unknown instrument %q", id)
		}
		if tracks, err = tracks.WithBeats(i, beats...); err != nil {
			return fmt.Errorf("pattern %s: %w", id, err)
		}
	}
	session := sequencer.NewSession(tracks, ctrl)

	palette, err := theme.LoadPalette(cfg.UI.Palette)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go tr.Run(ctx)

	m := tui.NewModel(session, ctrl, tr, theme.New(palette), errs)
	m.Output = string(cfg.Output.Backend)
	if cfg.Output.Backend == config.BackendMIDI {
		w := midi.NewWatcher()
		go w.Run(ctx)
		m.Ports = w.Events()
		m.PortName = cfg.Output.PortName
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}

	ctrl.Stop()
	cfg.UI.LastTempo = tr.Tempo()
	if err := cfg.SaveTo(cfgPath); err != nil {
		debug.Log("config", "save failed: %v", err)
	}
	return nil
}
