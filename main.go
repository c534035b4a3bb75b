package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"go-tabsynth/audio"
	"go-tabsynth/config"
	"go-tabsynth/core"
	"go-tabsynth/debug"
	"go-tabsynth/midi"
	"go-tabsynth/patch"
	"go-tabsynth/synth"
	"go-tabsynth/theme"
	"go-tabsynth/tui"
)

func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/go-tabsynth/config.json)")
	engineName := flag.String("engine", "", "override engine: subsynth or wavetable")
	noMIDI := flag.Bool("no-midi", false, "do not open system MIDI inputs")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if *engineName != "" {
		cfg.Engine = *engineName
		if err := cfg.Validate(); err != nil {
			fmt.Printf("Error: %v\n", err)
			os.Exit(1)
		}
	}

	if cfg.Debug {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Warning: debug log unavailable: %v\n", err)
		}
		defer debug.Disable()
	}

	palette, err := theme.LoadPalette(cfg.UI.Palette)
	if err != nil {
		fmt.Printf("Warning: %v, using built-in palette\n", err)
		palette = theme.DefaultPalette()
	}
	th := theme.New(palette)

	// Engine lives for the whole process inside the runtime
	engine, err := synth.New(cfg.Variant(), float64(cfg.Audio.SampleRate))
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	rt := core.NewRuntime(engine, cfg.Audio.Channels)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rt.StartRuntime(ctx)
	defer rt.Stop()

	// Audio output is the one fatal startup dependency
	player, err := audio.NewOtoPlayer(rt.Renderer, cfg.Audio.SampleRate, cfg.Audio.ChunkSize)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	defer player.Close()
	player.Start()
	debug.Log("main", "engine %s, chunk budget %s", cfg.Variant(), cfg.ChunkPeriod())

	var deviceMgr *midi.DeviceManager
	if cfg.MIDI.AutoConnect && !*noMIDI {
		deviceMgr = midi.NewDeviceManager(rt.Registry, func(raw []byte) { rt.Ingest(raw) },
			cfg.MIDI.Excluded, cfg.PollInterval())
		go deviceMgr.Run(ctx)
	}

	m := tui.NewModel(rt, deviceMgr, th)
	if dir, err := patch.DefaultDir(); err == nil {
		m.Patches = patch.NewStore(dir)
	}
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFrom(path)
	}
	return config.Load()
}
