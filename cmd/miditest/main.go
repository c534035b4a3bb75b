package main

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-tabsynth/debug"
	tsmidi "go-tabsynth/midi"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	var err error
	switch os.Args[1] {
	case "list":
		listPorts()
	case "decode":
		err = decodeArgs(os.Args[2:])
	case "monitor":
		err = monitor(os.Args[2:])
	case "render":
		err = renderCmd(os.Args[2:])
	case "poll":
		pollDevices()
	default:
		usage()
	}
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("MIDI Test Scripts")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                        - List all MIDI ports")
	fmt.Println("  decode <hex> [hex...]       - Decode raw bytes, e.g. decode 903c64 803c00")
	fmt.Println("  monitor [port-substring]    - Print decoded messages from an input")
	fmt.Println("  render <out.wav> [engine]   - Render a test phrase offline to a WAV file")
	fmt.Println("  poll                        - Poll for device changes")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	type result struct {
		ins  []drivers.In
		outs []drivers.Out
	}
	ch := make(chan result, 1)
	go func() {
		ins := midi.GetInPorts()
		outs := midi.GetOutPorts()
		ch <- result{ins: ins, outs: outs}
	}()

	select {
	case r := <-ch:
		for i, p := range r.ins {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
		fmt.Println("\n=== MIDI Output Ports ===")
		for i, p := range r.outs {
			fmt.Printf("  %d: %s\n", i, p.String())
		}
	case <-time.After(3 * time.Second):
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
	}
}

func decodeArgs(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("decode needs at least one hex message")
	}
	for _, a := range args {
		raw, err := hex.DecodeString(strings.ReplaceAll(a, " ", ""))
		if err != nil {
			return fmt.Errorf("bad hex %q: %w", a, err)
		}
		fmt.Printf("% x  ->  %s\n", raw, tsmidi.Decode(raw))
	}
	return nil
}

func monitor(args []string) error {
	want := ""
	if len(args) > 0 {
		want = strings.ToLower(args[0])
	}

	var in drivers.In
	for _, p := range midi.GetInPorts() {
		if want == "" || strings.Contains(strings.ToLower(p.String()), want) {
			in = p
			break
		}
	}
	if in == nil {
		return fmt.Errorf("no matching input port")
	}

	debug.EnableTo(os.Stderr, slog.LevelInfo)
	fmt.Printf("Listening on %s. Ctrl+C to exit.\n", in.String())

	kb, err := tsmidi.NewKeyboardController(in.String(), in, func(raw []byte) {
		fmt.Printf("[%s] % x  ->  %s\n", time.Now().Format("15:04:05.000"), raw, tsmidi.Decode(raw))
	})
	if err != nil {
		return err
	}
	defer kb.Close()

	select {}
}

func renderCmd(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("render needs an output path")
	}
	engine := "wavetable"
	if len(args) > 1 {
		engine = args[1]
	}
	seconds := 3.0
	if len(args) > 2 {
		s, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("bad duration %q: %w", args[2], err)
		}
		seconds = s
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	stats, err := RenderPhrase(f, engine, 48000, 512, seconds)
	if err != nil {
		return err
	}
	fmt.Printf("Wrote %s: %d frames, %d silent\n", args[0], stats.Frames, stats.Silence)
	return nil
}

func pollDevices() {
	fmt.Println("Polling for device changes every 2 seconds...")
	fmt.Println("Connect/disconnect a controller to test. Ctrl+C to exit.")

	lastIn := ""

	for {
		var inNames []string
		for _, p := range midi.GetInPorts() {
			inNames = append(inNames, p.String())
		}

		currentIn := strings.Join(inNames, ",")
		if currentIn != lastIn {
			fmt.Printf("\n[%s] Device change detected!\n", time.Now().Format("15:04:05"))
			fmt.Printf("  Inputs: %v\n", inNames)
			lastIn = currentIn
		}

		time.Sleep(2 * time.Second)
	}
}
