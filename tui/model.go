package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-tabsynth/core"
	"go-tabsynth/midi"
	"go-tabsynth/patch"
	"go-tabsynth/synth"
	"go-tabsynth/theme"
	"go-tabsynth/widgets"
)

const (
	refreshRate  = 100 * time.Millisecond
	noteLength   = 300 * time.Millisecond
	meterWidth   = 16
	baseOctave   = 4
	keyVelocity  = 100
	keyboardChan = 0
)

// computer keyboard -> semitone above C of the current octave
var pianoKeys = map[string]uint8{
	"a": 0, "w": 1, "s": 2, "e": 3, "d": 4, "f": 5, "t": 6,
	"g": 7, "y": 8, "h": 9, "u": 10, "j": 11, "k": 12,
}

// cache keeps the last values read so a busy lock does not blank the view
type cache struct {
	devices []string
	params  synth.Params
	busy    int
	status  string

	// noteGen counts presses per key; a note-off from an older press is stale
	noteGen map[uint8]uint64
}

type Model struct {
	Runtime   *core.Runtime
	DeviceMgr *midi.DeviceManager // nil when MIDI discovery is off
	Patches   *patch.Store        // nil disables p/l
	Theme     *theme.Theme
	octave    int
	quitting  bool
	cache     *cache
}

type tickMsg time.Time

type DeviceEventMsg midi.DeviceEvent

type noteOffMsg struct {
	key uint8
	gen uint64
}

func NewModel(rt *core.Runtime, deviceMgr *midi.DeviceManager, th *theme.Theme) Model {
	return Model{
		Runtime:   rt,
		DeviceMgr: deviceMgr,
		Theme:     th,
		octave:    baseOctave,
		cache:     &cache{noteGen: make(map[uint8]uint64)},
	}
}

func tick() tea.Cmd {
	return tea.Tick(refreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tick()}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "c":
			m.Runtime.Registry.Clear()
			m.refresh()

		case "r":
			m.Runtime.State.ClearPoison()

		case "p":
			m.savePatch()

		case "l":
			m.loadPatch()

		case "z":
			if m.octave > 0 {
				m.octave--
			}

		case "x":
			if m.octave < 9 {
				m.octave++
			}

		default:
			semitone, ok := pianoKeys[key]
			if !ok {
				break
			}
			note := 12*(m.octave+1) + int(semitone)
			if note > 127 {
				break
			}
			k := uint8(note)
			m.cache.noteGen[k]++
			gen := m.cache.noteGen[k]
			m.Runtime.Ingest(gomidi.NoteOn(keyboardChan, k, keyVelocity))
			return m, tea.Tick(noteLength, func(time.Time) tea.Msg {
				return noteOffMsg{key: k, gen: gen}
			})
		}

	case noteOffMsg:
		if msg.gen == m.cache.noteGen[msg.key] {
			m.Runtime.Ingest(gomidi.NoteOff(keyboardChan, msg.key))
		}

	case tickMsg:
		m.refresh()
		return m, tick()

	case DeviceEventMsg:
		m.refresh()
		if m.DeviceMgr != nil {
			return m, ListenForDevices(m.DeviceMgr)
		}
	}

	return m, nil
}

// refresh pulls diagnostics without waiting on either lock
func (m Model) refresh() {
	if names, ok := m.Runtime.Registry.TrySnapshot(); ok {
		m.cache.devices = names
	}
	err := m.Runtime.State.Inspect(func(e synth.Engine) {
		m.cache.params = e.Params()
	})
	if err != nil {
		m.cache.busy++
	}
}

func (m Model) savePatch() {
	if m.Patches == nil {
		return
	}
	p, err := patch.Capture(m.Runtime.State)
	if err != nil {
		m.cache.status = "save failed: " + err.Error()
		return
	}
	info, err := m.Patches.Save(p, "")
	if err != nil {
		m.cache.status = "save failed: " + err.Error()
		return
	}
	m.cache.status = "saved " + info.Filename
}

func (m Model) loadPatch() {
	if m.Patches == nil {
		return
	}
	p, err := m.Patches.Load(m.Runtime.State.Variant(), "")
	if err == nil {
		err = patch.Apply(m.Runtime.State, p)
	}
	if err != nil {
		m.cache.status = "load failed: " + err.Error()
		return
	}
	m.cache.status = "loaded newest patch"
	m.refresh()
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	rt := m.Runtime
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())
	warnStyle := lipgloss.NewStyle().Foreground(m.Theme.Warning())

	variant := rt.State.Variant()
	header := headerStyle.Render(fmt.Sprintf("go-tabsynth  %s  oct:%d", variant, m.octave))

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")

	// Engine
	p := m.cache.params
	rows := make([]widgets.KnobRow, 0, 9)
	for i := range p.Knobs {
		cc := ""
		if variant != synth.VariantWaveTable {
			cc = fmt.Sprintf("cc%d", 70+i)
		}
		rows = append(rows, widgets.KnobRow{CC: cc, Label: p.Labels[i], Value: p.Knobs[i]})
	}
	volCC := "cc1"
	if variant == synth.VariantWaveTable {
		volCC = ""
	}
	rows = append(rows, widgets.KnobRow{CC: volCC, Label: "volume", Value: p.Volume})
	s := m.Theme.Symbols
	out.WriteString(widgets.RenderKnobs(rows, meterWidth, s.MeterFull, s.MeterEmpty, m.Theme.Active()))
	out.WriteString(fmt.Sprintf("\n  bend %+.3f  voices %d\n\n", p.Bend, p.Voices))

	// Pipeline
	ds := rt.Dispatcher.Stats()
	rs := rt.Renderer.Stats()
	out.WriteString(fmt.Sprintf("  queue %d  handled %d  invalid %d  skipped %d\n",
		rt.Queue.Len(), ds.Handled, ds.Invalid, ds.Skipped))
	out.WriteString(fmt.Sprintf("  frames %d  silent %d  view-busy %d\n", rs.Frames, rs.Silence, m.cache.busy))
	if last, ok := rt.Dispatcher.Last(); ok {
		out.WriteString(dimStyle.Render("  last: " + last.String()))
		out.WriteString("\n")
	}
	if m.cache.status != "" {
		out.WriteString(dimStyle.Render("  " + m.cache.status))
		out.WriteString("\n")
	}
	if rt.State.Poisoned() {
		out.WriteString(warnStyle.Render("  engine poisoned - press r to reset"))
		out.WriteString("\n")
	}
	out.WriteString("\n")

	// Devices
	out.WriteString(headerStyle.Render("MIDI inputs"))
	out.WriteString("\n")
	if len(m.cache.devices) == 0 {
		out.WriteString(dimStyle.Render("  (none)"))
		out.WriteString("\n")
	}
	connected := map[string]bool{}
	if m.DeviceMgr != nil {
		for id := range m.DeviceMgr.Controllers() {
			connected[id] = true
		}
	}
	for _, name := range m.cache.devices {
		mark := s.Offline
		if connected[name] {
			mark = s.Online
		}
		out.WriteString(fmt.Sprintf("  %c %s\n", mark, name))
	}
	out.WriteString("\n")

	help := widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "a-k / w-u", Desc: "play notes"},
			{Key: "z / x", Desc: "octave down/up"},
			{Key: "c", Desc: "clear known devices"},
			{Key: "r", Desc: "reset poisoned engine"},
			{Key: "p / l", Desc: "save / load newest patch"},
			{Key: "q", Desc: "quit"},
		},
	}})
	out.WriteString(dimStyle.Render(help))

	return out.String()
}
