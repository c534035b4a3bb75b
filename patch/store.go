// Package patch saves and recalls engine knob settings as timestamped JSON
// files, one folder per engine variant.
package patch

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go-tabsynth/debug"
	"go-tabsynth/synth"
)

const timestampLayout = "2006-01-02_15-04-05.000"

var (
	// ErrNoPatches is returned when loading the newest patch of an empty folder
	ErrNoPatches = errors.New("no saved patches")
	// ErrBadFilename rejects names that are not a plain file in the variant folder
	ErrBadFilename = errors.New("invalid patch filename")
)

// Patch is the persisted part of an engine's state
type Patch struct {
	Engine string     `json:"engine"`
	Knobs  [8]float32 `json:"knobs"`
	Volume float32    `json:"volume"`
}

// SaveInfo represents a saved patch file (for listing)
type SaveInfo struct {
	Filename  string
	Name      string // parsed from filename (empty if unnamed)
	Timestamp time.Time
}

// Store reads and writes patches under one directory
type Store struct {
	dir string
	now func() time.Time
}

// DefaultDir returns ~/.config/go-tabsynth/patches
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-tabsynth", "patches"), nil
}

// NewStore creates a store rooted at dir. The directory is created on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) variantDir(v synth.Variant) string {
	return filepath.Join(s.dir, v.String())
}

// Capture reads the current knob settings without waiting on the engine lock
func Capture(state *synth.State) (Patch, error) {
	p := Patch{Engine: state.Variant().String()}
	err := state.Inspect(func(e synth.Engine) {
		params := e.Params()
		p.Knobs = params.Knobs
		p.Volume = params.Volume
	})
	return p, err
}

// Apply pushes p into the engine through its knob capabilities
func Apply(state *synth.State, p Patch) error {
	v, err := synth.ParseVariant(p.Engine)
	if err != nil {
		return err
	}
	if v != state.Variant() {
		return fmt.Errorf("patch is for %s, engine is %s", v, state.Variant())
	}
	return state.Update(func(e synth.Engine) {
		knobs := [8]func(float32) bool{
			e.Knob1, e.Knob2, e.Knob3, e.Knob4, e.Knob5, e.Knob6, e.Knob7, e.Knob8,
		}
		for i, set := range knobs {
			set(p.Knobs[i])
		}
		e.VolumeSwell(p.Volume)
	})
}

// Save writes p with a timestamped filename, optionally suffixed by name
func (s *Store) Save(p Patch, name string) (SaveInfo, error) {
	v, err := synth.ParseVariant(p.Engine)
	if err != nil {
		return SaveInfo{}, err
	}
	dir := s.variantDir(v)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return SaveInfo{}, err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return SaveInfo{}, err
	}

	ts := s.now()
	base := ts.Format(timestampLayout)
	name = sanitizeFilename(strings.TrimSpace(name))
	if name != "" {
		base += "_" + name
	}
	info := SaveInfo{Filename: base + ".json", Name: name, Timestamp: ts}

	if err := os.WriteFile(filepath.Join(dir, info.Filename), data, 0644); err != nil {
		return SaveInfo{}, err
	}
	debug.Log("patch", "saved %s/%s", v, info.Filename)
	return info, nil
}

// List returns saved patches for v, newest first
func (s *Store) List(v synth.Variant) ([]SaveInfo, error) {
	entries, err := os.ReadDir(s.variantDir(v))
	if err != nil {
		if os.IsNotExist(err) {
			return []SaveInfo{}, nil
		}
		return nil, err
	}

	saves := []SaveInfo{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, ok := parseFilename(entry.Name())
		if !ok {
			continue
		}
		saves = append(saves, info)
	}

	sort.Slice(saves, func(i, j int) bool {
		return saves[i].Timestamp.After(saves[j].Timestamp)
	})
	return saves, nil
}

// Load reads a patch for v (the newest if filename is empty)
func (s *Store) Load(v synth.Variant, filename string) (Patch, error) {
	if filename == "" {
		saves, err := s.List(v)
		if err != nil {
			return Patch{}, err
		}
		if len(saves) == 0 {
			return Patch{}, fmt.Errorf("%s: %w", v, ErrNoPatches)
		}
		filename = saves[0].Filename
	}

	path, err := s.patchPath(v, filename)
	if err != nil {
		return Patch{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Patch{}, err
	}
	var p Patch
	if err := json.Unmarshal(data, &p); err != nil {
		return Patch{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return p, nil
}

// Delete removes one saved patch
func (s *Store) Delete(v synth.Variant, filename string) error {
	path, err := s.patchPath(v, filename)
	if err != nil {
		return err
	}
	return os.Remove(path)
}

// patchPath joins a listed filename onto the variant folder
func (s *Store) patchPath(v synth.Variant, filename string) (string, error) {
	if filename == "" || filename == "." || filename == ".." || filepath.Base(filename) != filename {
		return "", fmt.Errorf("%q: %w", filename, ErrBadFilename)
	}
	return filepath.Join(s.variantDir(v), filename), nil
}

// parseFilename splits 2006-01-02_15-04-05.000[_name].json
func parseFilename(filename string) (SaveInfo, bool) {
	base := strings.TrimSuffix(filename, ".json")
	n := len(timestampLayout)
	if len(base) < n {
		return SaveInfo{}, false
	}
	ts, err := time.ParseInLocation(timestampLayout, base[:n], time.Local)
	if err != nil {
		return SaveInfo{}, false
	}
	info := SaveInfo{Filename: filename, Timestamp: ts}
	if len(base) > n+1 && base[n] == '_' {
		info.Name = base[n+1:]
	}
	return info, true
}

// sanitizeFilename removes/replaces characters that are problematic in filenames
func sanitizeFilename(name string) string {
	r := strings.NewReplacer(
		" ", "-", "/", "-", "\\", "-", ":", "-",
		"*", "", "?", "", "\"", "", "<", "", ">", "", "|", "",
	)
	return r.Replace(name)
}
