package midi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-tabsynth/debug"
)

// DeviceEvent is emitted when inputs connect/disconnect
type DeviceEvent struct {
	Type DeviceEventType
	ID   string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

// DefaultExcluded are virtual/system ports that are never opened
var DefaultExcluded = []string{"Midi Through", "Through Port", "Dummy"}

// DeviceManager handles hot-plug detection of MIDI inputs. Every input it
// opens is registered by name and forwards its bytes to the sink.
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	registry    *Registry
	sink        Sink
	excluded    []string
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager creates a device manager feeding sink
func NewDeviceManager(registry *Registry, sink Sink, excluded []string, pollRate time.Duration) *DeviceManager {
	if pollRate <= 0 {
		pollRate = time.Second
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		registry:    registry,
		sink:        sink,
		excluded:    excluded,
		events:      make(chan DeviceEvent, 16),
		pollRate:    pollRate,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	copy := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		copy[k] = v
	}
	return copy
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

func (dm *DeviceManager) scan() {
	// Get current MIDI ports with timeout (CoreMIDI can hang)
	ch := make(chan []drivers.In, 1)
	go func() {
		ch <- gomidi.GetInPorts()
	}()

	var inPorts []drivers.In
	select {
	case inPorts = <-ch:
	case <-time.After(3 * time.Second):
		debug.Log("devices", "port scan timed out, skipping")
		return
	}

	byName := make(map[string]drivers.In, len(inPorts))
	names := make([]string, 0, len(inPorts))
	for _, p := range inPorts {
		byName[p.String()] = p
		names = append(names, p.String())
	}

	dm.mu.RLock()
	known := make(map[string]bool, len(dm.controllers))
	for id := range dm.controllers {
		known[id] = true
	}
	dm.mu.RUnlock()

	added, removed := diffPorts(known, names, dm.excluded)

	for _, id := range added {
		kb, err := NewKeyboardController(id, byName[id], dm.sink)
		if err != nil {
			debug.Error("devices", "connect %q failed: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = kb
		dm.mu.Unlock()

		// registry lock is taken on its own, never under dm.mu
		dm.registry.Register(id)
		dm.emit(DeviceEvent{Type: DeviceConnected, ID: id})
	}

	for _, id := range removed {
		dm.mu.Lock()
		c := dm.controllers[id]
		delete(dm.controllers, id)
		dm.mu.Unlock()

		if c != nil {
			c.Close()
		}
		debug.Log("devices", "%q disconnected", id)
		dm.emit(DeviceEvent{Type: DeviceDisconnected, ID: id})
	}
}

// emit never blocks the scan; a slow listener misses events
func (dm *DeviceManager) emit(ev DeviceEvent) {
	select {
	case dm.events <- ev:
	default:
	}
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// diffPorts compares the open inputs with the names seen now. It returns
// the names to open (in scan order, exclusions skipped) and the open
// inputs that vanished (sorted).
func diffPorts(known map[string]bool, seen []string, excluded []string) (added, removed []string) {
	present := make(map[string]bool, len(seen))
	for _, name := range seen {
		if isExcluded(name, excluded) {
			continue
		}
		if !known[name] && !present[name] {
			added = append(added, name)
		}
		present[name] = true
	}
	for id := range known {
		if !present[id] {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return added, removed
}

func isExcluded(name string, excluded []string) bool {
	lower := strings.ToLower(name)
	for _, pat := range excluded {
		if strings.Contains(lower, strings.ToLower(pat)) {
			return true
		}
	}
	return false
}
