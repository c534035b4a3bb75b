package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"go-tabsynth/debug"
)

// OtoPlayer plays a Renderer through the system audio device
type OtoPlayer struct {
	ctx      *oto.Context
	player   *oto.Player
	renderer *Renderer
	started  bool
	mutex    sync.Mutex // setup/control only, never taken by the audio path
}

// NewOtoPlayer opens the output device. chunkSize is the number of frames per
// callback the device is asked to buffer.
func NewOtoPlayer(renderer *Renderer, sampleRate, chunkSize int) (*OtoPlayer, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: renderer.Channels(),
		Format:       oto.FormatFloat32LE,
		BufferSize:   time.Duration(chunkSize) * time.Second / time.Duration(sampleRate),
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("open audio output: %w", err)
	}
	<-ready

	p := &OtoPlayer{ctx: ctx, renderer: renderer}
	p.player = ctx.NewPlayer(renderer)
	p.player.SetBufferSize(chunkSize * renderer.Channels() * 4)

	debug.Log("audio", "output open: %d Hz, %d ch, chunk %d", sampleRate, renderer.Channels(), chunkSize)
	return p, nil
}

// Start begins playback
func (p *OtoPlayer) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Stop pauses playback
func (p *OtoPlayer) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

// Close stops playback and releases the player
func (p *OtoPlayer) Close() error {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if p.player == nil {
		return nil
	}
	err := p.player.Close()
	p.player = nil
	return err
}

// IsStarted reports whether playback is running
func (p *OtoPlayer) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
