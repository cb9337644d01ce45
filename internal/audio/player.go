package audio

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// sink is an output device that plays queued PCM.
type sink interface {
	// Open prepares the device for the given format, reopening it if the
	// format changed.
	Open(sampleRate, channels int) error
	Queue(data []byte) error
	Clear()
	Pause(paused bool)
	Close()
}

// Player plays one clip at a time. A new Play replaces the current clip.
type Player struct {
	out    sink
	decode func(path string) (PCM, error)
}

// NewPlayer returns a Player on the default SDL audio device.
func NewPlayer() (*Player, error) {
	out, err := newSDLSink()
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	return newPlayer(out), nil
}

func newPlayer(out sink) *Player {
	return &Player{out: out, decode: DecodeFile}
}

// Play decodes path and starts it. It returns once the clip is queued.
func (p *Player) Play(path string) error {
	pcm, err := p.decode(path)
	if err != nil {
		return err
	}

	p.out.Clear()
	if err := p.out.Open(pcm.SampleRate, pcm.Channels); err != nil {
		return err
	}
	if err := p.out.Queue(pcm.Data); err != nil {
		return err
	}
	p.out.Pause(false)

	log.Debug("Playing clip", "path", path, "rate", pcm.SampleRate,
		"channels", pcm.Channels, "seconds", pcm.Duration())
	return nil
}

// Stop silences the device immediately and drops anything still queued.
func (p *Player) Stop() {
	p.out.Pause(true)
	p.out.Clear()
}

// Close releases the device.
func (p *Player) Close() {
	p.out.Close()
}
