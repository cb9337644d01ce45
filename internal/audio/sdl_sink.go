package audio

import (
	"errors"
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// sdlSink queues audio on an SDL device.
type sdlSink struct {
	id       sdl.AudioDeviceID
	open     bool
	rate     int
	channels int
}

func newSDLSink() (*sdlSink, error) {
	if err := sdl.InitSubSystem(sdl.INIT_AUDIO); err != nil {
		return nil, err
	}
	return &sdlSink{}, nil
}

func (s *sdlSink) Open(sampleRate, channels int) error {
	if s.open && s.rate == sampleRate && s.channels == channels {
		return nil
	}
	s.Close()

	spec := &sdl.AudioSpec{
		Freq:     int32(sampleRate),
		Format:   sdl.AUDIO_S16LSB,
		Channels: uint8(channels),
		Samples:  4096,
	}

	var actual sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &actual, 0)
	if err != nil {
		return fmt.Errorf("open audio device (%d Hz, %d channels): %w", sampleRate, channels, err)
	}

	s.id = id
	s.open = true
	s.rate = sampleRate
	s.channels = channels
	return nil
}

func (s *sdlSink) Queue(data []byte) error {
	if !s.open {
		return errors.New("audio device not open")
	}
	return sdl.QueueAudio(s.id, data)
}

func (s *sdlSink) Clear() {
	if s.open {
		sdl.ClearQueuedAudio(s.id)
	}
}

func (s *sdlSink) Pause(paused bool) {
	if s.open {
		sdl.PauseAudioDevice(s.id, paused)
	}
}

func (s *sdlSink) Close() {
	if !s.open {
		return
	}
	sdl.CloseAudioDevice(s.id)
	s.open = false
}
