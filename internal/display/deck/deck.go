// Package deck presents the overlay on an Elgato Stream Deck.
//
// The key grid is one output, tiled across the keys, and the touch strip,
// when the model has one, is a second output.
package deck

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"github.com/phinze/jumpscare/internal/display"
	"github.com/phinze/jumpscare/internal/overlay"
	"golang.org/x/image/draw"
	"rafaelmartins.com/p/streamdeck"
)

const (
	// KeysOutput is the output tiled across the key grid.
	KeysOutput overlay.OutputID = "deck-keys"

	// StripOutput is the touch strip output.
	StripOutput overlay.OutputID = "deck-strip"

	brightness   = 80
	pollInterval = 2 * time.Second
)

// device is the part of *streamdeck.Device the backend drives.
type device interface {
	ForEachKey(func(streamdeck.KeyID) error) error
	ClearKey(streamdeck.KeyID) error
	SetKeyImage(streamdeck.KeyID, image.Image) error
	GetKeyImageRectangle() (image.Rectangle, error)
	GetTouchStripSupported() bool
	GetTouchStripImageRectangle() (image.Rectangle, error)
	SetTouchStripImage(image.Image) error
	Close() error
}

// Backend drives one connected deck.
type Backend struct {
	dev   device
	errCh chan error

	keys    []streamdeck.KeyID
	columns int
	keyRect image.Rectangle

	strip     bool
	stripRect image.Rectangle

	announced bool
	gone      bool
}

// Info identifies a connected deck.
type Info struct {
	Model  string
	Serial string
}

// List returns the decks currently plugged in.
func List() ([]Info, error) {
	devices, err := streamdeck.Enumerate()
	if err != nil {
		return nil, fmt.Errorf("enumerate devices: %w", err)
	}
	infos := make([]Info, 0, len(devices))
	for _, d := range devices {
		infos = append(infos, Info{Model: d.GetModelName(), Serial: d.GetSerialNumber()})
	}
	return infos, nil
}

// Open connects to the deck with the given serial, or the first one found
// when serial is empty.
func Open(serial string) (*Backend, error) {
	dev, err := streamdeck.GetDevice(serial)
	if err != nil {
		return nil, err
	}
	if err := dev.Open(); err != nil {
		return nil, fmt.Errorf("open %s: %w", dev.GetModelName(), err)
	}
	return start(dev)
}

// WaitForDevice polls until a deck can be opened or ctx is done.
func WaitForDevice(ctx context.Context, serial string) (*Backend, error) {
	b, err := Open(serial)
	if err == nil {
		return b, nil
	}
	log.Info("Waiting for Stream Deck...", "err", err)

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}

		b, err := Open(serial)
		if err != nil {
			log.Debug("Stream Deck not ready", "err", err)
			continue
		}
		log.Info("Stream Deck connected")
		return b, nil
	}
}

func start(dev *streamdeck.Device) (*Backend, error) {
	log.Info("Connected to Stream Deck", "model", dev.GetModelName(), "serial", dev.GetSerialNumber())
	dev.SetBrightness(brightness)

	b, err := newBackend(dev)
	if err != nil {
		dev.Close()
		return nil, err
	}

	// Listen returns once the device is closed or unplugged.
	go func() {
		if err := dev.Listen(b.errCh); err != nil {
			select {
			case b.errCh <- err:
			default:
			}
		}
	}()

	return b, nil
}

func newBackend(dev device) (*Backend, error) {
	b := &Backend{dev: dev, errCh: make(chan error, 1)}

	if err := dev.ForEachKey(func(key streamdeck.KeyID) error {
		b.keys = append(b.keys, key)
		return dev.ClearKey(key)
	}); err != nil {
		return nil, fmt.Errorf("clear keys: %w", err)
	}

	rect, err := dev.GetKeyImageRectangle()
	if err != nil {
		return nil, fmt.Errorf("key size: %w", err)
	}
	b.keyRect = image.Rect(0, 0, rect.Dx(), rect.Dy())
	b.columns = gridColumns(len(b.keys))

	if dev.GetTouchStripSupported() {
		rect, err := dev.GetTouchStripImageRectangle()
		if err != nil {
			return nil, fmt.Errorf("touch strip size: %w", err)
		}
		b.strip = true
		b.stripRect = image.Rect(0, 0, rect.Dx(), rect.Dy())
	}

	return b, nil
}

// gridColumns returns the column count of the shipped deck layouts.
func gridColumns(keys int) int {
	switch keys {
	case 6:
		return 3
	case 8:
		return 4
	case 15:
		return 5
	case 32:
		return 8
	}
	if keys < 1 {
		return 1
	}
	return keys
}

// gridSize returns the pixel size of the whole key grid.
func (b *Backend) gridSize() (width, height uint32) {
	if len(b.keys) == 0 {
		return 0, 0
	}
	rows := (len(b.keys) + b.columns - 1) / b.columns
	return uint32(b.columns * b.keyRect.Dx()), uint32(rows * b.keyRect.Dy())
}

// Poll announces the outputs on the first call and reports an unplugged
// device as removed outputs plus display.ErrDisconnected.
func (b *Backend) Poll() ([]overlay.Event, error) {
	var events []overlay.Event
	if !b.announced {
		b.announced = true
		w, h := b.gridSize()
		events = append(events, overlay.Added(KeysOutput), overlay.Configured(KeysOutput, w, h))
		if b.strip {
			events = append(events,
				overlay.Added(StripOutput),
				overlay.Configured(StripOutput, uint32(b.stripRect.Dx()), uint32(b.stripRect.Dy())))
		}
	}

	select {
	case err := <-b.errCh:
		b.gone = true
		events = append(events, overlay.Removed(KeysOutput))
		if b.strip {
			events = append(events, overlay.Removed(StripOutput))
		}
		return events, fmt.Errorf("%w: %v", display.ErrDisconnected, err)
	default:
	}

	return events, nil
}

// Submit flattens the frame over black and pushes it to the device.
func (b *Backend) Submit(id overlay.OutputID, pix []byte, width, height uint32) error {
	if b.gone {
		return display.ErrDisconnected
	}
	frame := display.Flatten(pix, width, height)

	switch id {
	case KeysOutput:
		for i, key := range b.keys {
			at := image.Pt((i%b.columns)*b.keyRect.Dx(), (i/b.columns)*b.keyRect.Dy())
			tile := image.NewRGBA(b.keyRect)
			draw.Draw(tile, tile.Bounds(), frame, at, draw.Src)
			if err := b.dev.SetKeyImage(key, tile); err != nil {
				return fmt.Errorf("key %d: %w", i+1, err)
			}
		}
		return nil
	case StripOutput:
		if !b.strip {
			return fmt.Errorf("unknown output %s", id)
		}
		return b.dev.SetTouchStripImage(frame)
	}
	return fmt.Errorf("unknown output %s", id)
}

// Clear blanks the keys or the strip.
func (b *Backend) Clear(id overlay.OutputID) error {
	if b.gone {
		return display.ErrDisconnected
	}

	switch id {
	case KeysOutput:
		for _, key := range b.keys {
			if err := b.dev.ClearKey(key); err != nil {
				return err
			}
		}
		return nil
	case StripOutput:
		if !b.strip {
			return fmt.Errorf("unknown output %s", id)
		}
		return b.dev.SetTouchStripImage(image.NewRGBA(b.stripRect))
	}
	return fmt.Errorf("unknown output %s", id)
}

// Close releases the device. It may block on some hosts, so callers
// shutting down bound it with a timeout.
func (b *Backend) Close() error {
	return b.dev.Close()
}
