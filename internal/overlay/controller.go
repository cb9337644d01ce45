// Package overlay runs the show/hide cycle of the full-screen image overlay.
//
// A Controller tracks every display output, and on each timer tick either
// paints a randomly chosen image over a translucent backdrop on all of them
// while a randomly chosen clip plays, or takes it all down again. It is not
// safe for concurrent use; a single event loop drives it through Dispatch.
package overlay

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/phinze/jumpscare/internal/canvas"
	"github.com/phinze/jumpscare/internal/compositor"
)

// Display presents frames on outputs.
type Display interface {
	// Submit presents pix, a width×height BGRA frame, on the output. The
	// implementation must be done reading pix when Submit returns.
	Submit(id OutputID, pix []byte, width, height uint32) error

	// Clear stops presenting anything on the output.
	Clear(id OutputID) error
}

// Decoder turns an image file into BGRA pixels.
type Decoder interface {
	Decode(path string) (compositor.Buffer, error)
}

// Player plays one audio clip at a time. Play replaces whatever is playing
// and returns without waiting for the clip to finish.
type Player interface {
	Play(path string) error
	Stop()
}

// Picker chooses files from asset directories.
type Picker interface {
	PickRandom(dir string) (string, error)
	Check(dir string) error
}

// Collaborators are the outside services a Controller depends on.
type Collaborators struct {
	Display Display
	Decoder Decoder
	Player  Player
	Picker  Picker
}

// Config holds the controller settings.
type Config struct {
	ImageDir string
	AudioDir string

	// Backdrop defaults to compositor.Backdrop.
	Backdrop compositor.Color

	// Fit scales images that are larger than an output down to fit it
	// instead of clipping them.
	Fit bool

	// InitialCapacity defaults to canvas.DefaultCapacity.
	InitialCapacity int

	// MaxCanvasBytes caps canvas growth. Zero means no cap.
	MaxCanvasBytes int
}

// selection is what one shown session displays and plays.
type selection struct {
	image   string
	audio   string
	fg      compositor.Buffer
	playing bool
}

// Controller owns the overlay state.
type Controller struct {
	cfg Config

	display Display
	decoder Decoder
	player  Player
	picker  Picker

	alloc *canvas.Allocator

	// Registry in arrival order so every pass visits outputs the same way.
	outputs map[OutputID]*OutputSurface
	order   []OutputID

	shown bool
	sel   *selection
}

// New creates a hidden Controller with no outputs. It fails if either asset
// directory cannot supply files.
func New(cfg Config, c Collaborators) (*Controller, error) {
	if c.Display == nil || c.Decoder == nil || c.Player == nil || c.Picker == nil {
		return nil, errors.New("overlay: missing collaborator")
	}

	if err := c.Picker.Check(cfg.ImageDir); err != nil {
		return nil, fmt.Errorf("image directory: %w", err)
	}
	if err := c.Picker.Check(cfg.AudioDir); err != nil {
		return nil, fmt.Errorf("audio directory: %w", err)
	}

	if cfg.Backdrop == (compositor.Color{}) {
		cfg.Backdrop = compositor.Backdrop
	}
	if cfg.InitialCapacity <= 0 {
		cfg.InitialCapacity = canvas.DefaultCapacity
	}

	return &Controller{
		cfg:     cfg,
		display: c.Display,
		decoder: c.Decoder,
		player:  c.Player,
		picker:  c.Picker,
		alloc:   canvas.NewAllocator(cfg.InitialCapacity, cfg.MaxCanvasBytes),
		outputs: make(map[OutputID]*OutputSurface),
	}, nil
}

// Shown reports whether the overlay is currently shown.
func (c *Controller) Shown() bool {
	return c.shown
}

// Selection returns the image and audio chosen for the current shown
// session. ok is false while nothing has been chosen.
func (c *Controller) Selection() (image, audio string, ok bool) {
	if c.sel == nil {
		return "", "", false
	}
	return c.sel.image, c.sel.audio, true
}

// Output returns the registered output with the given id.
func (c *Controller) Output(id OutputID) (*OutputSurface, bool) {
	out, ok := c.outputs[id]
	return out, ok
}

// Outputs returns the registered output ids in arrival order.
func (c *Controller) Outputs() []OutputID {
	return append([]OutputID(nil), c.order...)
}

// Dispatch handles one event. Returned errors are fatal: a broken asset,
// a canvas that cannot be allocated or a clip that cannot be played.
func (c *Controller) Dispatch(ev Event) error {
	switch ev.Kind {
	case OutputAdded:
		c.addOutput(ev.Output)
	case OutputRemoved:
		c.removeOutput(ev.Output)
	case OutputConfigured:
		return c.configure(ev.Output, ev.Width, ev.Height)
	case Tick:
		return c.Toggle()
	case Shutdown:
		if c.shown {
			c.hide()
		}
	case OutputUpdated, ScaleChanged, TransformChanged, FrameDone,
		SurfaceEnter, SurfaceLeave, SurfaceClosed:
		// nothing to do
	default:
		log.Debug("Ignoring unknown event", "kind", ev.Kind)
	}
	return nil
}

// Toggle flips between hidden and shown.
func (c *Controller) Toggle() error {
	if c.shown {
		c.hide()
		return nil
	}
	return c.show()
}

func (c *Controller) show() error {
	c.shown = true
	log.Debug("Showing overlay", "outputs", len(c.order))

	for _, id := range c.order {
		out := c.outputs[id]
		if !out.Sized() {
			continue
		}
		if err := c.draw(out); err != nil {
			return err
		}
	}

	return c.startAudio()
}

func (c *Controller) hide() {
	c.shown = false
	log.Debug("Hiding overlay", "outputs", len(c.order))

	c.player.Stop()
	for _, id := range c.order {
		if err := c.outputs[id].Detach(); err != nil {
			log.Warn("Failed to clear output", "output", id, "err", err)
		}
	}
	c.sel = nil
}

func (c *Controller) addOutput(id OutputID) {
	if _, ok := c.outputs[id]; ok {
		log.Debug("Output already registered", "output", id)
		return
	}
	c.outputs[id] = newOutputSurface(id, c.display)
	c.order = append(c.order, id)
	log.Debug("Output added", "output", id)
}

func (c *Controller) removeOutput(id OutputID) {
	if _, ok := c.outputs[id]; !ok {
		log.Debug("Removing unknown output", "output", id)
		return
	}
	delete(c.outputs, id)
	for i, known := range c.order {
		if known == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	log.Debug("Output removed", "output", id)
}

// configure records the new size and, while shown, repaints the output
// with the session's image.
func (c *Controller) configure(id OutputID, width, height uint32) error {
	out, ok := c.outputs[id]
	if !ok {
		log.Debug("Configure for unknown output", "output", id)
		return nil
	}

	out.Configure(width, height)
	log.Debug("Output configured", "output", id, "width", width, "height", height)

	if !out.Sized() {
		if out.Attached() {
			if err := out.Detach(); err != nil {
				log.Warn("Failed to clear output", "output", id, "err", err)
			}
		}
		return nil
	}

	if err := c.alloc.EnsureCapacity(width, height); err != nil {
		return fmt.Errorf("output %s: %w", id, err)
	}
	if !c.shown {
		return nil
	}

	if err := c.draw(out); err != nil {
		return err
	}
	return c.startAudio()
}

// draw paints the session's image onto the output's canvas and presents
// it. A failed submit only affects this output.
func (c *Controller) draw(out *OutputSurface) error {
	sel, err := c.selection()
	if err != nil {
		return err
	}

	width, height := out.Size()
	dst, err := c.alloc.View(width, height)
	if err != nil {
		return fmt.Errorf("output %s: %w", out.ID(), err)
	}

	fg := sel.fg
	if c.cfg.Fit {
		fg = compositor.Fit(fg, width, height)
	}
	compositor.Blend(dst, c.cfg.Backdrop, fg)

	if err := out.Attach(dst); err != nil {
		log.Warn("Failed to present overlay", "output", out.ID(), "err", err)
	}
	return nil
}

// selection returns the current session's choice, picking and decoding on
// first use.
func (c *Controller) selection() (*selection, error) {
	if c.sel != nil {
		return c.sel, nil
	}

	image, err := c.picker.PickRandom(c.cfg.ImageDir)
	if err != nil {
		return nil, fmt.Errorf("pick image: %w", err)
	}
	audio, err := c.picker.PickRandom(c.cfg.AudioDir)
	if err != nil {
		return nil, fmt.Errorf("pick audio: %w", err)
	}

	fg, err := c.decoder.Decode(image)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", image, err)
	}
	if err := fg.Validate(); err != nil {
		return nil, fmt.Errorf("decode %s: %w", image, err)
	}

	log.Infof("Selected %s (%dx%d) with %s", image, fg.Width, fg.Height, audio)
	c.sel = &selection{image: image, audio: audio, fg: fg}
	return c.sel, nil
}

func (c *Controller) startAudio() error {
	if c.sel == nil || c.sel.playing {
		return nil
	}
	if err := c.player.Play(c.sel.audio); err != nil {
		return fmt.Errorf("play %s: %w", c.sel.audio, err)
	}
	c.sel.playing = true
	return nil
}
