// Package sdlwin presents the overlay in one borderless SDL window per
// monitor.
//
// SDL calls must come from the thread that initialized video, so every
// method has to run on the goroutine that called Open, normally the locked
// main goroutine.
package sdlwin

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/phinze/jumpscare/internal/display"
	"github.com/phinze/jumpscare/internal/overlay"
	"github.com/veandco/go-sdl2/sdl"
)

const windowTitle = "jumpscare"

// output is one window covering one monitor.
type output struct {
	id       overlay.OutputID
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	texW     int32
	texH     int32
	width    int32
	height   int32
}

// Backend owns the windows.
type Backend struct {
	outputs  []*output
	byID     map[overlay.OutputID]*output
	byWindow map[uint32]*output

	announced bool
}

// Open initializes SDL video and creates a hidden window on every monitor.
func Open() (*Backend, error) {
	if err := sdl.InitSubSystem(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("sdl video: %w", err)
	}
	sdl.SetHint(sdl.HINT_VIDEO_MINIMIZE_ON_FOCUS_LOSS, "0")

	n, err := sdl.GetNumVideoDisplays()
	if err != nil {
		return nil, fmt.Errorf("count displays: %w", err)
	}

	b := &Backend{
		byID:     make(map[overlay.OutputID]*output),
		byWindow: make(map[uint32]*output),
	}
	for i := 0; i < n; i++ {
		out, err := openOutput(i)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.outputs = append(b.outputs, out)
		b.byID[out.id] = out

		wid, err := out.window.GetID()
		if err != nil {
			b.Close()
			return nil, fmt.Errorf("output %s: %w", out.id, err)
		}
		b.byWindow[wid] = out

		log.Info("Opened window", "output", out.id, "width", out.width, "height", out.height)
	}

	return b, nil
}

func openOutput(index int) (*output, error) {
	id := overlay.OutputID(fmt.Sprintf("sdl-%d", index))

	bounds, err := sdl.GetDisplayBounds(index)
	if err != nil {
		return nil, fmt.Errorf("output %s bounds: %w", id, err)
	}

	flags := uint32(sdl.WINDOW_HIDDEN) | uint32(sdl.WINDOW_BORDERLESS) |
		uint32(sdl.WINDOW_ALWAYS_ON_TOP) | uint32(sdl.WINDOW_SKIP_TASKBAR)
	window, err := sdl.CreateWindow(windowTitle, bounds.X, bounds.Y, bounds.W, bounds.H, flags)
	if err != nil {
		return nil, fmt.Errorf("output %s window: %w", id, err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("output %s renderer: %w", id, err)
	}

	return &output{
		id:       id,
		window:   window,
		renderer: renderer,
		width:    bounds.W,
		height:   bounds.H,
	}, nil
}

// Poll drains pending SDL events. The first call announces every window
// with its monitor's size. A quit request returns display.ErrClosed.
func (b *Backend) Poll() ([]overlay.Event, error) {
	var events []overlay.Event
	if !b.announced {
		b.announced = true
		for _, out := range b.outputs {
			events = append(events,
				overlay.Added(out.id),
				overlay.Configured(out.id, uint32(out.width), uint32(out.height)))
		}
	}

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			return events, display.ErrClosed

		case *sdl.WindowEvent:
			out, ok := b.byWindow[ev.WindowID]
			if !ok {
				continue
			}
			if translated, ok := windowEvent(out.id, ev.Event, ev.Data1, ev.Data2); ok {
				events = append(events, translated)
			}
		}
	}

	return events, nil
}

// windowEvent maps an SDL window event to an overlay event.
func windowEvent(id overlay.OutputID, kind uint8, data1, data2 int32) (overlay.Event, bool) {
	switch kind {
	case sdl.WINDOWEVENT_SIZE_CHANGED:
		if data1 < 0 || data2 < 0 {
			data1, data2 = 0, 0
		}
		return overlay.Configured(id, uint32(data1), uint32(data2)), true
	case sdl.WINDOWEVENT_CLOSE:
		return overlay.Event{Kind: overlay.SurfaceClosed, Output: id}, true
	case sdl.WINDOWEVENT_ENTER:
		return overlay.Event{Kind: overlay.SurfaceEnter, Output: id}, true
	case sdl.WINDOWEVENT_LEAVE:
		return overlay.Event{Kind: overlay.SurfaceLeave, Output: id}, true
	case sdl.WINDOWEVENT_EXPOSED:
		return overlay.Event{Kind: overlay.FrameDone, Output: id}, true
	}
	return overlay.Event{}, false
}

// Submit uploads the frame and raises the window. The texture blends over
// a black clear, so translucent pixels darken rather than show the desktop.
func (b *Backend) Submit(id overlay.OutputID, pix []byte, width, height uint32) error {
	out, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("unknown output %s", id)
	}

	w, h := int32(width), int32(height)
	if out.texture == nil || out.texW != w || out.texH != h {
		if out.texture != nil {
			out.texture.Destroy()
			out.texture = nil
		}
		tex, err := out.renderer.CreateTexture(uint32(sdl.PIXELFORMAT_ARGB8888), int(sdl.TEXTUREACCESS_STREAMING), w, h)
		if err != nil {
			return fmt.Errorf("texture %dx%d: %w", w, h, err)
		}
		if err := tex.SetBlendMode(sdl.BLENDMODE_BLEND); err != nil {
			tex.Destroy()
			return err
		}
		out.texture, out.texW, out.texH = tex, w, h
	}

	if err := out.texture.Update(nil, pix, int(width)*4); err != nil {
		return err
	}
	if err := out.renderer.SetDrawColor(0, 0, 0, 255); err != nil {
		return err
	}
	if err := out.renderer.Clear(); err != nil {
		return err
	}
	if err := out.renderer.Copy(out.texture, nil, nil); err != nil {
		return err
	}
	out.renderer.Present()
	out.window.Show()
	out.window.Raise()
	return nil
}

// Clear hides the window.
func (b *Backend) Clear(id overlay.OutputID) error {
	out, ok := b.byID[id]
	if !ok {
		return fmt.Errorf("unknown output %s", id)
	}
	out.window.Hide()
	return nil
}

// Close destroys every window and shuts SDL video down.
func (b *Backend) Close() error {
	for _, out := range b.outputs {
		if out.texture != nil {
			out.texture.Destroy()
		}
		out.renderer.Destroy()
		out.window.Destroy()
	}
	b.outputs = nil
	sdl.QuitSubSystem(sdl.INIT_VIDEO)
	return nil
}
