package overlay

import (
	"github.com/phinze/jumpscare/internal/compositor"
)

// OutputSurface is the overlay's view of one display output.
type OutputSurface struct {
	id       OutputID
	display  Display
	width    uint32
	height   uint32
	attached bool
}

func newOutputSurface(id OutputID, display Display) *OutputSurface {
	return &OutputSurface{id: id, display: display}
}

// ID returns the output's identity.
func (o *OutputSurface) ID() OutputID {
	return o.id
}

// Size returns the last configured size. Zero until the display layer
// announces one.
func (o *OutputSurface) Size() (width, height uint32) {
	return o.width, o.height
}

// Sized reports whether the output has a non-empty size.
func (o *OutputSurface) Sized() bool {
	return o.width > 0 && o.height > 0
}

// Attached reports whether a frame is currently presented on the output.
func (o *OutputSurface) Attached() bool {
	return o.attached
}

// Configure records a new size.
func (o *OutputSurface) Configure(width, height uint32) {
	o.width = width
	o.height = height
}

// Attach presents canvas on the output.
func (o *OutputSurface) Attach(canvas compositor.Buffer) error {
	if err := o.display.Submit(o.id, canvas.Pix, canvas.Width, canvas.Height); err != nil {
		o.attached = false
		return err
	}
	o.attached = true
	return nil
}

// Detach stops presenting anything on the output. The output itself stays
// registered so it can be shown again.
func (o *OutputSurface) Detach() error {
	o.attached = false
	return o.display.Clear(o.id)
}
