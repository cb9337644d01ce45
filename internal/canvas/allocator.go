// Package canvas owns the pixel memory the overlay is painted into.
package canvas

import (
	"errors"
	"fmt"

	"github.com/phinze/jumpscare/internal/compositor"
)

// DefaultCapacity covers a 1920x1080 output without growing.
const DefaultCapacity = 1920 * 1080 * compositor.BytesPerPixel

// ErrTooLarge is returned when a canvas would exceed the allocator's ceiling.
var ErrTooLarge = errors.New("canvas too large")

// Allocator is a single growable backing store sized for the largest output
// seen so far. Every View aliases the same memory, so a view is only valid
// until the next call to View.
type Allocator struct {
	buf   []byte
	limit int
}

// NewAllocator returns an allocator holding initial bytes that refuses to
// grow past limit bytes. A limit of zero means no ceiling.
func NewAllocator(initial, limit int) *Allocator {
	if limit > 0 && initial > limit {
		initial = limit
	}
	return &Allocator{
		buf:   make([]byte, initial),
		limit: limit,
	}
}

// Capacity returns the size of the backing store in bytes.
func (a *Allocator) Capacity() int {
	return len(a.buf)
}

// EnsureCapacity grows the backing store so that a width×height canvas fits.
// It never shrinks.
func (a *Allocator) EnsureCapacity(width, height uint32) error {
	need := uint64(width) * uint64(height) * compositor.BytesPerPixel
	if a.limit > 0 && need > uint64(a.limit) {
		return fmt.Errorf("%w: %dx%d needs %d bytes, limit %d", ErrTooLarge, width, height, need, a.limit)
	}
	if need > uint64(maxInt) {
		return fmt.Errorf("%w: %dx%d overflows", ErrTooLarge, width, height)
	}
	if int(need) <= len(a.buf) {
		return nil
	}

	a.buf = make([]byte, int(need))
	return nil
}

// View returns a canvas of exactly width×height pixels, growing the backing
// store first if needed.
func (a *Allocator) View(width, height uint32) (compositor.Buffer, error) {
	if err := a.EnsureCapacity(width, height); err != nil {
		return compositor.Buffer{}, err
	}
	return compositor.Buffer{
		Pix:    a.buf[:compositor.Size(width, height)],
		Width:  width,
		Height: height,
	}, nil
}

const maxInt = int(^uint(0) >> 1)
