// Package display holds what the overlay backends share.
package display

import (
	"errors"
	"image"
)

var (
	// ErrDisconnected means the device went away. Callers may reconnect.
	ErrDisconnected = errors.New("display disconnected")

	// ErrClosed means the user asked the backend to quit.
	ErrClosed = errors.New("display closed")
)

// Flatten composites a straight-alpha BGRA frame over black. Devices that
// cannot show transparency get the same picture a compositor would show on
// a dark desktop.
func Flatten(pix []byte, width, height uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(width), int(height)))
	n := min(len(pix), len(img.Pix))
	for i := 0; i+3 < n; i += 4 {
		a := uint32(pix[i+3])
		img.Pix[i+0] = uint8(uint32(pix[i+2]) * a / 255)
		img.Pix[i+1] = uint8(uint32(pix[i+1]) * a / 255)
		img.Pix[i+2] = uint8(uint32(pix[i+0]) * a / 255)
		img.Pix[i+3] = 0xff
	}
	return img
}
